package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// debugGlyphW and debugGlyphH are the cell size of ebitenutil's debug font.
const (
	debugGlyphW = 6
	debugGlyphH = 16
)

// cursorIn reports whether the mouse cursor is inside the box at (x, y).
func cursorIn(x, y, w, h float64) bool {
	mx, my := ebiten.CursorPosition()
	fx, fy := float64(mx), float64(my)
	return fx >= x && fx <= x+w && fy >= y && fy <= y+h
}

// pressedIn reports a left click that started this frame inside the box.
func pressedIn(x, y, w, h float64) bool {
	return inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && cursorIn(x, y, w, h)
}
