package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button runs OnClick once per press.
type Button struct {
	Label   string
	X, Y    float64
	Width   float64
	Height  float64
	OnClick func()

	BGColor    color.RGBA
	HoverColor color.RGBA
	PressColor color.RGBA
}

func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		X:          x,
		Y:          y,
		Width:      width,
		Height:     height,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
		PressColor: color.RGBA{R: 60, G: 90, B: 140, A: 255},
	}
}

func (b *Button) Update() {
	if b.OnClick != nil && pressedIn(b.X, b.Y, b.Width, b.Height) {
		b.OnClick()
	}
}

func (b *Button) Draw(screen *ebiten.Image) {
	bg := b.BGColor
	if cursorIn(b.X, b.Y, b.Width, b.Height) {
		bg = b.HoverColor
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			bg = b.PressColor
		}
	}

	x, y, w, h := float32(b.X), float32(b.Y), float32(b.Width), float32(b.Height)
	vector.FillRect(screen, x, y, w, h, bg, true)
	vector.StrokeRect(screen, x, y, w, h, 1, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	tx := b.X + (b.Width-float64(len(b.Label)*debugGlyphW))/2
	ty := b.Y + (b.Height-debugGlyphH)/2
	ebitenutil.DebugPrintAt(screen, b.Label, int(tx), int(ty))
}
