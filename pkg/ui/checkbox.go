package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox toggles a boolean setting. The label is drawn to the right of the
// box and is part of the click target.
type Checkbox struct {
	Label string
	Value bool
	X, Y  float64
	Size  float64

	changed bool
}

func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{
		Label: label,
		Value: value,
		X:     x,
		Y:     y,
		Size:  16,
	}
}

// width covers the box, a gap and the label.
func (c *Checkbox) width() float64 {
	return c.Size + 8 + float64(len(c.Label)*debugGlyphW)
}

func (c *Checkbox) Update() {
	c.changed = pressedIn(c.X, c.Y, c.width(), c.Size)
	if c.changed {
		c.Value = !c.Value
	}
}

// Changed reports whether the last Update toggled the value.
func (c *Checkbox) Changed() bool { return c.changed }

func (c *Checkbox) Draw(screen *ebiten.Image) {
	x, y, s := float32(c.X), float32(c.Y), float32(c.Size)
	vector.StrokeRect(screen, x, y, s, s, 2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	if c.Value {
		vector.FillRect(screen, x+3, y+3, s-6, s-6, color.RGBA{R: 100, G: 200, B: 100, A: 255}, true)
	}
	ebitenutil.DebugPrintAt(screen, c.Label, int(c.X+c.Size+8), int(c.Y+(c.Size-debugGlyphH)/2))
}
