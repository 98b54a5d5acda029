package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal value picker. Step > 0 snaps the value, e.g. 1 for
// integer settings.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	Step     float64
	X, Y     float64
	W, H     float64

	dragging bool
	changed  bool
}

// NewSlider creates a new slider instance
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	return &Slider{
		Label: label,
		Value: value,
		Min:   min,
		Max:   max,
		X:     x,
		Y:     y,
		W:     w,
		H:     10,
	}
}

// Update follows a drag that started on the bar, even when the cursor
// leaves it.
func (s *Slider) Update() {
	s.changed = false
	if pressedIn(s.X, s.Y-4, s.W, s.H+8) {
		s.dragging = true
	}
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		s.dragging = false
	}
	if !s.dragging {
		return
	}
	mx, _ := ebiten.CursorPosition()
	if v := s.valueAt(float64(mx)); v != s.Value {
		s.Value = v
		s.changed = true
	}
}

// valueAt maps a cursor x to a clamped, snapped value.
func (s *Slider) valueAt(mx float64) float64 {
	p := (mx - s.X) / s.W
	v := s.Min + p*(s.Max-s.Min)
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Changed reports whether the last Update moved the value.
func (s *Slider) Changed() bool { return s.changed }

// Draw renders the slider
func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	text := fmt.Sprintf("%.2f", s.Value)
	if s.Step >= 1 {
		text = fmt.Sprintf("%.0f", s.Value)
	}
	ebitenutil.DebugPrintAt(screen, text, int(s.X+s.W)-len(text)*debugGlyphW, int(s.Y)-15)
}
