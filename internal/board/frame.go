package board

import (
	"fmt"

	"github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"
)

// ColorFrame is the colour of every lamp of a grid, row-major.
type ColorFrame struct {
	Width  int
	Height int
	Lamps  []Color
}

// NewColorFrame returns a w by h frame with every lamp off.
func NewColorFrame(w, h int) *ColorFrame {
	w, h = max(w, 0), max(h, 0)
	return &ColorFrame{Width: w, Height: h, Lamps: make([]Color, w*h)}
}

// At returns the lamp at (x, y), or Off outside the frame.
func (f *ColorFrame) At(x, y int) Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return Off
	}
	return f.Lamps[y*f.Width+x]
}

// Bytes returns one byte per lamp, row-major.
func (f *ColorFrame) Bytes() []byte {
	out := make([]byte, len(f.Lamps))
	for i, c := range f.Lamps {
		out[i] = byte(c)
	}
	return out
}

// ColorFrameFromBytes decodes the output of Bytes.
func ColorFrameFromBytes(w, h int, data []byte) (*ColorFrame, error) {
	if w < 0 || h < 0 || len(data) != w*h {
		return nil, fmt.Errorf("%w: got %d bytes for %dx%d lamps", bitmap.ErrLength, len(data), w, h)
	}
	f := NewColorFrame(w, h)
	for i, v := range data {
		if int(v) >= len(colorNames) {
			return nil, fmt.Errorf("%w %d at lamp %d", ErrUnknownColor, v, i)
		}
		f.Lamps[i] = Color(v)
	}
	return f, nil
}

// Colors returns the colour of every logical lamp, gaps excluded.
func (b *Board) Colors() *ColorFrame {
	f := NewColorFrame(b.geom.Width(), b.geom.Height())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			f.Lamps[y*f.Width+x] = b.Lamp(x, y)
		}
	}
	return f
}

// ExpandColors lays a logical colour frame of a board of geometry g out on
// the physical grid of m. Gap lamps are Off.
func (m Mechanics) ExpandColors(f *ColorFrame, g Geometry) *ColorFrame {
	out := f
	for _, st := range m.Stages(g) {
		pw, ph := st.Size(out.Width, out.Height)
		next := NewColorFrame(pw, ph)
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				px, py := st.Point(x, y)
				next.Lamps[py*pw+px] = out.Lamps[y*out.Width+x]
			}
		}
		out = next
	}
	return out
}
