package bitmap

import "fmt"

// Axis describes the mechanical gaps along one axis: Gap blank lamps are
// inserted after every Run logical lamps. Without Trailing the gap only
// appears between runs; with Trailing a run that ends exactly on the edge is
// followed by a gap too.
type Axis struct {
	Run      int
	Gap      int
	Trailing bool
}

// Gaps is the gap layout of a physical grid.
type Gaps struct {
	X Axis
	Y Axis
}

func (a Axis) active() bool {
	return a.Run > 0 && a.Gap > 0
}

// before returns how many gap lamps precede logical index i.
func (a Axis) before(i int) int {
	if !a.active() {
		return 0
	}
	return (i / a.Run) * a.Gap
}

// Physical returns the physical length of n logical lamps.
func (a Axis) Physical(n int) int {
	if n <= 0 {
		return 0
	}
	if !a.active() {
		return n
	}
	if a.Trailing {
		return n + (n/a.Run)*a.Gap
	}
	return n + ((n-1)/a.Run)*a.Gap
}

// Logical inverts Physical. ok is false if no logical length maps to p.
func (a Axis) Logical(p int) (n int, ok bool) {
	if p <= 0 {
		return 0, p == 0
	}
	if !a.active() {
		return p, true
	}
	// Physical is strictly increasing and never smaller than n.
	for n = p; n > 0; n-- {
		switch got := a.Physical(n); {
		case got == p:
			return n, true
		case got < p:
			return 0, false
		}
	}
	return 0, false
}

// Size returns the physical size of a w by h logical bitmap.
func (g Gaps) Size(w, h int) (int, int) {
	return g.X.Physical(w), g.Y.Physical(h)
}

// Point maps a logical coordinate onto the physical grid.
func (g Gaps) Point(x, y int) (int, int) {
	return x + g.X.before(x), y + g.Y.before(y)
}

// ExpandToPhysical returns b laid out on the physical grid with blank gap
// columns and rows.
func ExpandToPhysical(b *Bitmap, g Gaps) *Bitmap {
	pw, ph := g.Size(b.width, b.height)
	p := New(pw, ph)
	for y := 0; y < b.height; y++ {
		py := y + g.Y.before(y)
		for x := 0; x < b.width; x++ {
			if b.pix[y*b.width+x] {
				p.pix[py*pw+x+g.X.before(x)] = true
			}
		}
	}
	return p
}

// CompressFromPhysical is the exact inverse of ExpandToPhysical. Anything lit
// inside a gap is discarded.
func CompressFromPhysical(p *Bitmap, g Gaps) (*Bitmap, error) {
	w, okX := g.X.Logical(p.width)
	h, okY := g.Y.Logical(p.height)
	if !okX || !okY {
		return nil, fmt.Errorf("%w: %dx%d is not a physical size for these gaps", ErrDimensions, p.width, p.height)
	}
	b := New(w, h)
	for y := 0; y < h; y++ {
		py := y + g.Y.before(y)
		for x := 0; x < w; x++ {
			b.pix[y*w+x] = p.pix[py*p.width+x+g.X.before(x)]
		}
	}
	return b, nil
}
