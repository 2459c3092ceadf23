/*
Package bitmap implements the 1-bit lamp bitmap used by the scoreboard and
its compact binary encodings.

A Bitmap is width by height lamps stored row-major. When packed, every row
starts on a byte boundary: the packed length is always ceil(width/8)*height
and lamp x of a row lives in bit 7-x%8 of byte x/8 of that row.
*/
package bitmap

import (
	"image"
	"image/color"
	"strings"
)

// Bitmap is a width by height matrix of lamp states.
type Bitmap struct {
	width  int
	height int
	pix    []bool
}

// New returns an all-off bitmap. Negative dimensions are treated as zero.
func New(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Bitmap{
		width:  width,
		height: height,
		pix:    make([]bool, width*height),
	}
}

// Width returns the number of columns.
func (b *Bitmap) Width() int { return b.width }

// Height returns the number of rows.
func (b *Bitmap) Height() int { return b.height }

// Stride returns the number of bytes used by one packed row.
func (b *Bitmap) Stride() int { return stride(b.width) }

func (b *Bitmap) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// Get reports whether the lamp at (x, y) is lit. Addresses outside the
// bitmap read as off.
func (b *Bitmap) Get(x, y int) bool {
	if !b.in(x, y) {
		return false
	}
	return b.pix[y*b.width+x]
}

// Set changes the lamp at (x, y). Addresses outside the bitmap are ignored.
func (b *Bitmap) Set(x, y int, on bool) {
	if !b.in(x, y) {
		return
	}
	b.pix[y*b.width+x] = on
}

// Count returns the number of lit lamps.
func (b *Bitmap) Count() int {
	n := 0
	for _, on := range b.pix {
		if on {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of b.
func (b *Bitmap) Clone() *Bitmap {
	dup := &Bitmap{width: b.width, height: b.height, pix: make([]bool, len(b.pix))}
	copy(dup.pix, b.pix)
	return dup
}

// Equal reports whether both bitmaps have the same size and lamp states.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.width != o.width || b.height != o.height {
		return false
	}
	for i := range b.pix {
		if b.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

// Blit copies src into b with its top-left corner at (dx, dy). Lamps that
// fall outside b are dropped.
func (b *Bitmap) Blit(src *Bitmap, dx, dy int) {
	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			if src.pix[y*src.width+x] {
				b.Set(dx+x, dy+y, true)
			}
		}
	}
}

// String renders the bitmap as rows of '#' and '.', mostly for tests and the
// preview command.
func (b *Bitmap) String() string {
	var sb strings.Builder
	sb.Grow((b.width + 1) * b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.pix[y*b.width+x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Image adapts a Bitmap to image.Image using On for lit lamps and Off for
// everything else.
type Image struct {
	*Bitmap
	On, Off color.Color
}

// NewImage returns an image.Image view of b, lit lamps white on black.
func NewImage(b *Bitmap) *Image {
	return &Image{Bitmap: b, On: color.White, Off: color.Black}
}

func (m *Image) ColorModel() color.Model { return color.RGBAModel }

func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.width, m.height) }

func (m *Image) At(x, y int) color.Color {
	if m.Get(x, y) {
		return m.On
	}
	return m.Off
}
