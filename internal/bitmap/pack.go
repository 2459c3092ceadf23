package bitmap

import (
	"errors"
	"fmt"
)

// ErrLength is returned when a packed buffer matches neither the padded nor
// the legacy unpadded length for the declared dimensions.
var ErrLength = errors.New("bitmap: packed length does not match dimensions")

func stride(width int) int {
	return (width + 7) >> 3
}

// PackedLen returns the padded packed length for width by height lamps.
func PackedLen(width, height int) int {
	return stride(width) * height
}

// legacyLen is the length of the old globally packed layout where rows were
// not byte aligned.
func legacyLen(width, height int) int {
	return (width*height + 7) >> 3
}

// Pack encodes b with every row byte aligned.
func Pack(b *Bitmap) []byte {
	s := stride(b.width)
	out := make([]byte, s*b.height)
	for y := 0; y < b.height; y++ {
		row := out[y*s : (y+1)*s]
		for x := 0; x < b.width; x++ {
			if b.pix[y*b.width+x] {
				row[x>>3] |= 1 << (7 - uint(x&7))
			}
		}
	}
	return out
}

// Unpack decodes a buffer produced by Pack.
//
// A buffer of the legacy globally packed length is remapped bit by bit. The
// two layouts have the same length whenever width is a multiple of 8 (and
// for some other small sizes); in that case the buffer is read as padded,
// which is also bit-identical for widths that are multiples of 8.
func Unpack(data []byte, width, height int) (*Bitmap, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}

	padded, legacy := PackedLen(width, height), legacyLen(width, height)
	if len(data) != padded && len(data) != legacy {
		return nil, fmt.Errorf("%w: got %d bytes for %dx%d, want %d", ErrLength, len(data), width, height, padded)
	}

	b := New(width, height)
	switch len(data) {
	case padded:
		s := stride(width)
		for y := 0; y < height; y++ {
			row := data[y*s : (y+1)*s]
			for x := 0; x < width; x++ {
				b.pix[y*width+x] = row[x>>3]&(1<<(7-uint(x&7))) != 0
			}
		}
	case legacy:
		for i := range b.pix {
			b.pix[i] = data[i>>3]&(1<<(7-uint(i&7))) != 0
		}
	}
	return b, nil
}

// PackLegacy encodes b in the old unpadded layout. It exists so that stored
// payloads from older writers can be reproduced in tests and migrations.
func PackLegacy(b *Bitmap) []byte {
	out := make([]byte, legacyLen(b.width, b.height))
	for i, on := range b.pix {
		if on {
			out[i>>3] |= 1 << (7 - uint(i&7))
		}
	}
	return out
}
