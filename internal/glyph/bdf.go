package glyph

import (
	"fmt"
	"image"

	"github.com/zachomedia/go-bdf"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// LoadBDF rasterises the given symbols from a BDF bitmap font into t. The
// baseline sits at the font ascent, so glyphs taller than the table are
// clipped at the bottom. Symbols the font does not cover are skipped; the
// number of glyphs defined is returned.
func LoadBDF(data []byte, t *Table, symbols []rune) (int, error) {
	f, err := bdf.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("parse bdf: %w", err)
	}
	face := f.NewFace()
	defer face.Close()

	ascent := face.Metrics().Ascent.Ceil()
	if ascent > t.rows {
		ascent = t.rows
	}

	var n int
	for _, r := range symbols {
		advance, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		width := advance.Ceil()
		if width <= 0 {
			continue
		}
		if width > MaxWidth {
			width = MaxWidth
		}

		dst := image.NewAlpha(image.Rect(0, 0, width, t.rows))
		d := font.Drawer{
			Dst:  dst,
			Src:  image.Opaque,
			Face: face,
			Dot:  fixed.P(0, ascent),
		}
		d.DrawString(string(r))

		p := Blank(width, t.rows)
		for y := 0; y < t.rows; y++ {
			for x := 0; x < width; x++ {
				if dst.AlphaAt(x, y).A >= 0x80 {
					p.Rows[y] |= 1 << uint(width-1-x)
				}
			}
		}
		if err := t.Define(string(r), p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
