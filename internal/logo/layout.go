package logo

import (
	"github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"
	"github.com/cptspacemanspiff/led-scoreboard/internal/glyph"
)

type placed struct {
	pattern glyph.Pattern
	span    glyph.Span
	x       int
}

// layoutLine positions every glyph of line from column 0 and returns the
// total width. Blank glyphs, spaces included, take one column and break the
// one column gap between their neighbours.
func layoutLine(line string, font *glyph.Table) ([]placed, int) {
	var (
		out      []placed
		x        int
		previous bool
	)
	for _, r := range line {
		p := font.Resolve(string(r))
		span := glyph.MeasureTight(p)
		if r == ' ' || span.Width == 0 {
			x++
			previous = false
			continue
		}
		if previous {
			x++
		}
		out = append(out, placed{pattern: p, span: span, x: x})
		x += span.Width
		previous = true
	}
	return out, x
}

// Measure returns the width of one GLYPH row in columns.
func Measure(line string, font *glyph.Table) int {
	_, w := layoutLine(line, font)
	return w
}

// Layout draws GLYPH text into a width by height bitmap. Each row is centred
// horizontally, or left aligned and clipped when too wide. The block of rows
// is centred vertically the same way.
func Layout(text string, font *glyph.Table, width, height int) *bitmap.Bitmap {
	out := bitmap.New(width, height)
	lines := Lines(text)
	rows := font.Rows()

	y0 := (height - len(lines)*rows) / 2
	if y0 < 0 {
		y0 = 0
	}
	for i, line := range lines {
		glyphs, w := layoutLine(line, font)
		x0 := (width - w) / 2
		if x0 < 0 {
			x0 = 0
		}
		top := y0 + i*rows
		for _, g := range glyphs {
			for y := 0; y < g.pattern.Height(); y++ {
				for x := 0; x < g.span.Width; x++ {
					if g.pattern.Lit(g.span.Offset+x, y) {
						out.Set(x0+g.x+x, top+y, true)
					}
				}
			}
		}
	}
	return out
}
