/*
Package glyph resolves symbols to the lamp patterns drawn inside a board cell
and measures them for proportional layout.
*/
package glyph

import (
	"fmt"

	"github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"
)

// MaxWidth is the widest pattern a table can hold.
const MaxWidth = 16

// Pattern is an immutable lamp pattern. Bit Width-1-x of Rows[y] is column x.
type Pattern struct {
	Width int
	Rows  []uint16
}

// Blank returns an all-off pattern.
func Blank(width, rows int) Pattern {
	return Pattern{Width: width, Rows: make([]uint16, rows)}
}

// Height returns the number of rows.
func (p Pattern) Height() int { return len(p.Rows) }

// Lit reports whether column x of row y is on.
func (p Pattern) Lit(x, y int) bool {
	if x < 0 || x >= p.Width || y < 0 || y >= len(p.Rows) {
		return false
	}
	return p.Rows[y]&(1<<uint(p.Width-1-x)) != 0
}

// Bitmap returns the pattern as a bitmap.
func (p Pattern) Bitmap() *bitmap.Bitmap {
	b := bitmap.New(p.Width, len(p.Rows))
	for y := range p.Rows {
		for x := 0; x < p.Width; x++ {
			b.Set(x, y, p.Lit(x, y))
		}
	}
	return b
}

// String renders the pattern as rows of '#' and '.'.
func (p Pattern) String() string {
	return p.Bitmap().String()
}

func parseRows(rows []string) (Pattern, error) {
	if len(rows) == 0 {
		return Pattern{}, fmt.Errorf("glyph: empty pattern")
	}
	width := len(rows[0])
	if width == 0 || width > MaxWidth {
		return Pattern{}, fmt.Errorf("glyph: pattern width %d out of range 1..%d", width, MaxWidth)
	}
	p := Pattern{Width: width, Rows: make([]uint16, len(rows))}
	for y, row := range rows {
		if len(row) != width {
			return Pattern{}, fmt.Errorf("glyph: row %d has width %d, want %d", y+1, len(row), width)
		}
		for x := 0; x < width; x++ {
			switch row[x] {
			case '#':
				p.Rows[y] |= 1 << uint(width-1-x)
			case '.':
			default:
				return Pattern{}, fmt.Errorf("glyph: row %d: unexpected %q", y+1, row[x])
			}
		}
	}
	return p, nil
}

// Span is an inclusive run of columns.
type Span struct {
	Offset int
	Width  int
}

// MeasureTight returns the smallest column range holding a lit lamp. An
// all-blank pattern measures {0, 0}.
func MeasureTight(p Pattern) Span {
	var used uint16
	for _, r := range p.Rows {
		used |= r
	}
	if used == 0 {
		return Span{}
	}
	first, last := -1, -1
	for x := 0; x < p.Width; x++ {
		if used&(1<<uint(p.Width-1-x)) != 0 {
			if first < 0 {
				first = x
			}
			last = x
		}
	}
	return Span{Offset: first, Width: last - first + 1}
}

// Stretch resamples p to rows rows by nearest row.
func Stretch(p Pattern, rows int) Pattern {
	out := Pattern{Width: p.Width, Rows: make([]uint16, rows)}
	h := len(p.Rows)
	if h == 0 {
		return out
	}
	for y := 0; y < rows; y++ {
		out.Rows[y] = p.Rows[y*h/rows]
	}
	return out
}
