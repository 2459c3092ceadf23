package glyph

import (
	"bytes"
	_ "embed"
	"fmt"
)

const (
	// StandardRows and StandardWidth are the cell dimensions of the board
	// font.
	StandardRows  = 7
	StandardWidth = 5

	// CoarseRows is the height of the text-art font used for logos.
	CoarseRows = 10
)

//go:embed fonts/standard.txt
var standardSource []byte

//go:embed fonts/coarse.txt
var coarseSource []byte

func mustParse(src []byte, t *Table) *Table {
	if err := ParseTable(bytes.NewReader(src), t); err != nil {
		panic(fmt.Sprintf("glyph: built-in font: %v", err))
	}
	return t
}

// Standard returns a fresh copy of the 7 row board font. Unknown symbols
// resolve to "?".
func Standard() *Table {
	return mustParse(standardSource, NewTable(StandardRows, StandardWidth, "?"))
}

// Coarse returns a fresh copy of the 10 row text-art font. Letters missing
// from its source are stretched from the standard font. Unknown symbols
// resolve to a space.
func Coarse() *Table {
	t := mustParse(coarseSource, NewTable(CoarseRows, 6, " "))
	std := Standard()
	for _, sym := range std.Symbols() {
		if _, ok := t.entries[sym]; ok {
			continue
		}
		if e := std.entries[sym]; e.alias != "" {
			t.Alias(sym, e.alias)
			continue
		}
		p, _ := std.Lookup(sym)
		t.entries[sym] = entry{pattern: Stretch(p, CoarseRows)}
	}
	return t
}
