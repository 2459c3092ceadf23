package glyph

import (
	"fmt"
	"sort"
)

const (
	// AliasMarker prefixes an alias target in font sources.
	AliasMarker = '@'

	// MaxHops bounds alias dereferencing.
	MaxHops = 8
)

type entry struct {
	alias   string
	pattern Pattern
}

// Table maps symbols to patterns of a fixed row count.
type Table struct {
	rows    int
	width   int
	def     string
	entries map[string]entry
}

// NewTable returns an empty table. width is the nominal cell width used for
// the blank fallback when def itself is missing.
func NewTable(rows, width int, def string) *Table {
	return &Table{
		rows:    rows,
		width:   width,
		def:     def,
		entries: make(map[string]entry),
	}
}

// Rows returns the pattern height of the table.
func (t *Table) Rows() int { return t.rows }

// Width returns the nominal cell width.
func (t *Table) Width() int { return t.width }

// Default returns the fallback symbol.
func (t *Table) Default() string { return t.def }

// Len returns the number of entries, aliases included.
func (t *Table) Len() int { return len(t.entries) }

// Define stores a literal pattern for symbol, replacing any earlier entry.
func (t *Table) Define(symbol string, p Pattern) error {
	if p.Height() != t.rows {
		return fmt.Errorf("glyph: %q has %d rows, table has %d", symbol, p.Height(), t.rows)
	}
	t.entries[symbol] = entry{pattern: p}
	return nil
}

// Alias makes symbol resolve to whatever target resolves to.
func (t *Table) Alias(symbol, target string) {
	t.entries[symbol] = entry{alias: target}
}

// Symbols returns every defined symbol in sorted order.
func (t *Table) Symbols() []string {
	out := make([]string, 0, len(t.entries))
	for s := range t.entries {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves symbol without falling back to the default. ok is false
// for unknown symbols, dangling aliases and alias chains longer than
// MaxHops.
func (t *Table) Lookup(symbol string) (Pattern, bool) {
	e, ok := t.entries[symbol]
	for hops := 0; ok && e.alias != ""; hops++ {
		if hops >= MaxHops {
			return Pattern{}, false
		}
		e, ok = t.entries[e.alias]
	}
	if !ok {
		return Pattern{}, false
	}
	return e.pattern, true
}

// Resolve returns the pattern for symbol. Anything unresolvable yields the
// default pattern, and a blank one if the default is missing as well.
func (t *Table) Resolve(symbol string) Pattern {
	if p, ok := t.Lookup(symbol); ok {
		return p
	}
	if p, ok := t.Lookup(t.def); ok {
		return p
	}
	return Blank(t.width, t.rows)
}
