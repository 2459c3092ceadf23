package glyph

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Font sources are line based:
//
//	// comment
//	glyph A
//	.###.
//	#...#
//	...
//	glyph a @A
//
// A "glyph" header is followed by exactly as many '#'/'.' rows as the table
// has, unless it names an alias target after the marker. "space", "hash" and
// "at" stand for ' ', '#' and '@'.
var symbolNames = map[string]string{
	"space": " ",
	"hash":  "#",
	"at":    "@",
}

func symbolName(s string) string {
	if n, ok := symbolNames[s]; ok {
		return n
	}
	return s
}

// ParseTable reads a font source into t.
func ParseTable(r io.Reader, t *Table) error {
	scanner := bufio.NewScanner(r)
	var (
		line    int
		current string
		start   int
		rows    []string
		open    bool
	)

	flush := func() error {
		if !open {
			return nil
		}
		open = false
		if len(rows) != t.rows {
			return fmt.Errorf("glyph: line %d: %q has %d rows, want %d", start, current, len(rows), t.rows)
		}
		p, err := parseRows(rows)
		if err != nil {
			return fmt.Errorf("line %d: %w", start, err)
		}
		return t.Define(current, p)
	}

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}

		if strings.HasPrefix(text, "glyph") {
			if err := flush(); err != nil {
				return err
			}
			fields := strings.Fields(text)
			if len(fields) < 2 || len(fields) > 3 || fields[0] != "glyph" {
				return fmt.Errorf("glyph: line %d: malformed header %q", line, text)
			}
			sym := symbolName(fields[1])
			if len(fields) == 3 {
				target := fields[2]
				if target[0] != AliasMarker || len(target) == 1 {
					return fmt.Errorf("glyph: line %d: alias target %q must start with %q", line, target, AliasMarker)
				}
				t.Alias(sym, symbolName(target[1:]))
				continue
			}
			current, start, rows, open = sym, line, rows[:0], true
			continue
		}

		if !open {
			return fmt.Errorf("glyph: line %d: pattern row outside a glyph", line)
		}
		rows = append(rows, text)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return flush()
}
