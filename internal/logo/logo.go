// Package logo renders stored logo payloads into logical board bitmaps.
//
// Two payload formats exist. GLYPH is text art: rows of symbols separated by
// newlines, drawn through a glyph table with proportional spacing. PIX is a
// packed bitmap with an explicit size header that must match the board.
package logo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"
	"github.com/cptspacemanspiff/led-scoreboard/internal/glyph"
)

// Format names a payload encoding.
type Format string

const (
	FormatGlyph Format = "GLYPH"
	FormatPIX   Format = "PIX"
)

// ErrFormat is returned for unknown formats and undrawable payloads.
var ErrFormat = errors.New("logo: bad format")

// ParseFormat maps a case-insensitive format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToUpper(strings.TrimSpace(s))); f {
	case FormatGlyph, FormatPIX:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", ErrFormat, s)
}

// Render draws payload into a width by height bitmap. GLYPH text is laid out
// with font; PIX payloads must carry exactly width by height.
func Render(f Format, payload []byte, font *glyph.Table, width, height int) (*bitmap.Bitmap, error) {
	switch f {
	case FormatGlyph:
		return Layout(string(payload), font, width, height), nil
	case FormatPIX:
		b, err := bitmap.UnmarshalPIX(payload, width, height)
		if err != nil {
			return nil, fmt.Errorf("decode pix: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: unknown format %q", ErrFormat, string(f))
}

// Lines splits GLYPH text into rows. Both real newlines and the two
// character escape \n separate rows.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// Check reports the first symbol of text that font cannot resolve without
// falling back to its default.
func Check(text string, font *glyph.Table) error {
	for _, line := range Lines(text) {
		for _, r := range line {
			if r == ' ' {
				continue
			}
			if _, ok := font.Lookup(string(r)); !ok {
				return fmt.Errorf("%w: no glyph for %q", ErrFormat, r)
			}
		}
	}
	return nil
}
