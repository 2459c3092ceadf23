package board

import (
	"errors"
	"fmt"
	"strings"
)

// Color is the displayed state of one lamp. Off is the zero value.
type Color uint8

const (
	Off Color = iota
	Amber
	Red
	Green
	Blue
	White
)

var colorNames = [...]string{
	Off:   "off",
	Amber: "amber",
	Red:   "red",
	Green: "green",
	Blue:  "blue",
	White: "white",
}

// ErrUnknownColor is returned by ParseColor.
var ErrUnknownColor = errors.New("board: unknown color")

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("Color(%d)", uint8(c))
}

// Lit reports whether the lamp is on.
func (c Color) Lit() bool { return c != Off }

// ParseColor maps a case-insensitive color name to a Color.
func ParseColor(s string) (Color, error) {
	name := strings.ToLower(s)
	for c, n := range colorNames {
		if n == name {
			return Color(c), nil
		}
	}
	return Off, fmt.Errorf("%w %q", ErrUnknownColor, s)
}

// Display returns the preview color of a lamp in this state.
func (c Color) Display() (r, g, b uint8) {
	switch c {
	case Amber:
		return 0xff, 0xb0, 0x00
	case Red:
		return 0xff, 0x20, 0x20
	case Green:
		return 0x20, 0xe0, 0x40
	case Blue:
		return 0x30, 0x70, 0xff
	case White:
		return 0xff, 0xff, 0xff
	}
	return 0x18, 0x18, 0x18
}
