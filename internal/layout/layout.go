/*
Package layout defines the named field layouts (modes) of the board.

A layout is a set of named fields, each a tile rectangle. Label fields are
drawn when the layout is selected; numeric and text fields are written by
set commands. Values fill a field in reading order, one symbol per tile:
numeric values are right aligned, everything else left aligned, and values
longer than the field are truncated.
*/
package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
)

// Kind is the type of a field.
type Kind int

const (
	Label Kind = iota
	Numeric
	Text
)

func (k Kind) String() string {
	switch k {
	case Label:
		return "label"
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps label, numeric or text to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "label":
		return Label, nil
	case "numeric":
		return Numeric, nil
	case "text":
		return Text, nil
	}
	return 0, fmt.Errorf("layout: unknown field kind %q", s)
}

var (
	ErrUnknownLayout = errors.New("layout: unknown layout")
	ErrUnknownField  = errors.New("layout: unknown field")
	ErrValue         = errors.New("layout: invalid value")
)

// Field is a named rectangle of tiles.
type Field struct {
	Name  string
	Kind  Kind
	Rect  board.Rect
	Label string
	Color board.Color
}

// Capacity returns the number of symbols the field holds.
func (f Field) Capacity() int {
	r := f.Rect.Canon()
	return r.Cols() * r.Rows()
}

// Validate checks value against the field kind. Numeric fields accept
// digits, '-', ':' and spaces.
func (f Field) Validate(value string) error {
	if f.Kind != Numeric {
		return nil
	}
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9', r == '-', r == ':', r == ' ':
		default:
			return fmt.Errorf("%w: %q is not numeric", ErrValue, value)
		}
	}
	return nil
}

// Cells returns one symbol per tile of the field in reading order, aligned
// and truncated for the field kind. Empty strings are blank tiles.
func (f Field) Cells(value string) []string {
	n := f.Capacity()
	out := make([]string, n)
	runes := []rune(value)
	if len(runes) > n {
		runes = runes[:n]
	}
	start := 0
	if f.Kind == Numeric {
		start = n - len(runes)
	}
	for i, r := range runes {
		if r != ' ' {
			out[start+i] = string(r)
		}
	}
	return out
}

// Draw clears the field and writes value into it in color c.
func (f Field) Draw(b *board.Board, value string, c board.Color) {
	r := f.Rect.Canon()
	b.ClearRect(r)
	cells := f.Cells(value)
	for i, sym := range cells {
		if sym == "" {
			continue
		}
		col := r.C1 + i%r.Cols()
		row := r.R1 + i/r.Cols()
		b.DrawChar(col, row, sym, c)
	}
}

// Layout is a named set of fields.
type Layout struct {
	Name   string
	Fields []Field
}

// Field returns the named field.
func (l Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return Field{}, false
}

// State tracks the known layouts and the active one.
type State struct {
	layouts map[string]Layout
	active  string
}

// NewState returns a state knowing the given layouts. Later layouts replace
// earlier ones of the same name. No layout is active.
func NewState(layouts ...Layout) *State {
	s := &State{layouts: make(map[string]Layout)}
	for _, l := range layouts {
		s.layouts[strings.ToLower(l.Name)] = l
	}
	return s
}

// Names returns the known layout names in sorted order.
func (s *State) Names() []string {
	out := make([]string, 0, len(s.layouts))
	for _, l := range s.layouts {
		out = append(out, l.Name)
	}
	sort.Strings(out)
	return out
}

// Active returns the active layout. ok is false before the first Select.
func (s *State) Active() (Layout, bool) {
	l, ok := s.layouts[s.active]
	return l, ok && s.active != ""
}

// Select clears b, makes name the active layout and draws its labels.
func (s *State) Select(b *board.Board, name string) error {
	l, ok := s.layouts[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownLayout, name)
	}
	s.active = strings.ToLower(name)
	b.Clear()
	for _, f := range l.Fields {
		if f.Kind == Label {
			f.Draw(b, f.Label, f.Color)
		}
	}
	return nil
}

// Field resolves name within the active layout.
func (s *State) Field(name string) (Field, error) {
	l, ok := s.Active()
	if !ok {
		return Field{}, fmt.Errorf("%w %q: no layout selected", ErrUnknownField, name)
	}
	f, ok := l.Field(name)
	if !ok {
		return Field{}, fmt.Errorf("%w %q in layout %q", ErrUnknownField, name, l.Name)
	}
	return f, nil
}
