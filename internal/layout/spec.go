package layout

import (
	"fmt"

	"github.com/cptspacemanspiff/led-scoreboard/internal/animate"
	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
)

// FieldSpec is the configuration file form of a Field.
type FieldSpec struct {
	Name  string `toml:"name"`
	Kind  string `toml:"kind"`
	Rect  [4]int `toml:"rect"`
	Label string `toml:"label,omitempty"`
	Color string `toml:"color,omitempty"`
}

// Spec is the configuration file form of a Layout.
type Spec struct {
	Name   string      `toml:"name"`
	Fields []FieldSpec `toml:"fields"`
}

// Build validates s and converts it into a Layout.
func (s Spec) Build() (Layout, error) {
	if s.Name == "" {
		return Layout{}, fmt.Errorf("layout: missing name")
	}
	l := Layout{Name: s.Name}
	seen := make(map[string]bool)
	for i, fs := range s.Fields {
		if fs.Name == "" {
			return Layout{}, fmt.Errorf("layout %q: field %d: missing name", s.Name, i+1)
		}
		// "clear edge left 40" would be read as an animation.
		if _, err := animate.ParseMode(fs.Name); err == nil {
			return Layout{}, fmt.Errorf("layout %q: field name %q is an animation mode", s.Name, fs.Name)
		}
		if seen[fs.Name] {
			return Layout{}, fmt.Errorf("layout %q: duplicate field %q", s.Name, fs.Name)
		}
		seen[fs.Name] = true

		kind, err := ParseKind(fs.Kind)
		if err != nil {
			return Layout{}, fmt.Errorf("layout %q: field %q: %w", s.Name, fs.Name, err)
		}
		color := board.Amber
		if kind == Label {
			color = board.White
		}
		if fs.Color != "" {
			if color, err = board.ParseColor(fs.Color); err != nil {
				return Layout{}, fmt.Errorf("layout %q: field %q: %w", s.Name, fs.Name, err)
			}
		}
		r := board.Rect{C1: fs.Rect[0], R1: fs.Rect[1], C2: fs.Rect[2], R2: fs.Rect[3]}
		if r.C1 < 1 || r.R1 < 1 || r.Empty() {
			return Layout{}, fmt.Errorf("layout %q: field %q: invalid rect %v", s.Name, fs.Name, fs.Rect)
		}
		l.Fields = append(l.Fields, Field{
			Name:  fs.Name,
			Kind:  kind,
			Rect:  r,
			Label: fs.Label,
			Color: color,
		})
	}
	return l, nil
}
