/*
Package command decodes scoreboard command lines and applies them to a
board.

A line is split on whitespace; double-quoted literals keep embedded spaces
and \" escapes a quote inside them. The head word selects one of the tagged
command types below, decoded once by Parse and then applied by a
Dispatcher:

	mode   LAYOUT
	set    FIELD VALUE [COLOR] [ANIM]
	clear  [FIELD] [ANIM]
	logo   glyph "TEXT" [COLOR] [ANIM]
	logo   stored NAME  [COLOR] [ANIM]

	ANIM := edge DIR DELAYMS | matrix DIR DELAYMS
	DIR  := left | right | up | down

Malformed lines yield an *Error and never panic.
*/
package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cptspacemanspiff/led-scoreboard/internal/animate"
	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
)

// Error reports a command that could not be decoded or applied.
type Error struct {
	Input  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("command %q: %s", e.Input, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func malformed(input string, err error, format string, args ...any) *Error {
	return &Error{Input: input, Reason: fmt.Sprintf(format, args...), Err: err}
}

var errUnterminated = errors.New("unterminated quote")

// Tokenize splits a line into words. Quoted words may be empty.
func Tokenize(line string) ([]string, error) {
	var (
		out    []string
		cur    strings.Builder
		inWord bool
		quoted bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quoted:
			switch {
			case c == '\\' && i+1 < len(line) && line[i+1] == '"':
				cur.WriteByte('"')
				i++
			case c == '"':
				quoted = false
			default:
				cur.WriteByte(c)
			}
		case c == '"':
			quoted, inWord = true, true
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			if inWord {
				out = append(out, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteByte(c)
			inWord = true
		}
	}
	if quoted {
		return nil, errUnterminated
	}
	if inWord {
		out = append(out, cur.String())
	}
	return out, nil
}

// Anim is an optional transition attached to a command.
type Anim struct {
	Mode  animate.Mode
	Dir   animate.Direction
	Delay time.Duration
}

// Command is one of SetMode, SetField, Clear or ShowLogo.
type Command interface {
	command()
}

// SetMode selects a layout.
type SetMode struct {
	Layout string
}

// SetField writes a value into a field of the active layout. Color is only
// meaningful when HasColor is set.
type SetField struct {
	Field    string
	Value    string
	Color    board.Color
	HasColor bool
	Anim     *Anim
}

// Clear blanks one field, or the whole board when Field is empty.
type Clear struct {
	Field string
	Anim  *Anim
}

// LogoSource says where a logo payload comes from.
type LogoSource int

const (
	// InlineGlyph draws Text through the coarse glyph table.
	InlineGlyph LogoSource = iota
	// Stored loads the payload called Name.
	Stored
)

// ShowLogo paints a logo over the whole board.
type ShowLogo struct {
	Source   LogoSource
	Text     string
	Name     string
	Color    board.Color
	HasColor bool
	Anim     *Anim
}

func (SetMode) command()  {}
func (SetField) command() {}
func (Clear) command()    {}
func (ShowLogo) command() {}

// Parse decodes one command line.
func Parse(line string) (Command, error) {
	words, err := Tokenize(line)
	if err != nil {
		return nil, malformed(line, err, "%v", err)
	}
	if len(words) == 0 {
		return nil, malformed(line, nil, "empty command")
	}

	head, args := strings.ToLower(words[0]), words[1:]
	switch head {
	case "mode":
		if len(args) != 1 {
			return nil, malformed(line, nil, "mode takes exactly one layout")
		}
		return SetMode{Layout: args[0]}, nil

	case "set":
		if len(args) < 2 {
			return nil, malformed(line, nil, "set needs a field and a value")
		}
		c := SetField{Field: args[0], Value: args[1]}
		c.Color, c.HasColor, c.Anim, err = parseTail(args[2:], true)
		if err != nil {
			return nil, malformed(line, err, "%v", err)
		}
		return c, nil

	case "clear":
		c := Clear{}
		rest := args
		if len(rest) > 0 && !isAnimMode(rest[0]) {
			c.Field, rest = rest[0], rest[1:]
		}
		_, _, c.Anim, err = parseTail(rest, false)
		if err != nil {
			return nil, malformed(line, err, "%v", err)
		}
		return c, nil

	case "logo":
		if len(args) < 2 {
			return nil, malformed(line, nil, "logo needs a source and an argument")
		}
		c := ShowLogo{}
		switch strings.ToLower(args[0]) {
		case "glyph":
			c.Source, c.Text = InlineGlyph, args[1]
		case "stored":
			c.Source, c.Name = Stored, args[1]
		default:
			return nil, malformed(line, nil, "unknown logo source %q", args[0])
		}
		c.Color, c.HasColor, c.Anim, err = parseTail(args[2:], true)
		if err != nil {
			return nil, malformed(line, err, "%v", err)
		}
		return c, nil
	}
	return nil, malformed(line, nil, "unknown command %q", words[0])
}

func isAnimMode(s string) bool {
	_, err := animate.ParseMode(s)
	return err == nil
}

// parseTail decodes the optional [COLOR] [ANIM] suffix.
func parseTail(words []string, colorAllowed bool) (board.Color, bool, *Anim, error) {
	var (
		color    board.Color
		hasColor bool
	)
	if colorAllowed && len(words) > 0 && !isAnimMode(words[0]) {
		c, err := board.ParseColor(words[0])
		if err != nil {
			return 0, false, nil, err
		}
		color, hasColor, words = c, true, words[1:]
	}
	if len(words) == 0 {
		return color, hasColor, nil, nil
	}
	if len(words) != 3 {
		return 0, false, nil, fmt.Errorf("animation needs MODE DIR DELAYMS, got %d words", len(words))
	}
	mode, err := animate.ParseMode(words[0])
	if err != nil {
		return 0, false, nil, err
	}
	dir, err := animate.ParseDirection(words[1])
	if err != nil {
		return 0, false, nil, err
	}
	ms, err := strconv.Atoi(words[2])
	if err != nil || ms < 0 || int64(ms) > math.MaxInt64/int64(time.Millisecond) {
		return 0, false, nil, fmt.Errorf("invalid delay %q", words[2])
	}
	return color, hasColor, &Anim{Mode: mode, Dir: dir, Delay: time.Duration(ms) * time.Millisecond}, nil
}
