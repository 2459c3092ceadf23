package command

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/cptspacemanspiff/led-scoreboard/internal/animate"
	"github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"
	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
	"github.com/cptspacemanspiff/led-scoreboard/internal/glyph"
	"github.com/cptspacemanspiff/led-scoreboard/internal/layout"
	"github.com/cptspacemanspiff/led-scoreboard/internal/logo"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"set home 12", []string{"set", "home", "12"}},
		{"  set\thome   12 ", []string{"set", "home", "12"}},
		{`set message "GO  TEAM"`, []string{"set", "message", "GO  TEAM"}},
		{`set message ""`, []string{"set", "message", ""}},
		{`logo glyph "SAY \"HI\""`, []string{"logo", "glyph", `SAY "HI"`}},
		{`logo glyph "A\nB"`, []string{"logo", "glyph", `A\nB`}},
		{"", nil},
	}
	for _, tt := range tests {
		got, err := Tokenize(tt.line)
		if err != nil {
			t.Fatalf("Tokenize(%q) error = %v", tt.line, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Tokenize(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}

	if _, err := Tokenize(`set a "open`); err == nil {
		t.Fatal("Tokenize() error = nil for unterminated quote")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"mode scores", SetMode{Layout: "scores"}},
		{"SET home 12", SetField{Field: "home", Value: "12"}},
		{"set home 12 red", SetField{Field: "home", Value: "12", Color: board.Red, HasColor: true}},
		{"set home 12 edge left 40", SetField{Field: "home", Value: "12",
			Anim: &Anim{Mode: animate.Edge, Dir: animate.Left, Delay: 40 * time.Millisecond}}},
		{"set home 12 green matrix down 0", SetField{Field: "home", Value: "12", Color: board.Green, HasColor: true,
			Anim: &Anim{Mode: animate.Matrix, Dir: animate.Down}}},
		{"clear", Clear{}},
		{"clear home", Clear{Field: "home"}},
		{"clear matrix up 5", Clear{Anim: &Anim{Mode: animate.Matrix, Dir: animate.Up, Delay: 5 * time.Millisecond}}},
		{`logo glyph "GO" white`, ShowLogo{Source: InlineGlyph, Text: "GO", Color: board.White, HasColor: true}},
		{"logo stored crest", ShowLogo{Source: Stored, Name: "crest"}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.line)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.line, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Parse(%q) = %#v, want %#v", tt.line, got, tt.want)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	lines := []string{
		"",
		"dance",
		"mode",
		"mode a b",
		"set home",
		"set home 1 purple",
		"set home 1 edge sideways 10",
		"set home 1 edge left soon",
		"set home 1 edge left -5",
		"set home 1 edge left 9223372036855",
		"clear matrix up 99999999999999999",
		"set home 1 red edge left",
		"set home 1 red extra",
		"clear home edge",
		"logo",
		"logo painted x",
		`logo glyph "open`,
	}
	for _, line := range lines {
		_, err := Parse(line)
		var cerr *Error
		if !errors.As(err, &cerr) {
			t.Fatalf("Parse(%q) error = %v, want *Error", line, err)
		}
		if cerr.Input != line || cerr.Reason == "" {
			t.Fatalf("Parse(%q) error = %+v", line, cerr)
		}
	}
}

type memLogos map[string]struct {
	format  logo.Format
	payload []byte
}

func (m memLogos) LoadLogo(name string) (logo.Format, []byte, error) {
	l, ok := m[name]
	if !ok {
		return "", nil, errors.New("not found")
	}
	return l.format, l.payload, nil
}

type fixture struct {
	board *board.Board
	sched *animate.Scheduler
	disp  *Dispatcher
	now   time.Time
}

func newFixture(t *testing.T, logos LogoStore) *fixture {
	t.Helper()
	f := &fixture{
		board: board.New(board.DefaultGeometry(), glyph.Standard()),
		sched: animate.NewScheduler(nil),
		now:   time.Unix(100, 0),
	}
	f.disp = NewDispatcher(f.board, layout.NewState(layout.Builtin()...), f.sched, Options{
		Logos:    logos,
		MaxDelay: time.Second,
		Now:      func() time.Time { return f.now },
	})
	if err := f.disp.Execute("mode scores"); err != nil {
		t.Fatalf("Execute(mode) error = %v", err)
	}
	return f
}

func lit(b *board.Board, col, row int) bool {
	for _, c := range b.Tile(col, row) {
		if c.Lit() {
			return true
		}
	}
	return false
}

func TestExecuteSet(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.disp.Execute("set home 7 green"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	// home spans columns 3..8 of row 4, numeric values right align.
	if !lit(f.board, 8, 4) || lit(f.board, 7, 4) {
		t.Fatal("home score not drawn right aligned")
	}
	for _, c := range f.board.Tile(8, 4) {
		if c != board.Off && c != board.Green {
			t.Fatalf("home score color = %v, want green", c)
		}
	}

	if err := f.disp.Execute("clear home"); err != nil {
		t.Fatalf("Execute(clear) error = %v", err)
	}
	if lit(f.board, 8, 4) {
		t.Fatal("clear home left the score lit")
	}
	if !lit(f.board, 2, 1) {
		t.Fatal("clear home removed the home label")
	}
}

func TestExecuteRejects(t *testing.T) {
	f := newFixture(t, nil)
	before := f.board.Logical()

	lines := []string{
		"set nowhere 1",
		"set home 1X",
		"set message ☃",
		"mode missing",
		"logo stored crest",
		`logo glyph "☃"`,
	}
	for _, line := range lines {
		err := f.disp.Execute(line)
		var cerr *Error
		if !errors.As(err, &cerr) {
			t.Fatalf("Execute(%q) error = %v, want *Error", line, err)
		}
	}
	if !f.board.Logical().Equal(before) {
		t.Fatal("rejected commands changed the board")
	}
}

func TestExecuteAnimatedSet(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.disp.Execute("set message HELLO edge left 100"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	// message covers rows 8..10 from column 1; the first step reveals (1,8).
	if !lit(f.board, 1, 8) || lit(f.board, 2, 8) {
		t.Fatal("animation did not start with exactly the first tile")
	}
	if f.sched.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", f.sched.Pending())
	}

	// Column-major: (1,9) and (1,10) are blank, then (2,8) is the fourth step.
	for i := 0; i < 3; i++ {
		f.now = f.now.Add(100 * time.Millisecond)
		f.sched.Advance(f.now)
	}
	if !lit(f.board, 2, 8) {
		t.Fatal("second glyph not revealed after three more steps")
	}

	// A direct write supersedes the running animation.
	if err := f.disp.Execute("clear message"); err != nil {
		t.Fatalf("Execute(clear) error = %v", err)
	}
	if f.sched.Pending() != 0 {
		t.Fatalf("Pending() = %d after clear, want 0", f.sched.Pending())
	}
	f.now = f.now.Add(time.Hour)
	f.sched.Advance(f.now)
	if lit(f.board, 3, 8) {
		t.Fatal("superseded animation kept revealing")
	}
}

func TestExecuteZeroDelayAnimationIsSynchronous(t *testing.T) {
	f := newFixture(t, nil)
	if err := f.disp.Execute("set home 123 matrix right 0"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !lit(f.board, 6, 4) || !lit(f.board, 7, 4) || !lit(f.board, 8, 4) {
		t.Fatal("zero delay reveal not complete")
	}
	if err := f.disp.Execute("clear edge down 0"); err != nil {
		t.Fatalf("Execute(clear) error = %v", err)
	}
	if f.board.Logical().Count() != 0 {
		t.Fatal("zero delay hide left lamps lit")
	}
}

func TestExecuteLogo(t *testing.T) {
	g := board.DefaultGeometry()
	pix := bitmap.New(g.Width(), g.Height())
	pix.Set(0, 0, true)
	pix.Set(g.Width()-1, g.Height()-1, true)
	data, err := bitmap.MarshalPIX(pix)
	if err != nil {
		t.Fatalf("MarshalPIX() error = %v", err)
	}
	small, _ := bitmap.MarshalPIX(bitmap.New(8, 8))

	f := newFixture(t, memLogos{
		"crest": {logo.FormatPIX, data},
		"small": {logo.FormatPIX, small},
		"words": {logo.FormatGlyph, []byte("GO")},
	})

	if err := f.disp.Execute("logo stored crest red"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !f.board.Logical().Equal(pix) {
		t.Fatal("stored PIX logo not drawn exactly")
	}
	if got := f.board.Lamp(0, 0); got != board.Red {
		t.Fatalf("Lamp(0, 0) = %v, want red", got)
	}

	if err := f.disp.Execute("logo stored small"); !errors.Is(err, bitmap.ErrDimensions) {
		t.Fatalf("Execute(small) error = %v, want ErrDimensions", err)
	}

	if err := f.disp.Execute("logo stored words"); err != nil {
		t.Fatalf("Execute(words) error = %v", err)
	}
	if f.board.Lamp(0, 0).Lit() {
		t.Fatal("GLYPH logo not centred")
	}

	if err := f.disp.Execute(`logo glyph "12\n34" amber`); err != nil {
		t.Fatalf("Execute(glyph) error = %v", err)
	}
	if f.board.Logical().Count() == 0 {
		t.Fatal("inline GLYPH logo drew nothing")
	}
}

func TestMaxDelay(t *testing.T) {
	f := newFixture(t, nil)
	if err := f.disp.Execute("set home 1 edge left 60000"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	due, ok := f.sched.Next()
	if !ok || due.Sub(f.now) != time.Second {
		t.Fatalf("Next() = %v, %v, want capped to 1s", due.Sub(f.now), ok)
	}
}
