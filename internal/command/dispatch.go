package command

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cptspacemanspiff/led-scoreboard/internal/animate"
	"github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"
	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
	"github.com/cptspacemanspiff/led-scoreboard/internal/glyph"
	"github.com/cptspacemanspiff/led-scoreboard/internal/layout"
	"github.com/cptspacemanspiff/led-scoreboard/internal/logo"
)

// LogoStore loads persisted logo payloads by name.
type LogoStore interface {
	LoadLogo(name string) (logo.Format, []byte, error)
}

// Options configure a Dispatcher. Zero values are usable.
type Options struct {
	// Logos serves "logo stored". Without it those commands fail.
	Logos LogoStore
	// Coarse is the text-art font for logos; glyph.Coarse() by default.
	Coarse *glyph.Table
	// MaxDelay caps per-step animation delays; zero means no cap.
	MaxDelay time.Duration
	// LogoColor is used when a logo command names no color.
	LogoColor board.Color
	Logger    *slog.Logger
	Now       func() time.Time
}

// Dispatcher applies commands to one board. It must only be used from one
// goroutine.
type Dispatcher struct {
	board   *board.Board
	layouts *layout.State
	sched   *animate.Scheduler
	opts    Options
	logger  *slog.Logger
}

// NewDispatcher returns a dispatcher for b.
func NewDispatcher(b *board.Board, layouts *layout.State, sched *animate.Scheduler, opts Options) *Dispatcher {
	if opts.Coarse == nil {
		opts.Coarse = glyph.Coarse()
	}
	if opts.LogoColor == board.Off {
		opts.LogoColor = board.Amber
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{board: b, layouts: layouts, sched: sched, opts: opts, logger: logger}
}

// Execute parses and applies one line.
func (d *Dispatcher) Execute(line string) error {
	cmd, err := Parse(line)
	if err == nil {
		err = d.Apply(line, cmd)
	}
	if err != nil {
		d.logger.Warn("command rejected", "topic", "command", "line", line, "error", err)
		return err
	}
	d.logger.Debug("command applied", "topic", "command", "command", String(cmd))
	return nil
}

// Apply applies a decoded command. line is only used in errors.
func (d *Dispatcher) Apply(line string, cmd Command) error {
	switch c := cmd.(type) {
	case SetMode:
		d.sched.Supersede(d.board.Bounds())
		if err := d.layouts.Select(d.board, c.Layout); err != nil {
			return malformed(line, err, "%v", err)
		}
		return nil
	case SetField:
		return d.setField(line, c)
	case Clear:
		return d.clear(line, c)
	case ShowLogo:
		return d.showLogo(line, c)
	}
	return malformed(line, nil, "unsupported command %T", cmd)
}

func (d *Dispatcher) setField(line string, c SetField) error {
	f, err := d.layouts.Field(c.Field)
	if err != nil {
		return malformed(line, err, "%v", err)
	}
	if err := f.Validate(c.Value); err != nil {
		return malformed(line, err, "%v", err)
	}
	for _, sym := range f.Cells(c.Value) {
		if sym == "" {
			continue
		}
		if _, ok := d.board.Font().Lookup(sym); !ok {
			return malformed(line, nil, "no glyph for %q", sym)
		}
	}
	color := f.Color
	if c.HasColor {
		color = c.Color
	}

	rect := f.Rect.Canon()
	d.sched.Supersede(rect)
	f.Draw(d.board, c.Value, color)
	d.reveal(rect, c.Anim)
	return nil
}

func (d *Dispatcher) clear(line string, c Clear) error {
	rect := d.board.Bounds()
	if c.Field != "" {
		f, err := d.layouts.Field(c.Field)
		if err != nil {
			return malformed(line, err, "%v", err)
		}
		rect = f.Rect.Canon()
	}
	if c.Anim == nil {
		d.sched.Supersede(rect)
		d.board.ClearRect(rect)
		return nil
	}
	region := animate.Region{Rect: rect, Mode: c.Anim.Mode, Dir: c.Anim.Dir}
	d.sched.Start(animate.Hide(d.board, region), d.delay(c.Anim), d.opts.Now())
	return nil
}

func (d *Dispatcher) showLogo(line string, c ShowLogo) error {
	g := d.board.Geometry()
	var (
		bm  *bitmap.Bitmap
		err error
	)
	switch c.Source {
	case InlineGlyph:
		if err := logo.Check(c.Text, d.opts.Coarse); err != nil {
			return malformed(line, err, "%v", err)
		}
		bm = logo.Layout(c.Text, d.opts.Coarse, g.Width(), g.Height())
	case Stored:
		if d.opts.Logos == nil {
			return malformed(line, nil, "no logo store configured")
		}
		format, payload, lerr := d.opts.Logos.LoadLogo(c.Name)
		if lerr != nil {
			return malformed(line, lerr, "load logo %q: %v", c.Name, lerr)
		}
		bm, err = logo.Render(format, payload, d.opts.Coarse, g.Width(), g.Height())
		if err != nil {
			return malformed(line, err, "render logo %q: %v", c.Name, err)
		}
	default:
		return malformed(line, nil, "unknown logo source %d", c.Source)
	}

	color := d.opts.LogoColor
	if c.HasColor {
		color = c.Color
	}
	rect := d.board.Bounds()
	d.sched.Supersede(rect)
	d.board.DrawBitmap(bm, color)
	d.reveal(rect, c.Anim)
	return nil
}

// reveal turns what was just drawn in rect into a reveal animation.
func (d *Dispatcher) reveal(rect board.Rect, a *Anim) {
	if a == nil {
		return
	}
	snap := d.board.SnapshotRect(rect)
	d.board.ClearRect(rect)
	region := animate.Region{Rect: rect, Mode: a.Mode, Dir: a.Dir}
	d.sched.Start(animate.Reveal(d.board, region, snap), d.delay(a), d.opts.Now())
}

func (d *Dispatcher) delay(a *Anim) time.Duration {
	if d.opts.MaxDelay > 0 && a.Delay > d.opts.MaxDelay {
		return d.opts.MaxDelay
	}
	return a.Delay
}

// String describes a command for logs.
func String(cmd Command) string {
	switch c := cmd.(type) {
	case SetMode:
		return "mode " + c.Layout
	case SetField:
		return fmt.Sprintf("set %s=%q", c.Field, c.Value)
	case Clear:
		if c.Field == "" {
			return "clear"
		}
		return "clear " + c.Field
	case ShowLogo:
		if c.Source == Stored {
			return "logo stored " + c.Name
		}
		return "logo glyph"
	}
	return fmt.Sprintf("%T", cmd)
}
