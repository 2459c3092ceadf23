package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cptspacemanspiff/led-scoreboard/internal/animate"
	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
	"github.com/cptspacemanspiff/led-scoreboard/internal/command"
	"github.com/cptspacemanspiff/led-scoreboard/internal/config"
	dbussvc "github.com/cptspacemanspiff/led-scoreboard/internal/dbus"
	"github.com/cptspacemanspiff/led-scoreboard/internal/glyph"
	"github.com/cptspacemanspiff/led-scoreboard/internal/layout"
	"github.com/cptspacemanspiff/led-scoreboard/internal/spool"
	"github.com/cptspacemanspiff/led-scoreboard/internal/storage"
)

// engine owns the board. Every method must be called from the goroutine
// running run.
type engine struct {
	board  *board.Board
	mech   board.Mechanics
	sched  *animate.Scheduler
	disp   *command.Dispatcher
	store  *storage.DB
	frames *dbussvc.Frames
	logger *slog.Logger
	now    func() time.Time

	spoolPath string
	retention time.Duration
}

func newEngine(cfg *config.Config, store *storage.DB, logger *slog.Logger) (*engine, error) {
	font := glyph.Standard()
	if cfg.Board.BDFFont != "" {
		data, err := os.ReadFile(cfg.Board.BDFFont)
		if err != nil {
			return nil, fmt.Errorf("read bdf font: %w", err)
		}
		n, err := glyph.LoadBDF(data, font, printable())
		if err != nil {
			return nil, err
		}
		logger.Info("loaded bdf font", "path", cfg.Board.BDFFont, "glyphs", n)
	}

	layouts, err := cfg.BuildLayouts()
	if err != nil {
		return nil, err
	}
	state := layout.NewState(layouts...)

	b := board.New(cfg.Geometry(), font)
	if err := state.Select(b, cfg.Board.Layout); err != nil {
		return nil, fmt.Errorf("select layout: %w", err)
	}

	e := &engine{
		board:     b,
		mech:      cfg.Mechanics(),
		sched:     animate.NewScheduler(logger),
		store:     store,
		frames:    &dbussvc.Frames{},
		logger:    logger,
		now:       time.Now,
		spoolPath: cfg.Storage.SpoolPath,
		retention: time.Duration(cfg.Cleanup.RetentionDays) * 24 * time.Hour,
	}
	opts := command.Options{
		MaxDelay: time.Duration(cfg.Animation.MaxDelayMillis) * time.Millisecond,
		Logger:   logger,
		Now:      func() time.Time { return e.now() },
	}
	if store != nil {
		opts.Logos = store
	}
	e.disp = command.NewDispatcher(b, state, e.sched, opts)
	e.publish()
	return e, nil
}

func printable() []rune {
	var rs []rune
	for r := rune('!'); r <= '~'; r++ {
		rs = append(rs, r)
	}
	return rs
}

// publish makes the current board visible to bus readers.
func (e *engine) publish() {
	g := e.board.Geometry()
	colors := e.board.Colors()
	e.frames.Publish(dbussvc.Frame{
		Logical:        e.board.Logical(),
		Physical:       e.board.Physical(e.mech),
		LogicalColors:  colors,
		PhysicalColors: e.mech.ExpandColors(colors, g),
	})
}

// apply runs one command line and returns its journal record.
func (e *engine) apply(line string) storage.CommandRecord {
	err := e.disp.Execute(line)
	rec := storage.CommandRecord{Timestamp: e.now().Unix(), Line: line, OK: err == nil}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}

// execute applies one command line and journals its outcome.
func (e *engine) execute(line string) {
	rec := e.apply(line)
	if e.store != nil {
		if err := e.store.InsertCommand(rec); err != nil {
			e.logger.Error("journal command", "topic", "storage", "err", err)
		}
	}
	e.publish()
}

// advance runs animation steps that are due.
func (e *engine) advance() {
	e.sched.Advance(e.now())
	e.publish()
}

// replaySpool executes queued lines from the spool file.
func (e *engine) replaySpool() {
	if e.spoolPath == "" {
		return
	}
	log := e.logger.With("topic", "spool")
	entries := spool.Consume(log, e.spoolPath)
	if len(entries) == 0 {
		log.Debug("no spooled commands")
		return
	}
	records := make([]storage.CommandRecord, 0, len(entries))
	for _, entry := range entries {
		log.Info("replaying command", "ts", entry.Ts, "line", entry.Line)
		records = append(records, e.apply(entry.Line))
	}
	if e.store != nil {
		if err := e.store.InsertCommands(records); err != nil {
			e.logger.Error("journal spooled commands", "topic", "storage", "err", err)
		}
	}
	e.publish()
}

// cleanup deletes journal rows past the retention window.
func (e *engine) cleanup() {
	if e.store == nil {
		return
	}
	cutoff := e.now().Add(-e.retention).Unix()
	n, err := e.store.DeleteOlderThan(cutoff)
	if err != nil {
		e.logger.Error("cleanup journal", "topic", "storage", "err", err)
		return
	}
	e.logger.Info("cleaned up journal", "topic", "storage", "deleted", n, "before", cutoff)
}

// run serves commands until ctx is done. Animation timers, spool replays and
// cleanups are all handled here so that the board has a single owner.
func (e *engine) run(ctx context.Context, cmds <-chan string, hup <-chan os.Signal, cleanupEvery time.Duration) error {
	ticker := time.NewTicker(cleanupEvery)
	defer ticker.Stop()

	for {
		var due <-chan time.Time
		var timer *time.Timer
		if at, ok := e.sched.Next(); ok {
			timer = time.NewTimer(max(at.Sub(e.now()), 0))
			due = timer.C
		}

		select {
		case line := <-cmds:
			e.execute(line)
		case <-due:
			e.advance()
		case <-hup:
			e.logger.Info("SIGHUP received, replaying spool")
			e.replaySpool()
		case <-ticker.C:
			e.cleanup()
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		}
		if timer != nil {
			timer.Stop()
		}
	}
}
