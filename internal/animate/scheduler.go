package animate

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
)

// Play runs seq to completion, waiting delay after every step but the last.
// A zero delay runs synchronously. Play returns ctx.Err() if the context is
// cancelled between steps.
func Play(ctx context.Context, seq *Sequence, delay time.Duration) error {
	if delay <= 0 {
		for seq.Step() {
		}
		return nil
	}

	for seq.Step() {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

type job struct {
	seq   *Sequence
	delay time.Duration
	due   time.Time
}

// Scheduler paces any number of sequences from a host loop. It owns no
// goroutine or timer: the host asks Next when to wake up and then calls
// Advance. Like the board it mutates, a Scheduler is not safe for concurrent
// use.
type Scheduler struct {
	logger *slog.Logger
	jobs   []*job
}

// NewScheduler returns an idle scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{logger: logger}
}

// Start supersedes everything running over the sequence's region and runs its
// first step immediately. A zero delay runs the whole sequence before
// returning.
func (s *Scheduler) Start(seq *Sequence, delay time.Duration, now time.Time) {
	s.Supersede(seq.Region().Rect)
	if delay <= 0 {
		for seq.Step() {
		}
		return
	}
	if !seq.Step() {
		return
	}
	s.jobs = append(s.jobs, &job{seq: seq, delay: delay, due: now.Add(delay)})
	s.logger.Debug("animation started", "topic", "animate",
		"rect", seq.Region().Rect.String(), "mode", seq.Region().Mode.String(),
		"dir", seq.Region().Dir.String(), "steps", seq.Len(), "delay", delay)
}

// Supersede stops every running sequence overlapping r and returns how many
// were stopped. Callers invoke it before any direct write to the board so a
// sequence never overwrites newer content.
func (s *Scheduler) Supersede(r board.Rect) int {
	n := 0
	kept := s.jobs[:0]
	for _, j := range s.jobs {
		if j.seq.Region().Rect.Overlaps(r) {
			j.seq.Supersede()
			n++
			continue
		}
		kept = append(kept, j)
	}
	clear(s.jobs[len(kept):])
	s.jobs = kept
	if n > 0 {
		s.logger.Debug("animations superseded", "topic", "animate", "rect", r.String(), "count", n)
	}
	return n
}

// Pending returns the number of running sequences.
func (s *Scheduler) Pending() int { return len(s.jobs) }

// Next returns when Advance next has work to do. ok is false when idle.
func (s *Scheduler) Next() (due time.Time, ok bool) {
	for _, j := range s.jobs {
		if !ok || j.due.Before(due) {
			due, ok = j.due, true
		}
	}
	return due, ok
}

// Advance runs one step of every sequence due at now, in due order, and
// drops finished ones.
func (s *Scheduler) Advance(now time.Time) {
	sort.SliceStable(s.jobs, func(a, b int) bool { return s.jobs[a].due.Before(s.jobs[b].due) })
	kept := s.jobs[:0]
	for _, j := range s.jobs {
		if j.seq.Done() {
			continue
		}
		if j.due.After(now) {
			kept = append(kept, j)
			continue
		}
		if j.seq.Step() {
			j.due = j.due.Add(j.delay)
			if j.due.Before(now) {
				j.due = now
			}
			kept = append(kept, j)
		}
	}
	clear(s.jobs[len(kept):])
	s.jobs = kept
}
