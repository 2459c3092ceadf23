/*
Package animate reveals and hides rectangular board regions one step at a
time.

A Sequence is an explicit step iterator: every call to Step commits one
tile (edge sweep) or one whole row or column (matrix sweep) to the board and
reports whether more steps remain. Pacing is left to the caller, either Play
for a blocking loop or a Scheduler driven by the host's own event loop.
*/
package animate

import (
	"fmt"
	"strings"

	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
)

// Mode selects the traversal family.
type Mode int

const (
	// Edge visits one tile per step.
	Edge Mode = iota
	// Matrix visits a whole row or column per step.
	Matrix
)

func (m Mode) String() string {
	switch m {
	case Edge:
		return "edge"
	case Matrix:
		return "matrix"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps "edge" or "matrix" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "edge":
		return Edge, nil
	case "matrix":
		return Matrix, nil
	}
	return 0, fmt.Errorf("animate: unknown mode %q", s)
}

// Direction is the way a sweep travels. Left and Right sweep columns,
// starting at the left and right edge respectively; Down and Up sweep rows
// from the top and bottom.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection maps left, right, up or down to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return 0, fmt.Errorf("animate: unknown direction %q", s)
}

// Region is the area and traversal of one transition.
type Region struct {
	Rect board.Rect
	Mode Mode
	Dir  Direction
}

type point struct{ col, row int }

// steps returns the tiles visited by every step of a traversal, in order.
func (r Region) steps() [][]point {
	rect := r.Rect.Canon()
	if rect.Empty() {
		return nil
	}
	cols := make([]int, 0, rect.Cols())
	for c := rect.C1; c <= rect.C2; c++ {
		cols = append(cols, c)
	}
	rows := make([]int, 0, rect.Rows())
	for row := rect.R1; row <= rect.R2; row++ {
		rows = append(rows, row)
	}
	switch r.Dir {
	case Right:
		reverse(cols)
	case Up:
		reverse(rows)
	}

	// Left and Right are column-major, Up and Down row-major.
	columnMajor := r.Dir == Left || r.Dir == Right
	var out [][]point
	if columnMajor {
		for _, c := range cols {
			line := make([]point, 0, len(rows))
			for _, row := range rows {
				line = append(line, point{c, row})
			}
			out = append(out, line)
		}
	} else {
		for _, row := range rows {
			line := make([]point, 0, len(cols))
			for _, c := range cols {
				line = append(line, point{c, row})
			}
			out = append(out, line)
		}
	}
	if r.Mode == Matrix {
		return out
	}
	var single [][]point
	for _, line := range out {
		for _, p := range line {
			single = append(single, []point{p})
		}
	}
	return single
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Sequence is an in-progress reveal or hide.
type Sequence struct {
	b       *board.Board
	region  Region
	steps   [][]point
	next    int
	reveal  bool
	snap    board.Grid
	stopped bool
}

// Reveal writes the tiles of snap back over region, one step at a time. snap
// is normally taken with SnapshotRect over the same rectangle before it was
// cleared; tiles missing from snap are skipped.
func Reveal(b *board.Board, region Region, snap board.Grid) *Sequence {
	return &Sequence{b: b, region: region, steps: region.steps(), reveal: true, snap: snap}
}

// Hide clears the tiles of region one step at a time.
func Hide(b *board.Board, region Region) *Sequence {
	return &Sequence{b: b, region: region, steps: region.steps()}
}

// Region returns the area the sequence writes to.
func (s *Sequence) Region() Region { return s.region }

// Len returns the total number of steps.
func (s *Sequence) Len() int { return len(s.steps) }

// Done reports whether no steps remain.
func (s *Sequence) Done() bool { return s.stopped || s.next >= len(s.steps) }

// Supersede stops the sequence before its next write.
func (s *Sequence) Supersede() { s.stopped = true }

// Superseded reports whether Supersede was called.
func (s *Sequence) Superseded() bool { return s.stopped }

// Step commits the next step to the board and reports whether more remain.
// Calling Step on a finished or superseded sequence does nothing.
func (s *Sequence) Step() (more bool) {
	if s.Done() {
		return false
	}
	rect := s.region.Rect.Canon()
	for _, p := range s.steps[s.next] {
		if !s.reveal {
			s.b.ClearCell(p.col, p.row)
			continue
		}
		tile, ok := s.snap.At(p.col-rect.C1, p.row-rect.R1)
		if !ok {
			continue
		}
		s.b.WriteTile(p.col, p.row, tile)
	}
	s.next++
	return !s.Done()
}
