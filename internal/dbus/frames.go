package dbus

import (
	"sync/atomic"

	"github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"
	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
)

// Frame is one published board state.
type Frame struct {
	Logical        *bitmap.Bitmap
	Physical       *bitmap.Bitmap
	LogicalColors  *board.ColorFrame
	PhysicalColors *board.ColorFrame
}

// Frames holds the last board state published by the owner of the board.
// Publish and the readers may be called from different goroutines.
type Frames struct {
	cur atomic.Pointer[Frame]
}

// Publish replaces the current frame. Its contents must not be modified
// afterwards.
func (f *Frames) Publish(fr Frame) {
	f.cur.Store(&fr)
}

// Frame returns the logical or physical bitmap, or nil before the first
// Publish.
func (f *Frames) Frame(physical bool) *bitmap.Bitmap {
	fr := f.cur.Load()
	if fr == nil {
		return nil
	}
	if physical {
		return fr.Physical
	}
	return fr.Logical
}

// Colors returns the logical or physical colour frame, or nil before the
// first Publish.
func (f *Frames) Colors(physical bool) *board.ColorFrame {
	fr := f.cur.Load()
	if fr == nil {
		return nil
	}
	if physical {
		return fr.PhysicalColors
	}
	return fr.LogicalColors
}
