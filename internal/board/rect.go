package board

import (
	"fmt"

	"github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"
)

// Rect is an inclusive, 1-based tile rectangle.
type Rect struct {
	C1, R1 int
	C2, R2 int
}

// Cell returns the rectangle covering a single tile.
func Cell(col, row int) Rect { return Rect{C1: col, R1: row, C2: col, R2: row} }

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d-%d,%d", r.C1, r.R1, r.C2, r.R2)
}

// Canon returns r with its corners ordered.
func (r Rect) Canon() Rect {
	if r.C1 > r.C2 {
		r.C1, r.C2 = r.C2, r.C1
	}
	if r.R1 > r.R2 {
		r.R1, r.R2 = r.R2, r.R1
	}
	return r
}

// Empty reports whether r covers no tile.
func (r Rect) Empty() bool { return r.C1 > r.C2 || r.R1 > r.R2 }

// Cols returns the number of columns of r, or 0 when empty.
func (r Rect) Cols() int {
	if r.Empty() {
		return 0
	}
	return r.C2 - r.C1 + 1
}

// Rows returns the number of rows of r, or 0 when empty.
func (r Rect) Rows() int {
	if r.Empty() {
		return 0
	}
	return r.R2 - r.R1 + 1
}

// Contains reports whether the tile is inside r.
func (r Rect) Contains(col, row int) bool {
	return col >= r.C1 && col <= r.C2 && row >= r.R1 && row <= r.R2
}

// Intersect returns the tiles common to r and o. The result may be empty.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		C1: max(r.C1, o.C1),
		R1: max(r.R1, o.R1),
		C2: min(r.C2, o.C2),
		R2: min(r.R2, o.R2),
	}
}

// Overlaps reports whether r and o share a tile.
func (r Rect) Overlaps(o Rect) bool {
	return !r.Canon().Intersect(o.Canon()).Empty()
}

// Grid is a snapshot of tiles taken by SnapshotRect.
type Grid struct {
	Cols  int
	Rows  int
	tiles []Tile
}

// At returns the tile at 0-based offset (i, j) in the snapshot. ok is false
// outside the grid or for a tile captured off the board.
func (g Grid) At(i, j int) (Tile, bool) {
	if i < 0 || j < 0 || i >= g.Cols || j >= g.Rows {
		return nil, false
	}
	t := g.tiles[j*g.Cols+i]
	return t, t != nil
}

// Mechanics describes the mechanical gaps of the physical board: CellGap
// lamps between neighbouring cells, and PanelGap more lamps after every
// PanelTiles cells.
type Mechanics struct {
	CellGapX, CellGapY       int
	PanelTilesX, PanelTilesY int
	PanelGapX, PanelGapY     int
}

// DefaultMechanics is a 2 lamp gap between cells and a further 4 lamps
// between panels of 30 by 10 cells.
func DefaultMechanics() Mechanics {
	return Mechanics{
		CellGapX:    2,
		CellGapY:    2,
		PanelTilesX: 30,
		PanelTilesY: 10,
		PanelGapX:   4,
		PanelGapY:   4,
	}
}

// Stages returns the expansions, applied in order, that take the logical
// bitmap of a board of geometry g to its physical grid.
func (m Mechanics) Stages(g Geometry) []bitmap.Gaps {
	cell := bitmap.Gaps{
		X: bitmap.Axis{Run: g.CellWidth, Gap: m.CellGapX},
		Y: bitmap.Axis{Run: g.CellHeight, Gap: m.CellGapY},
	}
	panel := bitmap.Gaps{
		X: bitmap.Axis{Run: m.PanelTilesX * (g.CellWidth + m.CellGapX), Gap: m.PanelGapX},
		Y: bitmap.Axis{Run: m.PanelTilesY * (g.CellHeight + m.CellGapY), Gap: m.PanelGapY},
	}
	return []bitmap.Gaps{cell, panel}
}

// Expand lays a logical bitmap of a board of geometry g out on the
// physical grid of m.
func (m Mechanics) Expand(logical *bitmap.Bitmap, g Geometry) *bitmap.Bitmap {
	out := logical
	for _, st := range m.Stages(g) {
		out = bitmap.ExpandToPhysical(out, st)
	}
	return out
}

// Compress inverts the physical expansion of m for a board of geometry g.
func (m Mechanics) Compress(p *bitmap.Bitmap, g Geometry) (*bitmap.Bitmap, error) {
	stages := m.Stages(g)
	out := p
	for i := len(stages) - 1; i >= 0; i-- {
		var err error
		out, err = bitmap.CompressFromPhysical(out, stages[i])
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
