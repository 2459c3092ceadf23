/*
Package board holds the lamp state of a scoreboard: a fixed grid of tiles
(character cells), each a small matrix of colored lamps.

Tiles are addressed 1-based by column and row. Addresses outside the board
are silently ignored so that garbled remote commands degrade instead of
failing. A Board is not safe for concurrent use; callers serialise all
mutation.
*/
package board

import (
	"github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"
	"github.com/cptspacemanspiff/led-scoreboard/internal/glyph"
)

// Geometry is the fixed size of a board.
type Geometry struct {
	TilesX     int
	TilesY     int
	CellWidth  int
	CellHeight int
}

// DefaultGeometry is a 30 by 10 board of 5x7 cells.
func DefaultGeometry() Geometry {
	return Geometry{
		TilesX:     30,
		TilesY:     10,
		CellWidth:  glyph.StandardWidth,
		CellHeight: glyph.StandardRows,
	}
}

// Width returns the logical width in lamps.
func (g Geometry) Width() int { return g.TilesX * g.CellWidth }

// Height returns the logical height in lamps.
func (g Geometry) Height() int { return g.TilesY * g.CellHeight }

// Tile is the lamp state of one cell, row-major.
type Tile []Color

// Board is a grid of tiles.
type Board struct {
	geom  Geometry
	font  *glyph.Table
	cells []Tile
}

// New returns a blank board. Characters are drawn with font.
func New(g Geometry, font *glyph.Table) *Board {
	if g.TilesX < 0 {
		g.TilesX = 0
	}
	if g.TilesY < 0 {
		g.TilesY = 0
	}
	cells := make([]Tile, g.TilesX*g.TilesY)
	for i := range cells {
		cells[i] = make(Tile, g.CellWidth*g.CellHeight)
	}
	return &Board{geom: g, font: font, cells: cells}
}

// Geometry returns the board size.
func (b *Board) Geometry() Geometry { return b.geom }

// Font returns the table DrawChar resolves symbols through.
func (b *Board) Font() *glyph.Table { return b.font }

// Bounds returns the rectangle covering every tile.
func (b *Board) Bounds() Rect {
	return Rect{C1: 1, R1: 1, C2: b.geom.TilesX, R2: b.geom.TilesY}
}

func (b *Board) cell(col, row int) Tile {
	if col < 1 || row < 1 || col > b.geom.TilesX || row > b.geom.TilesY {
		return nil
	}
	return b.cells[(row-1)*b.geom.TilesX+col-1]
}

// Tile returns a copy of the lamps of one tile, or nil when out of range.
func (b *Board) Tile(col, row int) Tile {
	c := b.cell(col, row)
	if c == nil {
		return nil
	}
	return append(Tile(nil), c...)
}

// DrawChar writes the glyph for symbol into a tile in color c. The pattern
// is centred in the cell; every other lamp of the tile is turned off.
func (b *Board) DrawChar(col, row int, symbol string, c Color) {
	cell := b.cell(col, row)
	if cell == nil {
		return
	}
	p := b.font.Resolve(symbol)
	b.drawPattern(cell, p, c)
}

func (b *Board) drawPattern(cell Tile, p glyph.Pattern, c Color) {
	clear(cell)
	w, h := b.geom.CellWidth, b.geom.CellHeight
	ox := (w - p.Width) / 2
	oy := (h - p.Height()) / 2
	for y := 0; y < p.Height(); y++ {
		cy := oy + y
		if cy < 0 || cy >= h {
			continue
		}
		for x := 0; x < p.Width; x++ {
			cx := ox + x
			if cx < 0 || cx >= w || !p.Lit(x, y) {
				continue
			}
			cell[cy*w+cx] = c
		}
	}
}

// ClearCell turns off every lamp of one tile.
func (b *Board) ClearCell(col, row int) {
	if cell := b.cell(col, row); cell != nil {
		clear(cell)
	}
}

// ClearRect turns off every lamp in r.
func (b *Board) ClearRect(r Rect) {
	r = r.Canon().Intersect(b.Bounds())
	for row := r.R1; row <= r.R2; row++ {
		for col := r.C1; col <= r.C2; col++ {
			clear(b.cell(col, row))
		}
	}
}

// Clear blanks the whole board.
func (b *Board) Clear() {
	for _, c := range b.cells {
		clear(c)
	}
}

// SnapshotRect captures the displayed colors of every tile in r. Tiles of r
// outside the board are captured as nil.
func (b *Board) SnapshotRect(r Rect) Grid {
	r = r.Canon()
	g := Grid{Cols: r.Cols(), Rows: r.Rows(), tiles: make([]Tile, r.Cols()*r.Rows())}
	for j := 0; j < g.Rows; j++ {
		for i := 0; i < g.Cols; i++ {
			g.tiles[j*g.Cols+i] = b.Tile(r.C1+i, r.R1+j)
		}
	}
	return g
}

// WriteTile replaces the lamps of one tile. A nil tile is ignored; a tile of
// the wrong size is copied as far as it goes.
func (b *Board) WriteTile(col, row int, lamps Tile) {
	cell := b.cell(col, row)
	if cell == nil || lamps == nil {
		return
	}
	n := copy(cell, lamps)
	clear(cell[n:])
}

// DrawBitmap paints a logical-sized bitmap over the whole board: lit lamps
// in color c, the rest off. Lamps outside the board are dropped.
func (b *Board) DrawBitmap(bm *bitmap.Bitmap, c Color) {
	w, h := b.geom.CellWidth, b.geom.CellHeight
	for row := 1; row <= b.geom.TilesY; row++ {
		for col := 1; col <= b.geom.TilesX; col++ {
			cell := b.cell(col, row)
			x0, y0 := (col-1)*w, (row-1)*h
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					if bm.Get(x0+x, y0+y) {
						cell[y*w+x] = c
					} else {
						cell[y*w+x] = Off
					}
				}
			}
		}
	}
}

// Lamp returns the color of the lamp at logical pixel (x, y), 0-based.
func (b *Board) Lamp(x, y int) Color {
	w, h := b.geom.CellWidth, b.geom.CellHeight
	if x < 0 || y < 0 || w == 0 || h == 0 {
		return Off
	}
	cell := b.cell(x/w+1, y/h+1)
	if cell == nil {
		return Off
	}
	return cell[(y%h)*w+x%w]
}

// Logical returns the lit state of every lamp, gaps excluded.
func (b *Board) Logical() *bitmap.Bitmap {
	out := bitmap.New(b.geom.Width(), b.geom.Height())
	for y := 0; y < out.Height(); y++ {
		for x := 0; x < out.Width(); x++ {
			if b.Lamp(x, y).Lit() {
				out.Set(x, y, true)
			}
		}
	}
	return out
}

// Physical returns the lit state laid out on the physical grid of m.
func (b *Board) Physical(m Mechanics) *bitmap.Bitmap {
	return m.Expand(b.Logical(), b.geom)
}
