// Package spatial holds the broad-phase and ranking structures the
// simulation uses: a uniform grid for proximity queries and a skip list
// for ordered scores.
package spatial

import (
	"math"
)

// SpatialGrid buckets entity indices into fixed-size square cells.
// Cells are stored row-major (cells[row*cols+col]) and keep their capacity
// across Clear so a per-tick rebuild does not allocate.
//
// The cell size should be at least the largest query radius.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       [][]uint32
	scratch     []uint32
}

// NewSpatialGrid creates a grid covering width x height. maxEntities sizes
// the initial per-cell capacity.
func NewSpatialGrid(width, height, cellSize float64, maxEntities int) *SpatialGrid {
	cols := max(1, int(math.Ceil(width/cellSize)))
	rows := max(1, int(math.Ceil(height/cellSize)))

	cells := make([][]uint32, cols*rows)
	perCell := max(4, maxEntities/len(cells))
	for i := range cells {
		cells[i] = make([]uint32, 0, perCell)
	}

	return &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Clear empties every cell.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds entity id at (x, y). Points outside the grid are clamped
// into the border cells.
func (g *SpatialGrid) Insert(id uint32, x, y float64) {
	col, row := g.cellOf(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], id)
}

func (g *SpatialGrid) cellOf(x, y float64) (int, int) {
	col := min(max(int(x*g.invCellSize), 0), g.cols-1)
	row := min(max(int(y*g.invCellSize), 0), g.rows-1)
	return col, row
}

// QueryRadius returns every id in the cells overlapping the square around
// (cx, cy) with half-size radius. Candidates may lie outside the radius, so
// callers do their own distance check.
//
// The returned slice is reused by the next call.
func (g *SpatialGrid) QueryRadius(cx, cy, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol, minRow := g.cellOf(cx-radius, cy-radius)
	maxCol, maxRow := g.cellOf(cx+radius, cy+radius)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[row*g.cols+col]...)
		}
	}
	return g.scratch
}

// Len returns the number of inserted entities.
func (g *SpatialGrid) Len() int {
	n := 0
	for _, c := range g.cells {
		n += len(c)
	}
	return n
}

// Dimensions returns the grid dimensions.
func (g *SpatialGrid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}
