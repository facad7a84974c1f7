// Package raster provides the in-memory raster model for the
// classification pipeline: single-band grids, aligned multi-band stacks,
// study-area clipping and reflectance conversion. No-data pixels are
// represented as NaN.
package raster

import (
	"math"

	"github.com/rotisserie/eris"
)

// Grid is a single north-up raster band. Data is row-major from the
// top-left corner; NaN marks no-data.
type Grid struct {
	Width   int
	Height  int
	OriginX float64 // x of the top-left corner
	OriginY float64 // y of the top-left corner
	PixelW  float64 // pixel width, > 0
	PixelH  float64 // pixel height, > 0; rows advance south
	Proj    string  // CRS as WKT
	Data    []float64
}

// NewGrid allocates a grid with all pixels set to no-data.
func NewGrid(width, height int, originX, originY, pixelW, pixelH float64, proj string) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("raster: invalid grid size %dx%d", width, height)
	}
	if pixelW <= 0 || pixelH <= 0 {
		return nil, eris.Errorf("raster: invalid pixel size %gx%g", pixelW, pixelH)
	}
	g := &Grid{
		Width:   width,
		Height:  height,
		OriginX: originX,
		OriginY: originY,
		PixelW:  pixelW,
		PixelH:  pixelH,
		Proj:    proj,
		Data:    make([]float64, width*height),
	}
	for i := range g.Data {
		g.Data[i] = math.NaN()
	}
	return g, nil
}

// At returns the value at the given column and row.
func (g *Grid) At(col, row int) float64 {
	return g.Data[row*g.Width+col]
}

// Set writes the value at the given column and row.
func (g *Grid) Set(col, row int, v float64) {
	g.Data[row*g.Width+col] = v
}

// CellCenter returns the map coordinates of a pixel center.
func (g *Grid) CellCenter(col, row int) (x, y float64) {
	x = g.OriginX + (float64(col)+0.5)*g.PixelW
	y = g.OriginY - (float64(row)+0.5)*g.PixelH
	return x, y
}

// CellAt returns the column and row containing the map coordinate, and
// whether it falls inside the grid.
func (g *Grid) CellAt(x, y float64) (col, row int, ok bool) {
	col = int(math.Floor((x - g.OriginX) / g.PixelW))
	row = int(math.Floor((g.OriginY - y) / g.PixelH))
	if col < 0 || col >= g.Width || row < 0 || row >= g.Height {
		return 0, 0, false
	}
	return col, row, true
}

// Extent returns the grid's bounding box as minX, minY, maxX, maxY.
func (g *Grid) Extent() (minX, minY, maxX, maxY float64) {
	minX = g.OriginX
	maxX = g.OriginX + float64(g.Width)*g.PixelW
	maxY = g.OriginY
	minY = g.OriginY - float64(g.Height)*g.PixelH
	return minX, minY, maxX, maxY
}

// IsNoData reports whether a value is the no-data marker.
func IsNoData(v float64) bool {
	return math.IsNaN(v)
}

// alignTol is the tolerance for comparing origins and pixel sizes.
const alignTol = 1e-9

// Aligned reports whether two grids share extent, resolution and CRS.
func (g *Grid) Aligned(o *Grid) bool {
	return g.Width == o.Width &&
		g.Height == o.Height &&
		math.Abs(g.OriginX-o.OriginX) <= alignTol &&
		math.Abs(g.OriginY-o.OriginY) <= alignTol &&
		math.Abs(g.PixelW-o.PixelW) <= alignTol &&
		math.Abs(g.PixelH-o.PixelH) <= alignTol &&
		g.Proj == o.Proj
}
