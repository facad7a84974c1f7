package raster

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/terralab/landcover-cli/internal/vector"
)

// Clip crops the stack to the boundary's bounding box and masks out every
// pixel whose center falls outside the boundary polygon. The boundary
// must already be in the stack's CRS. Cropping before masking only
// reduces the number of point-in-polygon tests; the result is the same
// as masking the full extent.
//
// An empty intersection between the stack and the boundary is an error,
// not a silently empty raster.
func Clip(s *Stack, boundary *geom.MultiPolygon) (*Stack, error) {
	ref := s.Ref()

	bMinX, bMinY, bMaxX, bMaxY := vector.Bounds(boundary)
	gMinX, gMinY, gMaxX, gMaxY := ref.Extent()
	if bMinX >= gMaxX || bMaxX <= gMinX || bMinY >= gMaxY || bMaxY <= gMinY {
		return nil, eris.New("raster: boundary does not overlap the raster extent")
	}

	// Pixel window of the boundary's bounding box, clamped to the grid.
	col0 := clamp(int(math.Floor((bMinX-ref.OriginX)/ref.PixelW)), 0, ref.Width-1)
	col1 := clamp(int(math.Ceil((bMaxX-ref.OriginX)/ref.PixelW))-1, 0, ref.Width-1)
	row0 := clamp(int(math.Floor((ref.OriginY-bMaxY)/ref.PixelH)), 0, ref.Height-1)
	row1 := clamp(int(math.Ceil((ref.OriginY-bMinY)/ref.PixelH))-1, 0, ref.Height-1)
	if col1 < col0 || row1 < row0 {
		return nil, eris.New("raster: boundary does not overlap the raster extent")
	}

	width := col1 - col0 + 1
	height := row1 - row0 + 1
	originX := ref.OriginX + float64(col0)*ref.PixelW
	originY := ref.OriginY - float64(row0)*ref.PixelH

	// Mask once on the reference grid geometry, apply to every band.
	inside := make([]bool, width*height)
	masked := 0
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			x := originX + (float64(col)+0.5)*ref.PixelW
			y := originY - (float64(row)+0.5)*ref.PixelH
			if vector.CoversPoint(boundary, x, y) {
				inside[row*width+col] = true
			} else {
				masked++
			}
		}
	}
	if masked == width*height {
		return nil, eris.New("raster: boundary masks out every pixel")
	}

	names := s.Names()
	grids := make([]*Grid, 0, len(s.Bands))
	for _, b := range s.Bands {
		g, err := NewGrid(width, height, originX, originY, ref.PixelW, ref.PixelH, ref.Proj)
		if err != nil {
			return nil, err
		}
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				if inside[row*width+col] {
					g.Set(col, row, b.Grid.At(col0+col, row0+row))
				}
			}
		}
		grids = append(grids, g)
	}

	zap.L().Debug("raster: clipped stack",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("masked", masked),
	)
	return NewStack(names, grids)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
