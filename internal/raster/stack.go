package raster

import (
	"math"

	"github.com/rotisserie/eris"
)

// Band is a named grid inside a stack.
type Band struct {
	Name string
	Grid *Grid
}

// Stack is an ordered collection of equally aligned bands. The band
// order is fixed at construction and is the predictor order used by the
// trainer and the predictor.
type Stack struct {
	Bands []Band
}

// NewStack builds a stack from bands in the given order, validating that
// every grid shares extent, resolution and CRS with the first one.
// Mismatched inputs are rejected here rather than producing silently
// misaligned bands.
func NewStack(names []string, grids []*Grid) (*Stack, error) {
	if len(names) == 0 {
		return nil, eris.New("raster: stack needs at least one band")
	}
	if len(names) != len(grids) {
		return nil, eris.Errorf("raster: %d band names for %d grids", len(names), len(grids))
	}
	seen := make(map[string]bool, len(names))
	ref := grids[0]
	s := &Stack{Bands: make([]Band, 0, len(names))}
	for i, name := range names {
		if name == "" {
			return nil, eris.Errorf("raster: band %d has empty name", i)
		}
		if seen[name] {
			return nil, eris.Errorf("raster: duplicate band name %q", name)
		}
		seen[name] = true
		if grids[i] == nil {
			return nil, eris.Errorf("raster: band %q has nil grid", name)
		}
		if !grids[i].Aligned(ref) {
			return nil, eris.Errorf("raster: band %q is not aligned with band %q", name, names[0])
		}
		s.Bands = append(s.Bands, Band{Name: name, Grid: grids[i]})
	}
	return s, nil
}

// Names returns the band names in stack order.
func (s *Stack) Names() []string {
	out := make([]string, 0, len(s.Bands))
	for _, b := range s.Bands {
		out = append(out, b.Name)
	}
	return out
}

// Band returns the grid for a band name, or nil if absent.
func (s *Stack) Band(name string) *Grid {
	for _, b := range s.Bands {
		if b.Name == name {
			return b.Grid
		}
	}
	return nil
}

// Ref returns the georeferencing grid of the stack (the first band).
func (s *Stack) Ref() *Grid {
	return s.Bands[0].Grid
}

// Read fills buf with the band values of one pixel in stack order and
// reports whether all of them are valid. buf must have len(s.Bands).
func (s *Stack) Read(col, row int, buf []float64) bool {
	valid := true
	for i, b := range s.Bands {
		v := b.Grid.At(col, row)
		buf[i] = v
		if math.IsNaN(v) {
			valid = false
		}
	}
	return valid
}

// ValidCount returns the number of pixels with all bands valid.
func (s *Stack) ValidCount() int {
	ref := s.Ref()
	n := 0
	buf := make([]float64, len(s.Bands))
	for row := 0; row < ref.Height; row++ {
		for col := 0; col < ref.Width; col++ {
			if s.Read(col, row, buf) {
				n++
			}
		}
	}
	return n
}
