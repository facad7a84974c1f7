package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProj = `PROJCS["test"]`

// fillGrid builds a w x h grid with 10m pixels, top-left at (0, h*10),
// every pixel set to v.
func fillGrid(t *testing.T, w, h int, v float64) *Grid {
	t.Helper()
	g, err := NewGrid(w, h, 0, float64(h)*10, 10, 10, testProj)
	require.NoError(t, err)
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

func TestNewGrid_StartsAsNoData(t *testing.T) {
	g, err := NewGrid(3, 2, 0, 20, 10, 10, testProj)
	require.NoError(t, err)
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			assert.True(t, IsNoData(g.At(col, row)))
		}
	}
}

func TestNewGrid_Invalid(t *testing.T) {
	_, err := NewGrid(0, 2, 0, 20, 10, 10, testProj)
	assert.Error(t, err)
	_, err = NewGrid(3, 2, 0, 20, -10, 10, testProj)
	assert.Error(t, err)
}

func TestGrid_CellCenterAndCellAt(t *testing.T) {
	g := fillGrid(t, 4, 4, 0)

	x, y := g.CellCenter(0, 0)
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 35.0, y)

	col, row, ok := g.CellAt(5, 35)
	require.True(t, ok)
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)

	// Bottom-right pixel.
	col, row, ok = g.CellAt(39.9, 0.1)
	require.True(t, ok)
	assert.Equal(t, 3, col)
	assert.Equal(t, 3, row)

	_, _, ok = g.CellAt(-1, 20)
	assert.False(t, ok)
	_, _, ok = g.CellAt(20, 41)
	assert.False(t, ok)
}

func TestGrid_Extent(t *testing.T) {
	g := fillGrid(t, 4, 2, 0)
	minX, minY, maxX, maxY := g.Extent()
	assert.Equal(t, 0.0, minX)
	assert.Equal(t, 0.0, minY)
	assert.Equal(t, 40.0, maxX)
	assert.Equal(t, 20.0, maxY)
}

func TestGrid_Aligned(t *testing.T) {
	a := fillGrid(t, 4, 4, 0)
	b := fillGrid(t, 4, 4, 1)
	assert.True(t, a.Aligned(b))

	c := fillGrid(t, 4, 3, 0)
	assert.False(t, a.Aligned(c))

	d := fillGrid(t, 4, 4, 0)
	d.OriginX = 5
	assert.False(t, a.Aligned(d))
}

func TestNewStack_Validation(t *testing.T) {
	a := fillGrid(t, 4, 4, 1)
	b := fillGrid(t, 4, 4, 2)
	misaligned := fillGrid(t, 3, 4, 3)

	tests := []struct {
		name    string
		names   []string
		grids   []*Grid
		wantErr string
	}{
		{name: "valid", names: []string{"red", "nir"}, grids: []*Grid{a, b}},
		{name: "empty", names: nil, grids: nil, wantErr: "at least one band"},
		{name: "count mismatch", names: []string{"red"}, grids: []*Grid{a, b}, wantErr: "band names"},
		{name: "duplicate name", names: []string{"red", "red"}, grids: []*Grid{a, b}, wantErr: "duplicate"},
		{name: "empty name", names: []string{"red", ""}, grids: []*Grid{a, b}, wantErr: "empty name"},
		{name: "misaligned", names: []string{"red", "nir"}, grids: []*Grid{a, misaligned}, wantErr: "not aligned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStack(tt.names, tt.grids)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.names, s.Names())
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestStack_Read(t *testing.T) {
	a := fillGrid(t, 2, 2, 1)
	b := fillGrid(t, 2, 2, 2)
	b.Set(1, 0, math.NaN())

	s, err := NewStack([]string{"red", "nir"}, []*Grid{a, b})
	require.NoError(t, err)

	buf := make([]float64, 2)
	assert.True(t, s.Read(0, 0, buf))
	assert.Equal(t, []float64{1, 2}, buf)

	// One NaN band makes the pixel invalid, but the buffer still fills.
	assert.False(t, s.Read(1, 0, buf))
	assert.Equal(t, 1.0, buf[0])
	assert.True(t, math.IsNaN(buf[1]))

	assert.Equal(t, 3, s.ValidCount())
}

func TestClassGrid(t *testing.T) {
	ref := fillGrid(t, 3, 2, 0)
	cg := NewClassGridLike(ref)

	assert.Equal(t, ref.Width, cg.Width)
	assert.Equal(t, ref.Height, cg.Height)
	assert.Equal(t, 100.0, cg.PixelArea())

	cg.Set(0, 0, 1)
	cg.Set(1, 0, 1)
	cg.Set(2, 1, 3)

	counts := cg.Counts()
	assert.Equal(t, map[uint8]int64{1: 2, 3: 1}, counts)
	assert.Equal(t, uint8(0), cg.At(0, 1))
}
