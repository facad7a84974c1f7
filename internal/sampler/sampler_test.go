package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/terralab/landcover-cli/internal/raster"
	"github.com/terralab/landcover-cli/internal/vector"
)

var palette = map[string]string{
	"forest": "#228b22",
	"water":  "#1e90ff",
}

// twoBandStack builds a 4x4 stack with 10m pixels, top-left at (0, 40),
// red all 10 and nir all 40.
func twoBandStack(t *testing.T) *raster.Stack {
	t.Helper()
	grids := make([]*raster.Grid, 2)
	for i, v := range []float64{10, 40} {
		g, err := raster.NewGrid(4, 4, 0, 40, 10, 10, "PROJCS")
		require.NoError(t, err)
		for j := range g.Data {
			g.Data[j] = v
		}
		grids[i] = g
	}
	s, err := raster.NewStack([]string{"red", "nir"}, grids)
	require.NoError(t, err)
	return s
}

func point(x, y float64) geom.T {
	return geom.NewPointFlat(geom.XY, []float64{x, y})
}

func polygon(t *testing.T, coords ...geom.Coord) geom.T {
	t.Helper()
	ring := append([]geom.Coord{}, coords...)
	ring = append(ring, coords[0])
	p := geom.NewPolygon(geom.XY)
	require.NoError(t, p.SetCoords([][]geom.Coord{ring}))
	return p
}

func TestExtract_PointFeatures(t *testing.T) {
	s := twoBandStack(t)
	features := []vector.Feature{
		{ID: "p1", Label: "forest", Geom: point(5, 35)},
		{ID: "p2", Label: "water", Geom: point(25, 15)},
	}

	ex, err := Extract(s, features, palette)
	require.NoError(t, err)
	require.Len(t, ex.Records, 2)
	assert.Equal(t, 0, ex.Dropped)

	assert.Equal(t, "p1", ex.Records[0].FeatureID)
	assert.Equal(t, "forest", ex.Records[0].Label)
	assert.Equal(t, []float64{10, 40}, ex.Records[0].Values)
}

func TestExtract_PolygonYieldsOneRecordPerCoveredPixel(t *testing.T) {
	s := twoBandStack(t)
	// Covers the central 2x2 pixel block.
	features := []vector.Feature{
		{ID: "poly1", Label: "forest", Geom: polygon(t,
			geom.Coord{10, 10}, geom.Coord{30, 10}, geom.Coord{30, 30}, geom.Coord{10, 30})},
	}

	ex, err := Extract(s, features, palette)
	require.NoError(t, err)
	require.Len(t, ex.Records, 4)
	for _, r := range ex.Records {
		assert.Equal(t, "poly1", r.FeatureID)
		assert.Equal(t, "forest", r.Label)
	}
}

func TestExtract_DropsNoDataRecords(t *testing.T) {
	s := twoBandStack(t)
	// One no-data pixel in one band is enough to drop the record.
	s.Band("nir").Set(1, 1, math.NaN())

	features := []vector.Feature{
		{ID: "poly1", Label: "forest", Geom: polygon(t,
			geom.Coord{10, 10}, geom.Coord{30, 10}, geom.Coord{30, 30}, geom.Coord{10, 30})},
	}

	ex, err := Extract(s, features, palette)
	require.NoError(t, err)
	assert.Len(t, ex.Records, 3)
	assert.Equal(t, 1, ex.Dropped)
}

func TestExtract_PointOutsideGridIsDropped(t *testing.T) {
	s := twoBandStack(t)
	features := []vector.Feature{
		{ID: "in", Label: "forest", Geom: point(5, 35)},
		{ID: "out", Label: "water", Geom: point(500, 500)},
	}

	_, err := Extract(s, features, palette)
	// The out-of-grid point drops, but "water" still reaches the legend
	// and the palette, so extraction carries on.
	require.NoError(t, err)
}

func TestExtract_UnsupportedGeometry(t *testing.T) {
	s := twoBandStack(t)
	ls := geom.NewLineStringFlat(geom.XY, []float64{0, 0, 10, 10})
	features := []vector.Feature{{ID: "l1", Label: "forest", Geom: ls}}

	_, err := Extract(s, features, palette)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported geometry")
}

func TestExtract_NoFeatures(t *testing.T) {
	s := twoBandStack(t)
	_, err := Extract(s, nil, palette)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no training features")
}

func TestExtract_AllRecordsDropped(t *testing.T) {
	s := twoBandStack(t)
	for _, b := range s.Bands {
		for i := range b.Grid.Data {
			b.Grid.Data[i] = math.NaN()
		}
	}
	features := []vector.Feature{{ID: "p1", Label: "forest", Geom: point(5, 35)}}

	_, err := Extract(s, features, palette)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no training records")
}

func TestSamples_UsesLegendCodes(t *testing.T) {
	s := twoBandStack(t)
	features := []vector.Feature{
		{ID: "p1", Label: "water", Geom: point(5, 35)},
		{ID: "p2", Label: "forest", Geom: point(25, 15)},
	}

	ex, err := Extract(s, features, palette)
	require.NoError(t, err)

	samples := ex.Samples()
	require.Len(t, samples, 2)
	// forest sorts before water, so forest=1, water=2.
	assert.Equal(t, 2, samples[0].Class)
	assert.Equal(t, 1, samples[1].Class)
	assert.Equal(t, []float64{10, 40}, samples[0].Values)
}
