package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var landsatCal = Calibration{
	ValidMin: 7273,
	ValidMax: 43636,
	Scale:    0.0000275,
	Offset:   -0.2,
}

func TestCalibration_Reflectance(t *testing.T) {
	tests := []struct {
		name string
		raw  float64
		want float64
		nan  bool
	}{
		{name: "mid-range", raw: 20000, want: (20000*0.0000275 - 0.2) * 100},
		{name: "lower bound is valid", raw: 7273, want: (7273*0.0000275 - 0.2) * 100},
		{name: "upper bound is valid", raw: 43636, want: (43636*0.0000275 - 0.2) * 100},
		{name: "below range", raw: 7272, nan: true},
		{name: "above range", raw: 43637, nan: true},
		{name: "zero", raw: 0, nan: true},
		{name: "nan propagates", raw: math.NaN(), nan: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := landsatCal.Reflectance(tt.raw)
			if tt.nan {
				assert.True(t, math.IsNaN(got))
			} else {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestToReflectance(t *testing.T) {
	a := fillGrid(t, 2, 2, 20000)
	a.Set(1, 0, 100)        // below valid range
	a.Set(0, 1, math.NaN()) // already no-data
	s, err := NewStack([]string{"red"}, []*Grid{a})
	require.NoError(t, err)

	require.NoError(t, ToReflectance(s, landsatCal))

	g := s.Band("red")
	assert.InDelta(t, 35.0, g.At(0, 0), 1e-9)
	assert.True(t, IsNoData(g.At(1, 0)))
	assert.True(t, IsNoData(g.At(0, 1)))
	assert.InDelta(t, 35.0, g.At(1, 1), 1e-9)
}

func TestToReflectance_InvalidRange(t *testing.T) {
	a := fillGrid(t, 1, 1, 1)
	s, err := NewStack([]string{"red"}, []*Grid{a})
	require.NoError(t, err)

	err = ToReflectance(s, Calibration{ValidMin: 10, ValidMax: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calibration range")
}
