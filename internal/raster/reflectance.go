package raster

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Calibration holds the sensor constants for converting raw digital
// numbers to percent reflectance.
type Calibration struct {
	ValidMin float64
	ValidMax float64
	Scale    float64
	Offset   float64
}

// Reflectance converts a raw digital number to percent reflectance.
// Values outside the closed interval [ValidMin, ValidMax] become NaN;
// ValidMin and ValidMax themselves are valid.
func (c Calibration) Reflectance(raw float64) float64 {
	if math.IsNaN(raw) || raw < c.ValidMin || raw > c.ValidMax {
		return math.NaN()
	}
	return (raw*c.Scale + c.Offset) * 100
}

// ToReflectance converts every band of the stack from raw digital
// numbers to percent reflectance in place. The same calibration applies
// to all bands; no-data pixels propagate unchanged. This must run before
// training-data extraction and before prediction.
func ToReflectance(s *Stack, c Calibration) error {
	if c.ValidMax < c.ValidMin {
		return eris.Errorf("raster: invalid calibration range [%g, %g]", c.ValidMin, c.ValidMax)
	}
	reclassified := 0
	for _, b := range s.Bands {
		for i, v := range b.Grid.Data {
			if math.IsNaN(v) {
				continue
			}
			out := c.Reflectance(v)
			if math.IsNaN(out) {
				reclassified++
			}
			b.Grid.Data[i] = out
		}
	}
	zap.L().Debug("raster: converted to reflectance",
		zap.Int("bands", len(s.Bands)),
		zap.Int("reclassified", reclassified),
	)
	return nil
}
