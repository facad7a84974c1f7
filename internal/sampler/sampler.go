// Package sampler extracts supervised training records from a
// reflectance stack: it samples band values at every training feature's
// location, joins them with the feature's land-cover label, and encodes
// the label set into the explicit legend carried through to prediction
// and rendering.
package sampler

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/terralab/landcover-cli/internal/cart"
	"github.com/terralab/landcover-cli/internal/model"
	"github.com/terralab/landcover-cli/internal/raster"
	"github.com/terralab/landcover-cli/internal/vector"
)

// Extraction is the supervised-learning dataset plus the legend derived
// from its labels.
type Extraction struct {
	Records []model.TrainingRecord
	Legend  *model.Legend
	Dropped int // records discarded for a no-data band value
}

// Extract samples the stack at each training feature. Point features
// yield one record; polygon features yield one record per covered pixel
// center, each tagged with the source feature's id. Records with any
// no-data band value are dropped, matching the trainer's omit policy.
// Features must already be in the stack's CRS.
func Extract(s *raster.Stack, features []vector.Feature, palette map[string]string) (*Extraction, error) {
	if len(features) == 0 {
		return nil, eris.New("sampler: no training features")
	}

	ref := s.Ref()
	nBands := len(s.Bands)
	ex := &Extraction{}
	var labels []string
	buf := make([]float64, nBands)

	appendRecord := func(f vector.Feature, col, row int) {
		if !s.Read(col, row, buf) {
			ex.Dropped++
			return
		}
		values := make([]float64, nBands)
		copy(values, buf)
		ex.Records = append(ex.Records, model.TrainingRecord{
			FeatureID: f.ID,
			Label:     f.Label,
			Values:    values,
		})
	}

	for _, f := range features {
		labels = append(labels, f.Label)
		switch g := f.Geom.(type) {
		case *geom.Point:
			col, row, ok := ref.CellAt(g.X(), g.Y())
			if !ok {
				ex.Dropped++
				continue
			}
			appendRecord(f, col, row)
		case *geom.Polygon, *geom.MultiPolygon:
			for _, cell := range coveredCells(ref, f.Geom) {
				appendRecord(f, cell[0], cell[1])
			}
		default:
			return nil, eris.Errorf("sampler: feature %s has unsupported geometry %T", f.ID, f.Geom)
		}
	}

	if len(ex.Records) == 0 {
		return nil, eris.New("sampler: no training records with valid band values")
	}

	legend, err := model.NewLegend(labels, palette)
	if err != nil {
		return nil, err
	}
	ex.Legend = legend

	zap.L().Info("sampler: extracted training records",
		zap.Int("features", len(features)),
		zap.Int("records", len(ex.Records)),
		zap.Int("dropped", ex.Dropped),
		zap.Strings("classes", legend.Labels()),
	)
	return ex, nil
}

// Samples converts the extraction into CART samples using the legend's
// class codes.
func (ex *Extraction) Samples() []cart.Sample {
	out := make([]cart.Sample, 0, len(ex.Records))
	for _, r := range ex.Records {
		out = append(out, cart.Sample{Values: r.Values, Class: ex.Legend.CodeFor(r.Label)})
	}
	return out
}

// coveredCells lists the [col, row] cells whose centers fall inside the
// polygon, scanning only the polygon's bounding window.
func coveredCells(ref *raster.Grid, g geom.T) [][2]int {
	minX, minY, maxX, maxY := vector.Bounds(g)

	col0 := int(math.Floor((minX - ref.OriginX) / ref.PixelW))
	col1 := int(math.Ceil((maxX-ref.OriginX)/ref.PixelW)) - 1
	row0 := int(math.Floor((ref.OriginY - maxY) / ref.PixelH))
	row1 := int(math.Ceil((ref.OriginY-minY)/ref.PixelH)) - 1

	var cells [][2]int
	for row := max(row0, 0); row <= min(row1, ref.Height-1); row++ {
		for col := max(col0, 0); col <= min(col1, ref.Width-1); col++ {
			x, y := ref.CellCenter(col, row)
			if vector.CoversPoint(g, x, y) {
				cells = append(cells, [2]int{col, row})
			}
		}
	}
	return cells
}
