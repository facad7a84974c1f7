package vector

import (
	"fmt"
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// LoadBoundary reads the study-area polygon from a shapefile. All polygon
// records are merged into a single MultiPolygon. The returned string is
// the CRS WKT from the .prj sidecar.
func LoadBoundary(path string) (*geom.MultiPolygon, string, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, "", eris.Wrapf(err, "vector: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	mp := geom.NewMultiPolygon(geom.XY)
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}
		appendPolygonParts(mp, poly)
	}
	if mp.NumPolygons() == 0 {
		return nil, "", eris.Errorf("vector: no polygon records in %s", path)
	}

	proj, err := readPrj(path)
	if err != nil {
		return nil, "", err
	}
	return mp, proj, nil
}

// LoadTrainingShapefile reads labeled training features from a shapefile.
// Each record must carry the id and type attributes; records with an
// empty type are skipped. Point and polygon geometries are supported.
func LoadTrainingShapefile(path, idField, typeField string) ([]Feature, string, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, "", eris.Wrapf(err, "vector: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}
	idIdx, hasID := fieldIdx[strings.ToLower(idField)]
	typeIdx, hasType := fieldIdx[strings.ToLower(typeField)]
	if !hasType {
		return nil, "", eris.Errorf("vector: shapefile %s has no %q attribute", path, typeField)
	}

	var features []Feature
	var skipped int
	n := 0
	for reader.Next() {
		_, shape := reader.Shape()
		n++

		var g geom.T
		switch s := shape.(type) {
		case *shp.Point:
			g = geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})
		case *shp.Polygon:
			mp := geom.NewMultiPolygon(geom.XY)
			appendPolygonParts(mp, s)
			if mp.NumPolygons() > 0 {
				g = mp
			}
		}
		if g == nil {
			skipped++
			continue
		}

		label := strings.TrimSpace(strings.TrimRight(reader.Attribute(typeIdx), "\x00"))
		if label == "" {
			skipped++
			continue
		}
		id := fmt.Sprintf("%d", n)
		if hasID {
			if v := strings.TrimSpace(strings.TrimRight(reader.Attribute(idIdx), "\x00")); v != "" {
				id = v
			}
		}

		features = append(features, Feature{ID: id, Label: label, Geom: g})
	}
	if skipped > 0 {
		zap.L().Debug("vector: skipped training records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	if len(features) == 0 {
		return nil, "", eris.Errorf("vector: no usable training features in %s", path)
	}

	proj, err := readPrj(path)
	if err != nil {
		return nil, "", err
	}
	return features, proj, nil
}

// appendPolygonParts converts a shapefile polygon's parts into polygons
// on the MultiPolygon. Malformed parts are skipped.
func appendPolygonParts(mp *geom.MultiPolygon, p *shp.Polygon) {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return
	}
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("vector: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("vector: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}
}

// readPrj reads the CRS WKT from the shapefile's .prj sidecar.
func readPrj(shpPath string) (string, error) {
	prjPath := strings.TrimSuffix(shpPath, ".shp") + ".prj"
	data, err := os.ReadFile(prjPath)
	if err != nil {
		return "", eris.Wrapf(err, "vector: read %s", prjPath)
	}
	wkt := strings.TrimSpace(string(data))
	if wkt == "" {
		return "", eris.Errorf("vector: empty projection file %s", prjPath)
	}
	return wkt, nil
}
