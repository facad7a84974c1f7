package vector

import (
	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// WKTFromEPSG returns the WKT of an EPSG-coded CRS.
func WKTFromEPSG(epsg int) (string, error) {
	sr, err := godal.NewSpatialRefFromEPSG(epsg)
	if err != nil {
		return "", eris.Wrapf(err, "vector: spatial ref from EPSG:%d", epsg)
	}
	defer sr.Close()
	wkt, err := sr.WKT()
	if err != nil {
		return "", eris.Wrapf(err, "vector: WKT of EPSG:%d", epsg)
	}
	return wkt, nil
}

// Reproject transforms the coordinates of every geometry from the source
// CRS to the destination CRS, in place. It is a no-op when the two CRS
// describe the same system.
func Reproject(geoms []geom.T, srcWKT, dstWKT string) error {
	src, err := godal.NewSpatialRefFromWKT(srcWKT)
	if err != nil {
		return eris.Wrap(err, "vector: parse source CRS")
	}
	defer src.Close()
	dst, err := godal.NewSpatialRefFromWKT(dstWKT)
	if err != nil {
		return eris.Wrap(err, "vector: parse destination CRS")
	}
	defer dst.Close()

	if src.IsSame(dst) {
		zap.L().Debug("vector: source and destination CRS identical, skipping reprojection")
		return nil
	}

	tr, err := godal.NewTransform(src, dst)
	if err != nil {
		return eris.Wrap(err, "vector: create coordinate transform")
	}
	defer tr.Close()

	for _, g := range geoms {
		if err := transformFlat(tr, g); err != nil {
			return err
		}
	}
	return nil
}

// ReprojectFeatures transforms the geometries of training features in place.
func ReprojectFeatures(features []Feature, srcWKT, dstWKT string) error {
	geoms := make([]geom.T, 0, len(features))
	for _, f := range features {
		geoms = append(geoms, f.Geom)
	}
	return Reproject(geoms, srcWKT, dstWKT)
}

// transformFlat applies the coordinate transform to the geometry's flat
// coordinate slice, mutating the geometry.
func transformFlat(tr *godal.Transform, g geom.T) error {
	flat := g.FlatCoords()
	stride := g.Stride()
	n := len(flat) / stride
	if n == 0 {
		return nil
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = flat[i*stride]
		ys[i] = flat[i*stride+1]
	}

	successful := make([]bool, n)
	if err := tr.TransformEx(xs, ys, nil, successful); err != nil {
		return eris.Wrap(err, "vector: transform coordinates")
	}
	for i := 0; i < n; i++ {
		if !successful[i] {
			return eris.Errorf("vector: coordinate %d failed to transform", i)
		}
		flat[i*stride] = xs[i]
		flat[i*stride+1] = ys[i]
	}
	return nil
}
