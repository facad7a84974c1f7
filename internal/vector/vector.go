// Package vector loads study-area boundaries and labeled training
// features from shapefiles or spreadsheets, and reprojects them into the
// raster's coordinate reference system.
package vector

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Feature is a training feature: a point or polygon geometry tagged with
// a land-cover label and a unique id.
type Feature struct {
	ID    string
	Label string
	Geom  geom.T
}

// CoversPoint reports whether the geometry covers the given map
// coordinate. Supported geometries are Polygon and MultiPolygon; holes
// are respected. Any other geometry type returns false.
func CoversPoint(g geom.T, x, y float64) bool {
	p := geom.Coord{x, y}
	switch t := g.(type) {
	case *geom.Polygon:
		return polygonCovers(t, p)
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			if polygonCovers(t.Polygon(i), p) {
				return true
			}
		}
	}
	return false
}

func polygonCovers(poly *geom.Polygon, p geom.Coord) bool {
	if poly.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(poly.Layout(), p, poly.LinearRing(0).FlatCoords()) {
		return false
	}
	// A point inside a hole is outside the polygon.
	for i := 1; i < poly.NumLinearRings(); i++ {
		if xy.IsPointInRing(poly.Layout(), p, poly.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// Bounds returns the bounding box of a geometry as minX, minY, maxX, maxY.
func Bounds(g geom.T) (minX, minY, maxX, maxY float64) {
	b := g.Bounds()
	return b.Min(0), b.Min(1), b.Max(0), b.Max(1)
}
