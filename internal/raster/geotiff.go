package raster

import (
	"math"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var registerOnce sync.Once

// registerDrivers initializes GDAL drivers once per process.
func registerDrivers() {
	registerOnce.Do(godal.RegisterAll)
}

// LoadStack reads one single-band GeoTIFF per band name, in the given
// order, and assembles them into an aligned stack. paths maps band name
// to file path and must cover every name.
func LoadStack(names []string, paths map[string]string) (*Stack, error) {
	registerDrivers()

	grids := make([]*Grid, 0, len(names))
	for _, name := range names {
		path, ok := paths[name]
		if !ok || path == "" {
			return nil, eris.Errorf("raster: no file configured for band %q", name)
		}
		g, err := readGrid(path)
		if err != nil {
			return nil, eris.Wrapf(err, "raster: band %q", name)
		}
		grids = append(grids, g)
	}

	s, err := NewStack(names, grids)
	if err != nil {
		return nil, err
	}
	ref := s.Ref()
	zap.L().Info("raster: loaded stack",
		zap.Int("bands", len(s.Bands)),
		zap.Int("width", ref.Width),
		zap.Int("height", ref.Height),
	)
	return s, nil
}

// readGrid reads the first band of a GeoTIFF into a Grid, converting the
// file's no-data value to NaN. Rotated rasters are rejected.
func readGrid(path string) (*Grid, error) {
	ds, err := godal.Open(path, godal.RasterOnly())
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer ds.Close()

	st := ds.Structure()
	if st.NBands < 1 {
		return nil, eris.Errorf("%s has no raster bands", path)
	}
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, eris.Wrapf(err, "geotransform of %s", path)
	}
	if gt[2] != 0 || gt[4] != 0 {
		return nil, eris.Errorf("%s is rotated, only north-up rasters are supported", path)
	}
	if gt[5] >= 0 {
		return nil, eris.Errorf("%s has a non-negative row step", path)
	}

	g, err := NewGrid(st.SizeX, st.SizeY, gt[0], gt[3], gt[1], -gt[5], ds.Projection())
	if err != nil {
		return nil, err
	}

	band := ds.Bands()[0]
	if err := band.Read(0, 0, g.Data, st.SizeX, st.SizeY); err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	if nd, ok := band.NoData(); ok {
		for i, v := range g.Data {
			if v == nd {
				g.Data[i] = math.NaN()
			}
		}
	}
	return g, nil
}

// WriteClassGrid persists a classification raster as a single-band Byte
// GeoTIFF with no-data 0, preserving the source georeferencing.
func WriteClassGrid(path string, cg *ClassGrid) error {
	registerDrivers()

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Byte, cg.Width, cg.Height)
	if err != nil {
		return eris.Wrapf(err, "raster: create %s", path)
	}
	defer ds.Close()

	gt := [6]float64{cg.OriginX, cg.PixelW, 0, cg.OriginY, 0, -cg.PixelH}
	if err := ds.SetGeoTransform(gt); err != nil {
		return eris.Wrapf(err, "raster: set geotransform of %s", path)
	}
	if cg.Proj != "" {
		if err := ds.SetProjection(cg.Proj); err != nil {
			return eris.Wrapf(err, "raster: set projection of %s", path)
		}
	}

	band := ds.Bands()[0]
	if err := band.SetNoData(0); err != nil {
		return eris.Wrapf(err, "raster: set nodata of %s", path)
	}
	if err := band.Write(0, 0, cg.Codes, cg.Width, cg.Height); err != nil {
		return eris.Wrapf(err, "raster: write %s", path)
	}

	zap.L().Info("raster: wrote classification", zap.String("path", path))
	return nil
}

// ReadClassGrid loads a classification raster written by WriteClassGrid.
func ReadClassGrid(path string) (*ClassGrid, error) {
	registerDrivers()

	ds, err := godal.Open(path, godal.RasterOnly())
	if err != nil {
		return nil, eris.Wrapf(err, "raster: open %s", path)
	}
	defer ds.Close()

	st := ds.Structure()
	if st.NBands < 1 {
		return nil, eris.Errorf("raster: %s has no bands", path)
	}
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, eris.Wrapf(err, "raster: geotransform of %s", path)
	}

	cg := &ClassGrid{
		Width:   st.SizeX,
		Height:  st.SizeY,
		OriginX: gt[0],
		OriginY: gt[3],
		PixelW:  gt[1],
		PixelH:  -gt[5],
		Proj:    ds.Projection(),
		Codes:   make([]uint8, st.SizeX*st.SizeY),
	}
	if err := ds.Bands()[0].Read(0, 0, cg.Codes, st.SizeX, st.SizeY); err != nil {
		return nil, eris.Wrapf(err, "raster: read %s", path)
	}
	return cg, nil
}
