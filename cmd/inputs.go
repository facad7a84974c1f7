package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/terralab/landcover-cli/internal/cart"
	"github.com/terralab/landcover-cli/internal/model"
	"github.com/terralab/landcover-cli/internal/pipeline"
	"github.com/terralab/landcover-cli/internal/predict"
	"github.com/terralab/landcover-cli/internal/raster"
	"github.com/terralab/landcover-cli/internal/store"
	"github.com/terralab/landcover-cli/internal/vector"
)

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store)
}

// loadScene reads the configured band files into an aligned stack.
func loadScene() (*raster.Stack, error) {
	if len(cfg.Scene.Bands) == 0 {
		return nil, eris.New("no scene bands configured")
	}
	paths := make(map[string]string, len(cfg.Scene.Bands))
	for name, p := range cfg.Scene.Bands {
		paths[name] = cfg.ResolvePath(p)
	}
	return raster.LoadStack(model.BandOrder, paths)
}

// loadBoundary reads the study-area shapefile and reprojects it into the
// stack's CRS.
func loadBoundary(s *raster.Stack) (*geom.MultiPolygon, error) {
	path := cfg.ResolvePath(cfg.Boundary)
	if path == "" {
		return nil, eris.New("no boundary shapefile configured")
	}
	mp, wkt, err := vector.LoadBoundary(path)
	if err != nil {
		return nil, err
	}
	if err := vector.Reproject([]geom.T{mp}, wkt, s.Ref().Proj); err != nil {
		return nil, err
	}
	return mp, nil
}

// loadTraining reads labeled training features from whichever source is
// configured. Shapefile features are reprojected into the stack's CRS;
// spreadsheet coordinates are taken as already being in it.
func loadTraining(s *raster.Stack) ([]vector.Feature, error) {
	switch {
	case cfg.Training.Shapefile != "":
		features, wkt, err := vector.LoadTrainingShapefile(
			cfg.ResolvePath(cfg.Training.Shapefile),
			cfg.Training.IDField,
			cfg.Training.TypeField,
		)
		if err != nil {
			return nil, err
		}
		if err := vector.ReprojectFeatures(features, wkt, s.Ref().Proj); err != nil {
			return nil, err
		}
		return features, nil
	case cfg.Training.XLSX != "":
		return vector.LoadTrainingXLSX(cfg.ResolvePath(cfg.Training.XLSX))
	default:
		return nil, eris.New("no training source configured (set training.shapefile or training.xlsx)")
	}
}

// newPipeline assembles a pipeline from the loaded configuration.
func newPipeline(st store.Store) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Store: st,
		Calibration: raster.Calibration{
			ValidMin: cfg.Calibration.ValidMin,
			ValidMax: cfg.Calibration.ValidMax,
			Scale:    cfg.Calibration.Scale,
			Offset:   cfg.Calibration.Offset,
		},
		TrainOpts: cart.Options{
			MaxDepth:            cfg.Trainer.MaxDepth,
			MinSamplesSplit:     cfg.Trainer.MinSamplesSplit,
			MinSamplesLeaf:      cfg.Trainer.MinSamplesLeaf,
			MinImpurityDecrease: cfg.Trainer.MinImpurityDecrease,
		},
		PredictOpts: predict.Options{
			Workers:  cfg.Predictor.Workers,
			Progress: cfg.Predictor.Progress,
		},
	}
}

// sceneName returns the configured scene name, defaulting when unset.
func sceneName() string {
	if cfg.Scene.Name != "" {
		return cfg.Scene.Name
	}
	zap.L().Warn("scene.name not set, using default")
	return "scene"
}
