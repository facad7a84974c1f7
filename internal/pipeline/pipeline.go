// Package pipeline orchestrates the classification stages over loaded
// inputs: clip, convert to reflectance, extract training data, fit the
// tree, and predict the land-cover raster. Each stage is recorded in the
// run ledger when a store is configured.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/terralab/landcover-cli/internal/cart"
	"github.com/terralab/landcover-cli/internal/model"
	"github.com/terralab/landcover-cli/internal/predict"
	"github.com/terralab/landcover-cli/internal/raster"
	"github.com/terralab/landcover-cli/internal/sampler"
	"github.com/terralab/landcover-cli/internal/store"
	"github.com/terralab/landcover-cli/internal/vector"
)

// Inputs are the loaded, CRS-aligned inputs of one run. The boundary and
// training features must already be reprojected into the stack's CRS.
type Inputs struct {
	Stack    *raster.Stack
	Boundary *geom.MultiPolygon
	Features []vector.Feature
	Palette  map[string]string
}

// Pipeline executes classification runs.
type Pipeline struct {
	Store       store.Store // nil disables the run ledger
	Calibration raster.Calibration
	TrainOpts   cart.Options
	PredictOpts predict.Options
}

// Outcome is everything a run produces in memory. Persisting artifacts
// (model file, GeoTIFF, rendered map) is the caller's concern.
type Outcome struct {
	RunID            string
	Stack            *raster.Stack // clipped, reflectance domain
	Tree             *cart.Tree
	Legend           *model.Legend
	Records          int
	Dropped          int
	TrainingAccuracy float64
	Classes          *raster.ClassGrid
	Counts           map[string]int64
	AreaM2           map[string]float64
}

// Run executes the pipeline stages in order. Any stage failure marks
// the run failed in the ledger and halts the run.
func (p *Pipeline) Run(ctx context.Context, scene string, in Inputs) (*Outcome, error) {
	out := &Outcome{}

	if p.Store != nil {
		run, err := p.Store.CreateRun(ctx, scene)
		if err != nil {
			return nil, err
		}
		out.RunID = run.ID
	}
	log := zap.L().With(zap.String("scene", scene), zap.String("run_id", out.RunID))

	fail := func(stage string, err error) (*Outcome, error) {
		if p.Store != nil && out.RunID != "" {
			if serr := p.Store.UpdateRunStatus(ctx, out.RunID, model.RunStatusFailed); serr != nil {
				log.Warn("pipeline: failed to mark run failed", zap.Error(serr))
			}
		}
		return nil, eris.Wrapf(err, "pipeline: %s", stage)
	}

	// Clip to the study area.
	err := p.phase(ctx, out.RunID, model.PhaseClip, func() (string, error) {
		clipped, err := raster.Clip(in.Stack, in.Boundary)
		if err != nil {
			return "", err
		}
		out.Stack = clipped
		ref := clipped.Ref()
		return fmt.Sprintf("%dx%d", ref.Width, ref.Height), nil
	})
	if err != nil {
		return fail(model.PhaseClip, err)
	}

	// Convert digital numbers to reflectance.
	err = p.phase(ctx, out.RunID, model.PhaseConvert, func() (string, error) {
		return "", raster.ToReflectance(out.Stack, p.Calibration)
	})
	if err != nil {
		return fail(model.PhaseConvert, err)
	}

	// Extract training records and the legend.
	var ex *sampler.Extraction
	err = p.phase(ctx, out.RunID, model.PhaseExtract, func() (string, error) {
		var err error
		ex, err = sampler.Extract(out.Stack, in.Features, in.Palette)
		if err != nil {
			return "", err
		}
		out.Legend = ex.Legend
		out.Records = len(ex.Records)
		out.Dropped = ex.Dropped
		return fmt.Sprintf("%d records, %d dropped", out.Records, out.Dropped), nil
	})
	if err != nil {
		return fail(model.PhaseExtract, err)
	}

	// Fit the decision tree.
	err = p.phase(ctx, out.RunID, model.PhaseTrain, func() (string, error) {
		samples := ex.Samples()
		tree, err := cart.Fit(samples, out.Stack.Names(), p.TrainOpts)
		if err != nil {
			return "", err
		}
		out.Tree = tree
		correct := 0
		for _, s := range samples {
			if tree.Predict(s.Values) == s.Class {
				correct++
			}
		}
		out.TrainingAccuracy = float64(correct) / float64(len(samples))
		return fmt.Sprintf("depth %d, %d leaves, accuracy %.3f", tree.Depth(), tree.Leaves(), out.TrainingAccuracy), nil
	})
	if err != nil {
		return fail(model.PhaseTrain, err)
	}

	// Classify every pixel.
	err = p.phase(ctx, out.RunID, model.PhasePredict, func() (string, error) {
		classes, err := predict.Run(ctx, out.Stack, out.Tree, p.PredictOpts)
		if err != nil {
			return "", err
		}
		out.Classes = classes
		out.Counts, out.AreaM2, err = predict.Stats(classes, out.Legend)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d classes", len(out.Counts)), nil
	})
	if err != nil {
		return fail(model.PhasePredict, err)
	}

	log.Info("pipeline: run complete",
		zap.Int("records", out.Records),
		zap.Float64("accuracy", out.TrainingAccuracy),
		zap.Int("classes", len(out.Counts)),
	)
	return out, nil
}

// Finish records the final result of a run in the ledger.
func (p *Pipeline) Finish(ctx context.Context, runID string, result *model.RunResult) error {
	if p.Store == nil || runID == "" {
		return nil
	}
	return p.Store.UpdateRunResult(ctx, runID, result)
}

// phase runs one stage, recording it in the ledger when configured.
func (p *Pipeline) phase(ctx context.Context, runID, name string, fn func() (string, error)) error {
	var phaseID string
	if p.Store != nil && runID != "" {
		ph, err := p.Store.CreatePhase(ctx, runID, name)
		if err != nil {
			return err
		}
		phaseID = ph.ID
	}

	detail, err := fn()

	if phaseID != "" {
		status := store.PhaseStatusComplete
		if err != nil {
			status = store.PhaseStatusFailed
			detail = err.Error()
		}
		if cerr := p.Store.CompletePhase(ctx, phaseID, status, detail); cerr != nil {
			zap.L().Warn("pipeline: failed to record phase", zap.String("phase", name), zap.Error(cerr))
		}
	}
	return err
}
