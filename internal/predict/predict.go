// Package predict applies a fitted decision tree to every pixel of a
// reflectance stack, producing the categorical classification raster.
// Pixels are independent, so rows are evaluated in parallel blocks.
package predict

import (
	"context"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/terralab/landcover-cli/internal/cart"
	"github.com/terralab/landcover-cli/internal/model"
	"github.com/terralab/landcover-cli/internal/raster"
)

// Options configures prediction.
type Options struct {
	Workers  int  // 0 means GOMAXPROCS
	Progress bool // render a progress bar on stderr
}

// Run evaluates the tree for every pixel with fully valid bands and
// returns the class-code raster. Pixels with any no-data band are
// no-data (code 0) in the output.
//
// The stack's band names must exactly match the tree's predictors, in
// order; a mismatch would silently bind thresholds to the wrong bands,
// so it is rejected here.
func Run(ctx context.Context, s *raster.Stack, tree *cart.Tree, opts Options) (*raster.ClassGrid, error) {
	if err := validateBands(s.Names(), tree.Predictors); err != nil {
		return nil, err
	}

	ref := s.Ref()
	out := raster.NewClassGridLike(ref)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > ref.Height {
		workers = ref.Height
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.Default(int64(ref.Height), "predicting")
	}

	g, ctx := errgroup.WithContext(ctx)
	rowCh := make(chan int)

	g.Go(func() error {
		defer close(rowCh)
		for row := 0; row < ref.Height; row++ {
			select {
			case rowCh <- row:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			buf := make([]float64, len(s.Bands))
			for row := range rowCh {
				for col := 0; col < ref.Width; col++ {
					if !s.Read(col, row, buf) {
						continue // no-data stays 0
					}
					out.Set(col, row, uint8(tree.Predict(buf)))
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "predict: row workers")
	}
	if bar != nil {
		_ = bar.Finish()
	}

	zap.L().Info("predict: classified raster",
		zap.Int("width", ref.Width),
		zap.Int("height", ref.Height),
		zap.Int("workers", workers),
	)
	return out, nil
}

// validateBands checks that stack bands and model predictors agree
// exactly, including order.
func validateBands(bands, predictors []string) error {
	if len(bands) != len(predictors) {
		return eris.Errorf("predict: stack has %d bands but model has %d predictors", len(bands), len(predictors))
	}
	for i := range bands {
		if bands[i] != predictors[i] {
			return eris.Errorf("predict: band %d is %q but model predictor %d is %q", i, bands[i], i, predictors[i])
		}
	}
	return nil
}

// Stats summarizes a classification raster against its legend: pixel
// counts and area per class label.
func Stats(cg *raster.ClassGrid, legend *model.Legend) (counts map[string]int64, areaM2 map[string]float64, err error) {
	counts = make(map[string]int64)
	areaM2 = make(map[string]float64)
	pixelArea := cg.PixelArea()
	for code, n := range cg.Counts() {
		label := legend.LabelFor(int(code))
		if label == "" {
			return nil, nil, eris.Errorf("predict: class code %d has no legend entry", code)
		}
		counts[label] = n
		areaM2[label] = float64(n) * pixelArea
	}
	return counts, areaM2, nil
}
