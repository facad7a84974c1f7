package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/terralab/landcover-cli/internal/cart"
	"github.com/terralab/landcover-cli/internal/model"
	"github.com/terralab/landcover-cli/internal/pipeline"
	"github.com/terralab/landcover-cli/internal/raster"
	"github.com/terralab/landcover-cli/internal/render"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Run the full classification pipeline for the configured scene",
	Long:  "Loads the scene bands, clips to the study area, converts to reflectance, trains a decision tree on the labeled features, classifies every pixel, and writes the class raster, model file, and rendered map.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		start := time.Now()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stack, err := loadScene()
		if err != nil {
			return eris.Wrap(err, "classify: load scene")
		}
		boundary, err := loadBoundary(stack)
		if err != nil {
			return eris.Wrap(err, "classify: load boundary")
		}
		features, err := loadTraining(stack)
		if err != nil {
			return eris.Wrap(err, "classify: load training features")
		}
		palette, err := model.LoadPalette(cfg.ResolvePath(cfg.Classes))
		if err != nil {
			return eris.Wrap(err, "classify: load palette")
		}

		p := newPipeline(st)
		scene := sceneName()
		out, err := p.Run(ctx, scene, pipeline.Inputs{
			Stack:    stack,
			Boundary: boundary,
			Features: features,
			Palette:  palette,
		})
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.OutputPath(""), 0o755); err != nil {
			return eris.Wrap(err, "classify: create output dir")
		}

		rasterPath := cfg.OutputPath(scene + "_classes.tif")
		if err := raster.WriteClassGrid(rasterPath, out.Classes); err != nil {
			return eris.Wrap(err, "classify: write class raster")
		}

		modelPath := cfg.OutputPath(scene + "_model.json")
		if err := cart.Save(modelPath, out.Tree, out.Legend); err != nil {
			return eris.Wrap(err, "classify: save model")
		}

		imagePath := cfg.OutputPath(scene + "_map.png")
		err = render.Map(out.Classes, out.Legend, imagePath, render.Options{
			Scale: cfg.Render.Scale,
			Title: cfg.Render.Title,
		})
		if err != nil {
			return eris.Wrap(err, "classify: render map")
		}

		result := &model.RunResult{
			TrainingRecords:  out.Records,
			TrainingAccuracy: out.TrainingAccuracy,
			ClassCounts:      out.Counts,
			ClassAreaM2:      out.AreaM2,
			ModelPath:        modelPath,
			RasterPath:       rasterPath,
			ImagePath:        imagePath,
			DurationSecs:     time.Since(start).Seconds(),
		}
		if err := p.Finish(ctx, out.RunID, result); err != nil {
			zap.L().Warn("classify: failed to record run result", zap.Error(err))
		}

		printClassSummary(out, result)
		return nil
	},
}

func printClassSummary(out *pipeline.Outcome, result *model.RunResult) {
	fmt.Printf("Run %s complete in %.1fs\n", truncateID(out.RunID), result.DurationSecs)
	fmt.Printf("  training records: %d (%d dropped), accuracy %.1f%%\n",
		out.Records, out.Dropped, out.TrainingAccuracy*100)
	for _, label := range out.Legend.Labels() {
		fmt.Printf("  %-16s %10d px  %14.0f m2\n", label, out.Counts[label], out.AreaM2[label])
	}
	fmt.Printf("  raster: %s\n  model:  %s\n  map:    %s\n",
		result.RasterPath, result.ModelPath, result.ImagePath)
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
