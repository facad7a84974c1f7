package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/terralab/landcover-cli/internal/cart"
	"github.com/terralab/landcover-cli/internal/predict"
	"github.com/terralab/landcover-cli/internal/raster"
)

var (
	predictModel string
	predictOut   string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Classify the configured scene with a saved model",
	Long:  "Loads a previously trained model file, clips and converts the configured scene, classifies every pixel, and writes the class raster as a GeoTIFF.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if predictModel == "" {
			predictModel = cfg.OutputPath(sceneName() + "_model.json")
		}
		tree, legend, err := cart.Load(predictModel)
		if err != nil {
			return eris.Wrap(err, "predict: load model")
		}

		stack, err := loadScene()
		if err != nil {
			return eris.Wrap(err, "predict: load scene")
		}
		boundary, err := loadBoundary(stack)
		if err != nil {
			return eris.Wrap(err, "predict: load boundary")
		}

		clipped, err := raster.Clip(stack, boundary)
		if err != nil {
			return eris.Wrap(err, "predict: clip")
		}
		p := newPipeline(nil)
		if err := raster.ToReflectance(clipped, p.Calibration); err != nil {
			return eris.Wrap(err, "predict: convert")
		}

		classes, err := predict.Run(ctx, clipped, tree, p.PredictOpts)
		if err != nil {
			return eris.Wrap(err, "predict: classify")
		}

		counts, areaM2, err := predict.Stats(classes, legend)
		if err != nil {
			return eris.Wrap(err, "predict: stats")
		}

		path := predictOut
		if path == "" {
			path = cfg.OutputPath(sceneName() + "_classes.tif")
		}
		if err := os.MkdirAll(cfg.OutputPath(""), 0o755); err != nil {
			return eris.Wrap(err, "predict: create output dir")
		}
		if err := raster.WriteClassGrid(path, classes); err != nil {
			return eris.Wrap(err, "predict: write class raster")
		}

		for _, label := range legend.Labels() {
			fmt.Printf("%-16s %10d px  %14.0f m2\n", label, counts[label], areaM2[label])
		}
		fmt.Printf("Class raster written to %s\n", path)
		return nil
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictModel, "model", "", "model file path (default <output>/<scene>_model.json)")
	predictCmd.Flags().StringVar(&predictOut, "out", "", "class raster output path (default <output>/<scene>_classes.tif)")
	rootCmd.AddCommand(predictCmd)
}
