package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/terralab/landcover-cli/internal/cart"
	"github.com/terralab/landcover-cli/internal/model"
	"github.com/terralab/landcover-cli/internal/raster"
	"github.com/terralab/landcover-cli/internal/sampler"
)

var trainOut string

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a decision tree and save it as a model file",
	Long:  "Runs the pipeline through training only: clip, reflectance conversion, training-data extraction, and tree fitting. The fitted tree and its legend are written as a JSON model file for later predict runs.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		stack, err := loadScene()
		if err != nil {
			return eris.Wrap(err, "train: load scene")
		}
		boundary, err := loadBoundary(stack)
		if err != nil {
			return eris.Wrap(err, "train: load boundary")
		}
		features, err := loadTraining(stack)
		if err != nil {
			return eris.Wrap(err, "train: load training features")
		}
		palette, err := model.LoadPalette(cfg.ResolvePath(cfg.Classes))
		if err != nil {
			return eris.Wrap(err, "train: load palette")
		}

		p := newPipeline(nil)
		clipped, err := raster.Clip(stack, boundary)
		if err != nil {
			return eris.Wrap(err, "train: clip")
		}
		if err := raster.ToReflectance(clipped, p.Calibration); err != nil {
			return eris.Wrap(err, "train: convert")
		}

		ex, err := sampler.Extract(clipped, features, palette)
		if err != nil {
			return eris.Wrap(err, "train: extract")
		}

		tree, err := cart.Fit(ex.Samples(), clipped.Names(), p.TrainOpts)
		if err != nil {
			return eris.Wrap(err, "train: fit")
		}

		path := trainOut
		if path == "" {
			path = cfg.OutputPath(sceneName() + "_model.json")
		}
		if err := os.MkdirAll(cfg.OutputPath(""), 0o755); err != nil {
			return eris.Wrap(err, "train: create output dir")
		}
		if err := cart.Save(path, tree, ex.Legend); err != nil {
			return eris.Wrap(err, "train: save model")
		}

		fmt.Printf("Trained on %d records (%d dropped), %d classes, depth %d, %d leaves\n",
			len(ex.Records), ex.Dropped, len(ex.Legend.Classes), tree.Depth(), tree.Leaves())
		fmt.Printf("Model written to %s\n", path)
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainOut, "out", "", "model output path (default <output>/<scene>_model.json)")
	rootCmd.AddCommand(trainCmd)
}
