package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/terralab/landcover-cli/internal/cart"
	"github.com/terralab/landcover-cli/internal/raster"
	"github.com/terralab/landcover-cli/internal/render"
)

var (
	renderRaster string
	renderModel  string
	renderOut    string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a class raster as a PNG map with a legend",
	Long:  "Reads a classification GeoTIFF and the legend bundled in its model file, and draws a color map with a legend panel.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if renderRaster == "" {
			renderRaster = cfg.OutputPath(sceneName() + "_classes.tif")
		}
		if renderModel == "" {
			renderModel = cfg.OutputPath(sceneName() + "_model.json")
		}
		if renderOut == "" {
			renderOut = cfg.OutputPath(sceneName() + "_map.png")
		}

		classes, err := raster.ReadClassGrid(renderRaster)
		if err != nil {
			return eris.Wrap(err, "render: read class raster")
		}
		_, legend, err := cart.Load(renderModel)
		if err != nil {
			return eris.Wrap(err, "render: load model")
		}

		err = render.Map(classes, legend, renderOut, render.Options{
			Scale: cfg.Render.Scale,
			Title: cfg.Render.Title,
		})
		if err != nil {
			return eris.Wrap(err, "render: draw map")
		}

		fmt.Printf("Map written to %s\n", renderOut)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderRaster, "raster", "", "class raster path (default <output>/<scene>_classes.tif)")
	renderCmd.Flags().StringVar(&renderModel, "model", "", "model file carrying the legend (default <output>/<scene>_model.json)")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "PNG output path (default <output>/<scene>_map.png)")
	rootCmd.AddCommand(renderCmd)
}
