// Package render draws a classification raster as a static PNG map with
// a color legend.
package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"github.com/terralab/landcover-cli/internal/model"
	"github.com/terralab/landcover-cli/internal/raster"
)

// Options configures map rendering.
type Options struct {
	Scale int    // integer pixel magnification, minimum 1
	Title string // optional title above the legend
}

// Legend panel layout constants, in output pixels.
const (
	legendWidth   = 180
	legendPad     = 12
	swatchSize    = 14
	legendRowStep = 22
)

// Map renders the classification raster and its legend to a PNG file.
// Every class code present in the raster must have a legend entry; a
// shorter palette would silently mislabel classes, so it is an error.
func Map(cg *raster.ClassGrid, legend *model.Legend, path string, opts Options) error {
	if err := legend.Validate(); err != nil {
		return err
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}

	colors, err := classColors(legend)
	if err != nil {
		return err
	}
	for code := range cg.Counts() {
		if int(code) >= len(colors) {
			return eris.Errorf("render: class code %d present in raster but missing from legend", code)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, cg.Width, cg.Height))
	for row := 0; row < cg.Height; row++ {
		for col := 0; col < cg.Width; col++ {
			img.Set(col, row, colors[cg.At(col, row)])
		}
	}

	mapW, mapH := cg.Width*opts.Scale, cg.Height*opts.Scale
	legendH := legendPad*2 + len(legend.Classes)*legendRowStep
	if opts.Title != "" {
		legendH += legendRowStep
	}
	height := mapH
	if legendH > height {
		height = legendH
	}

	dc := gg.NewContext(mapW+legendWidth, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.Push()
	dc.Scale(float64(opts.Scale), float64(opts.Scale))
	dc.DrawImage(img, 0, 0)
	dc.Pop()

	// Legend panel to the right of the map.
	x := float64(mapW + legendPad)
	y := float64(legendPad)
	if opts.Title != "" {
		dc.SetRGB(0, 0, 0)
		dc.DrawString(opts.Title, x, y+swatchSize)
		y += legendRowStep
	}
	for _, c := range legend.Classes {
		dc.SetColor(colors[c.Code])
		dc.DrawRectangle(x, y, swatchSize, swatchSize)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawString(c.Label, x+swatchSize+8, y+swatchSize-2)
		y += legendRowStep
	}

	if err := dc.SavePNG(path); err != nil {
		return eris.Wrapf(err, "render: save %s", path)
	}
	zap.L().Info("render: wrote map", zap.String("path", path))
	return nil
}

// classColors returns the color per class code, indexed by code. Index 0
// is the no-data color (white).
func classColors(legend *model.Legend) ([]color.RGBA, error) {
	colors := make([]color.RGBA, len(legend.Classes)+1)
	colors[0] = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for _, c := range legend.Classes {
		r, g, b, err := model.ParseHexColor(c.Color)
		if err != nil {
			return nil, err
		}
		colors[c.Code] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors, nil
}
