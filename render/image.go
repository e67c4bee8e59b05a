// Package render draws packed spectrogram grids: PNG/JPEG heat-maps for
// files and downloads, and colored-cell previews for the terminal.
package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/fogleman/gg"

	"github.com/sonogrid/sonogrid/logging"
	"github.com/sonogrid/sonogrid/spectrogram"
	"github.com/sonogrid/sonogrid/spectrogram/config"
)

// legendWidth is the pixel width of the optional palette legend strip
const legendWidth = 12

// ImageOptions control the extras drawn over the heat-map
type ImageOptions struct {
	// Playhead draws a cursor line at the normalized position when in
	// [0, 1]. Negative disables it.
	Playhead float64

	// Legend draws a palette strip along the right edge, darkest at the
	// bottom.
	Legend bool
}

// DefaultImageOptions disables the playhead and the legend
func DefaultImageOptions() ImageOptions {
	return ImageOptions{Playhead: -1}
}

// ImageRenderer rasterizes grids under a fixed palette. One grid cell
// maps to one pixel, row 0 of the grid at the top of the image.
type ImageRenderer struct {
	cmap   *spectrogram.Colormap
	logger logging.Logger
}

// NewImageRenderer creates a renderer for the palette
func NewImageRenderer(palette config.PaletteType) (*ImageRenderer, error) {
	cmap, err := spectrogram.NewColormap(palette)
	if err != nil {
		return nil, fmt.Errorf("invalid palette: %w", err)
	}

	return &ImageRenderer{
		cmap: cmap,
		logger: logging.WithFields(logging.Fields{
			"component": "image_renderer",
		}),
	}, nil
}

// Render rasterizes the grid into an RGBA image
func (r *ImageRenderer) Render(grid *spectrogram.Grid, opts ImageOptions) image.Image {
	dc := gg.NewContext(grid.Width, grid.Height)

	for y := range grid.Height {
		for x := range grid.Width {
			c := r.cmap.Map(grid.At(x, y))
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			dc.SetPixel(x, y)
		}
	}

	if opts.Legend && grid.Width > 2*legendWidth {
		r.drawLegend(dc, grid.Width, grid.Height)
	}

	if opts.Playhead >= 0 && opts.Playhead <= 1 {
		x := opts.Playhead * float64(grid.Width-1)
		dc.SetRGBA(1, 1, 1, 0.85)
		dc.SetLineWidth(2)
		dc.DrawLine(x, 0, x, float64(grid.Height))
		dc.Stroke()
	}

	r.logger.Debug("rendered image", logging.Fields{
		"width":    grid.Width,
		"height":   grid.Height,
		"palette":  string(r.cmap.Palette()),
		"playhead": opts.Playhead,
	})

	return dc.Image()
}

// drawLegend paints the palette strip along the right edge, t=1 at the
// top to match the display orientation
func (r *ImageRenderer) drawLegend(dc *gg.Context, width, height int) {
	for y := range height {
		t := 1.0
		if height > 1 {
			t = 1 - float64(y)/float64(height-1)
		}
		c := r.cmap.Map(t)
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		for x := width - legendWidth; x < width; x++ {
			dc.SetPixel(x, y)
		}
	}

	dc.SetRGBA(1, 1, 1, 0.6)
	dc.SetLineWidth(1)
	dc.DrawLine(float64(width-legendWidth), 0, float64(width-legendWidth), float64(height))
	dc.Stroke()
}

// EncodePNG renders the grid and writes it as PNG
func (r *ImageRenderer) EncodePNG(w io.Writer, grid *spectrogram.Grid, opts ImageOptions) error {
	if err := png.Encode(w, r.Render(grid, opts)); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// EncodeJPEG renders the grid and writes it as JPEG at quality 90
func (r *ImageRenderer) EncodeJPEG(w io.Writer, grid *spectrogram.Grid, opts ImageOptions) error {
	if err := jpeg.Encode(w, r.Render(grid, opts), &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("encoding jpeg: %w", err)
	}
	return nil
}

// Save renders the grid to a file, picking the codec from the extension
// (.png by default, .jpg/.jpeg for JPEG)
func (r *ImageRenderer) Save(path string, grid *spectrogram.Grid, opts ImageOptions) error {
	img := r.Render(grid, opts)

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
		return gg.SaveJPG(path, img, 90)
	}
	return gg.SavePNG(path, img)
}
