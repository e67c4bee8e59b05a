package spectrogram

import (
	"fmt"
	"math"

	"github.com/sonogrid/sonogrid/algorithms/common"
	"github.com/sonogrid/sonogrid/spectrogram/config"
)

// RGB is one display color
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as a #rrggbb string
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// gradientStop anchors a gradient color at a normalized position
type gradientStop struct {
	t float64
	c RGB
}

// Gradient palettes are fixed control points interpolated linearly
// inside each sub-interval, so the mapping is continuous across stop
// boundaries. Stops sit at i/(len-1).
var gradients = map[config.PaletteType][]RGB{
	config.PaletteInferno: {
		{0x00, 0x00, 0x04},
		{0x42, 0x0a, 0x68},
		{0x93, 0x26, 0x67},
		{0xdd, 0x51, 0x3a},
		{0xfc, 0xa5, 0x0a},
		{0xfc, 0xff, 0xa4},
	},
	config.PaletteForest: {
		{0x05, 0x10, 0x08},
		{0x10, 0x36, 0x1a},
		{0x21, 0x62, 0x2c},
		{0x46, 0x91, 0x3c},
		{0x8c, 0xc3, 0x6c},
		{0xe4, 0xf5, 0xd0},
	},
	config.PaletteMountains: {
		{0x0d, 0x11, 0x17},
		{0x26, 0x32, 0x47},
		{0x48, 0x5c, 0x78},
		{0x76, 0x8d, 0xa9},
		{0xbd, 0xc9, 0xd6},
		{0xfa, 0xfc, 0xfe},
	},
	config.PaletteNebula: {
		{0x0d, 0x02, 0x21},
		{0x0d, 0x1b, 0x2a},
		{0x1b, 0x26, 0x3b},
		{0x41, 0x5a, 0x77},
		{0x77, 0x8d, 0xa9},
		{0xe0, 0xe1, 0xdd},
		{0xff, 0x6b, 0x6b},
		{0xff, 0xd9, 0x3d},
	},
}

// Colormap converts normalized magnitudes to display colors under a
// selected palette. Mapping is continuous in t for every palette.
type Colormap struct {
	palette config.PaletteType
	stops   []gradientStop
}

// NewColormap creates a colormap for the palette
func NewColormap(palette config.PaletteType) (*Colormap, error) {
	if _, err := config.ParsePaletteType(string(palette)); err != nil {
		return nil, err
	}

	c := &Colormap{palette: palette}
	if colors, ok := gradients[palette]; ok {
		c.stops = make([]gradientStop, len(colors))
		for i, col := range colors {
			c.stops[i] = gradientStop{
				t: axisFraction(i, len(colors)),
				c: col,
			}
		}
	}
	return c, nil
}

// Palette returns the palette type
func (c *Colormap) Palette() config.PaletteType {
	return c.palette
}

// Map converts a normalized magnitude to a color. t clamps to [0, 1].
func (c *Colormap) Map(t float64) RGB {
	t = common.Clamp01(t)

	switch c.palette {
	case config.PaletteGray:
		v := roundByte(255 * t)
		return RGB{v, v, v}
	case config.PaletteRainbow:
		// Hue runs 0..360 with t, red through the wheel back to red.
		return hsvToRGB(360*t, 1, 1)
	default:
		return c.gradient(t)
	}
}

// gradient interpolates between the two stops straddling t
func (c *Colormap) gradient(t float64) RGB {
	last := len(c.stops) - 1
	if t >= c.stops[last].t {
		return c.stops[last].c
	}

	for i := 0; i < last; i++ {
		lo, hi := c.stops[i], c.stops[i+1]
		if t > hi.t {
			continue
		}
		span := hi.t - lo.t
		if span <= 0 {
			return lo.c
		}
		return lerpColor(lo.c, hi.c, (t-lo.t)/span)
	}
	return c.stops[last].c
}

// Apply colors a whole grid into a tightly packed RGBA buffer, row 0
// first, ready for texture upload or image encoding.
func (c *Colormap) Apply(g *Grid) []byte {
	buf := make([]byte, 0, len(g.Values)*4)
	for _, v := range g.Values {
		col := c.Map(v)
		buf = append(buf, col.R, col.G, col.B, 0xff)
	}
	return buf
}

// lerpColor interpolates each channel independently
func lerpColor(a, b RGB, t float64) RGB {
	return RGB{
		R: roundByte(common.Lerp(float64(a.R), float64(b.R), t)),
		G: roundByte(common.Lerp(float64(a.G), float64(b.G), t)),
		B: roundByte(common.Lerp(float64(a.B), float64(b.B), t)),
	}
}

// hsvToRGB converts a fully saturated hue via the standard six-sector
// formula. h in degrees, s and v in [0, 1].
func hsvToRGB(h, s, v float64) RGB {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	sector := h / 60
	i := int(sector) % 6
	f := sector - math.Floor(sector)

	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch i {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return RGB{roundByte(255 * r), roundByte(255 * g), roundByte(255 * b)}
}

func roundByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
