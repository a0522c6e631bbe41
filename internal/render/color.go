package render

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color represents a color value.
type Color struct {
	R, G, B uint8
	// Default indicates this is the terminal's default color.
	Default bool
}

// ColorDefault represents the terminal's default color.
var ColorDefault = Color{Default: true}

// Common colors.
var (
	ColorRed  = Color{R: 255, G: 0, B: 0}
	ColorGray = Color{R: 128, G: 128, B: 128}
)

// ColorFromRGB creates a true color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromHex creates a color from a "#RRGGBB" or "#RGB" string.
func ColorFromHex(hex string) (Color, error) {
	if len(hex) == 4 && hex[0] == '#' {
		hex = "#" + string([]byte{hex[1], hex[1], hex[2], hex[2], hex[3], hex[3]})
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// IsDefault returns true if this is the default/transparent color.
func (c Color) IsDefault() bool {
	return c.Default
}

// String returns a string representation of the color.
func (c Color) String() string {
	if c.Default {
		return "default"
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// palette256 holds the xterm colors 16-255: the 6x6x6 cube and the gray ramp.
var palette256 = func() []colorful.Color {
	levels := []uint8{0, 95, 135, 175, 215, 255}
	p := make([]colorful.Color, 0, 240)
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				p = append(p, ColorFromRGB(r, g, b).colorful())
			}
		}
	}
	for i := 0; i < 24; i++ {
		v := uint8(8 + 10*i)
		p = append(p, ColorFromRGB(v, v, v).colorful())
	}
	return p
}()

// Index256 returns the xterm-256 palette index perceptually closest to c.
func (c Color) Index256() uint8 {
	target := c.colorful()
	best, bestDist := 0, -1.0
	for i, p := range palette256 {
		d := target.DistanceLab(p)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(16 + best)
}
