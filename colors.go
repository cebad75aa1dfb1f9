package termframe

import (
	"fmt"
	"image/color"
)

// ColorKind tags which variant a Color holds.
type ColorKind uint8

const (
	// ColorDefault is the terminal's own default color (no explicit color set).
	ColorDefault ColorKind = iota
	// ColorIndexed is an entry of the 256-color palette.
	ColorIndexed
	// ColorRGB is a 24-bit true color.
	ColorRGB
)

// Color is a foreground or background color value.
// Only the fields belonging to Kind are meaningful; the zero value is the terminal default.
type Color struct {
	Kind  ColorKind
	Index uint8
	RGB   color.RGBA
}

// DefaultColor returns the terminal default color.
func DefaultColor() Color {
	return Color{}
}

// IndexedColor returns a 256-color palette entry.
func IndexedColor(i uint8) Color {
	return Color{Kind: ColorIndexed, Index: i}
}

// TrueColor returns a 24-bit color.
func TrueColor(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, RGB: color.RGBA{R: r, G: g, B: b, A: 255}}
}

// IsDefault returns true if c is the terminal default.
func (c Color) IsDefault() bool {
	return c.Kind == ColorDefault
}

// Resolve converts c to RGBA using table for indexed colors (DefaultPalette if nil).
// The second result is false for the terminal default, which has no fixed RGB value.
func (c Color) Resolve(table *[256]color.RGBA) (color.RGBA, bool) {
	switch c.Kind {
	case ColorIndexed:
		if table == nil {
			table = &DefaultPalette
		}
		return table[c.Index], true
	case ColorRGB:
		return color.RGBA{R: c.RGB.R, G: c.RGB.G, B: c.RGB.B, A: 255}, true
	default:
		return color.RGBA{}, false
	}
}

// String returns a short debug form: "default", "idx:N" or "#rrggbb".
func (c Color) String() string {
	switch c.Kind {
	case ColorIndexed:
		return fmt.Sprintf("idx:%d", c.Index)
	case ColorRGB:
		return RGBToHex(c.RGB)
	default:
		return "default"
	}
}

// ansiColors holds the 16 standard colors (0-7 normal, 8-15 bright).
var ansiColors = [16]color.RGBA{
	// Standard colors (0-7)
	{0, 0, 0, 255},       // Black
	{205, 49, 49, 255},   // Red
	{13, 188, 121, 255},  // Green
	{229, 229, 16, 255},  // Yellow
	{36, 114, 200, 255},  // Blue
	{188, 63, 188, 255},  // Magenta
	{17, 168, 205, 255},  // Cyan
	{229, 229, 229, 255}, // White

	// Bright colors (8-15)
	{102, 102, 102, 255}, // Bright Black
	{241, 76, 76, 255},   // Bright Red
	{35, 209, 139, 255},  // Bright Green
	{245, 245, 67, 255},  // Bright Yellow
	{59, 142, 234, 255},  // Bright Blue
	{214, 112, 214, 255}, // Bright Magenta
	{41, 184, 219, 255},  // Bright Cyan
	{233, 235, 235, 255}, // Bright White
}

// cubeLevels maps a color cube digit (0-5) to its channel intensity.
var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// IndexToRGB converts a 256-color palette index to RGBA.
//
//   - 0-15: the standard and bright ANSI colors
//   - 16-231: a 6x6x6 color cube
//   - 232-255: a 24 step grayscale ramp starting at 8
func IndexToRGB(i uint8) color.RGBA {
	switch {
	case i < 16:
		return ansiColors[i]
	case i < 232:
		n := int(i) - 16
		return color.RGBA{
			R: cubeLevels[n/36],
			G: cubeLevels[(n/6)%6],
			B: cubeLevels[n%6],
			A: 255,
		}
	default:
		gray := uint8(8 + (int(i)-232)*10)
		return color.RGBA{gray, gray, gray, 255}
	}
}

// RGBToHex formats a color as lowercase "#rrggbb", ignoring alpha.
func RGBToHex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// DefaultPalette is the standard 256-color palette produced by IndexToRGB.
var DefaultPalette [256]color.RGBA

// DefaultForeground and DefaultBackground are used when rendering terminal-default cells.
var (
	DefaultForeground = color.RGBA{229, 229, 229, 255}
	DefaultBackground = color.RGBA{0, 0, 0, 255}
)

func init() {
	for i := 0; i < 256; i++ {
		DefaultPalette[i] = IndexToRGB(uint8(i))
	}
}
