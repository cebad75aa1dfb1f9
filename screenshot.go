package termframe

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// RenderConfig controls how a screen is rasterized.
type RenderConfig struct {
	// Font face to use. If nil, uses basicfont.Face7x13.
	Font font.Face

	// CellWidth and CellHeight override the cell dimensions.
	// If zero, derived from font metrics.
	CellWidth  int
	CellHeight int

	// Palette is the 256-color table. If nil, uses DefaultPalette.
	Palette *[256]color.RGBA

	// DefaultFG and DefaultBG replace terminal-default colors. If nil, uses
	// DefaultForeground and DefaultBackground.
	DefaultFG *color.RGBA
	DefaultBG *color.RGBA

	// HideCursor disables drawing the cursor cell inverted.
	HideCursor bool
}

// LoadFont loads a TrueType or OpenType font from a file path.
func LoadFont(path string, size float64) (font.Face, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return LoadFontFromBytes(data, size)
}

// LoadFontFromBytes loads a TrueType or OpenType font from raw bytes.
func LoadFontFromBytes(data []byte, size float64) (font.Face, error) {
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}

	return opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Render rasterizes the part of screen covered by vp, one cell per character.
// Cells outside the captured lines are drawn as default background.
func Render(screen *Screen, vp Viewport, cfg *RenderConfig) *image.RGBA {
	if cfg == nil {
		cfg = &RenderConfig{}
	}

	face := cfg.Font
	if face == nil {
		face = basicfont.Face7x13
	}

	cellWidth, cellHeight := cfg.CellWidth, cfg.CellHeight
	if cellWidth == 0 {
		adv, _ := face.GlyphAdvance('M')
		cellWidth = adv.Ceil()
		if cellWidth == 0 {
			cellWidth = 7 // basicfont fallback
		}
	}
	if cellHeight == 0 {
		cellHeight = face.Metrics().Height.Ceil()
	}

	palette := cfg.Palette
	if palette == nil {
		palette = &DefaultPalette
	}
	defaultFG := DefaultForeground
	if cfg.DefaultFG != nil {
		defaultFG = *cfg.DefaultFG
	}
	defaultBG := DefaultBackground
	if cfg.DefaultBG != nil {
		defaultBG = *cfg.DefaultBG
	}

	width, height := max(vp.Width, 0), max(vp.Height, 0)
	img := image.NewRGBA(image.Rect(0, 0, width*cellWidth, height*cellHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(defaultBG), image.Point{}, draw.Src)
	if vp.Empty() {
		return img
	}

	ascent := face.Metrics().Ascent.Ceil()

	for r := 0; r < height; r++ {
		line := screen.Line(vp.Top + r)
		cols := line.Columns()

		for c := 0; c < width; c++ {
			col := vp.Left + c
			if col < 0 {
				continue
			}
			style := line.StyleAt(col)

			fg, ok := style.Fg.Resolve(palette)
			if !ok {
				fg = defaultFG
			}
			bg, ok := style.Bg.Resolve(palette)
			if !ok {
				bg = defaultBG
			}
			if style.Attrs.Has(AttrInverse) {
				fg, bg = bg, fg
			}
			if style.Attrs.Has(AttrFaint) {
				fg = dim(fg)
			}

			x, y := c*cellWidth, r*cellHeight
			cell := image.Rect(x, y, x+cellWidth, y+cellHeight)
			draw.Draw(img, cell, image.NewUniform(bg), image.Point{}, draw.Src)

			if col >= len(cols) || style.Attrs.Has(AttrInvisible) {
				continue
			}

			baseline := y + ascent
			if ch := cols[col]; ch != ' ' {
				d := &font.Drawer{
					Dst:  img,
					Src:  image.NewUniform(fg),
					Face: face,
					Dot:  fixed.P(x, baseline),
				}
				d.DrawString(string(ch))
			}

			if style.Attrs.Has(AttrUnderline) {
				if uy := baseline + 2; uy < y+cellHeight {
					draw.Draw(img, image.Rect(x, uy, x+cellWidth, uy+1), image.NewUniform(fg), image.Point{}, draw.Src)
				}
			}
			if style.Attrs.Has(AttrStrike) {
				sy := y + cellHeight/2
				draw.Draw(img, image.Rect(x, sy, x+cellWidth, sy+1), image.NewUniform(fg), image.Point{}, draw.Src)
			}
		}
	}

	if !cfg.HideCursor {
		cur := EncodeCursor(screen.Cursor, vp)
		if cur.Visible() {
			invert(img, image.Rect(
				cur.RelLeft*cellWidth, cur.RelTop*cellHeight,
				(cur.RelLeft+1)*cellWidth, (cur.RelTop+1)*cellHeight,
			))
		}
	}

	return img
}

// WritePNG renders screen through vp and writes it as PNG.
func WritePNG(w io.Writer, screen *Screen, vp Viewport, cfg *RenderConfig) error {
	return png.Encode(w, Render(screen, vp, cfg))
}

func dim(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * 0.66),
		G: uint8(float64(c.G) * 0.66),
		B: uint8(float64(c.B) * 0.66),
		A: c.A,
	}
}

func invert(img *image.RGBA, rect image.Rectangle) {
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			p := img.RGBAAt(x, y)
			img.SetRGBA(x, y, color.RGBA{R: 255 - p.R, G: 255 - p.G, B: 255 - p.B, A: 255})
		}
	}
}
