package termframe

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// Layer is a bitmask of frame layers.
type Layer uint16

const (
	LayerText Layer = 1 << iota
	LayerCursor
	LayerFgColors
	LayerBgColors
	LayerStyles
	LayerBold
	LayerItalic
	LayerUnderline
)

// LayerColors selects both color layers.
const LayerColors = LayerFgColors | LayerBgColors

// ErrUnknownLayer is returned by ParseLayers for a name outside the layer vocabulary.
var ErrUnknownLayer = errors.New("unknown layer")

var layerNames = []struct {
	layer Layer
	name  string
}{
	{LayerText, "text"},
	{LayerCursor, "cursor"},
	{LayerFgColors, "fgColors"},
	{LayerBgColors, "bgColors"},
	{LayerStyles, "styles"},
	{LayerBold, "bold"},
	{LayerItalic, "italic"},
	{LayerUnderline, "underline"},
}

// ParseLayers converts layer names (e.g. "text", "fgColors") to a Layer set.
// Empty names are skipped.
func ParseLayers(names []string) (Layer, error) {
	var set Layer
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		found := false
		for _, ln := range layerNames {
			if ln.name == name {
				set |= ln.layer
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
		}
	}
	return set, nil
}

// Has returns true if every layer in x is in l.
func (l Layer) Has(x Layer) bool {
	return l&x == x
}

// Names returns the names of the layers in l, in canonical order.
func (l Layer) Names() []string {
	var names []string
	for _, ln := range layerNames {
		if l.Has(ln.layer) {
			names = append(names, ln.name)
		}
	}
	return names
}

func (l Layer) String() string {
	if l == 0 {
		return "none"
	}
	return strings.Join(l.Names(), ",")
}

// Fill characters used where no line or run covers a cell.
const (
	colorFill = NoColorToken
	styleFill = '.'
	attrFill  = ' '
	attrMark  = 'X'
)

// lineAt returns the structured line for row, or an empty line.
func lineAt(lines []Line, row int) Line {
	if row < 0 || row >= len(lines) {
		return Line{}
	}
	return lines[row]
}

// expandRow projects the runs of line onto the viewport columns, writing
// cell(style) for every covered column and fill everywhere else.
func expandRow(line Line, vp Viewport, fill byte, cell func(Style) byte) string {
	buf := bytes.Repeat([]byte{fill}, vp.Width)
	right := vp.Left + vp.Width

	col := 0
	for _, r := range line.Runs {
		if r.Repeat <= 0 {
			continue
		}
		start, end := col, col+r.Repeat
		col = end
		if start >= right {
			break
		}
		lo, hi := max(start, vp.Left), min(end, right)
		if lo >= hi {
			continue
		}
		ch := cell(r.Style())
		for c := lo; c < hi; c++ {
			buf[c-vp.Left] = ch
		}
	}
	return string(buf)
}

// encodeRows builds one string per viewport row.
func encodeRows(lines []Line, vp Viewport, fill byte, cell func(Style) byte) []string {
	if vp.Empty() {
		return []string{}
	}
	rows := make([]string, vp.Height)
	for i := range rows {
		rows[i] = expandRow(lineAt(lines, vp.Top+i), vp, fill, cell)
	}
	return rows
}

// EncodeText returns the characters of each viewport row. Rows and columns
// past the captured lines contribute nothing, so rows may be shorter than
// the viewport width. Columns left of the screen are spaces, keeping text
// aligned with the other layers when vp.Left is negative.
func EncodeText(lines []Line, vp Viewport) []string {
	if vp.Empty() {
		return []string{}
	}
	pad := strings.Repeat(" ", min(max(-vp.Left, 0), vp.Width))
	rows := make([]string, vp.Height)
	for i := range rows {
		cols := lineAt(lines, vp.Top+i).Columns()
		lo := min(max(vp.Left, 0), len(cols))
		hi := min(max(vp.Left+vp.Width, 0), len(cols))
		if lo < hi {
			rows[i] = pad + string(cols[lo:hi])
		}
	}
	return rows
}

// CursorInfo locates the cursor on the terminal and within the viewport.
// RelLeft and RelTop are both -1 when the cursor is outside the viewport.
type CursorInfo struct {
	Left    int `json:"left"`
	Top     int `json:"top"`
	RelLeft int `json:"relLeft"`
	RelTop  int `json:"relTop"`
}

// Visible returns true if the cursor falls inside the viewport.
func (c CursorInfo) Visible() bool {
	return c.RelLeft >= 0 && c.RelTop >= 0
}

// EncodeCursor computes absolute and viewport-relative cursor coordinates.
func EncodeCursor(cursor Cursor, vp Viewport) CursorInfo {
	info := CursorInfo{
		Left:    cursor.X,
		Top:     cursor.Y,
		RelLeft: cursor.X - vp.Left,
		RelTop:  cursor.Y - vp.Top,
	}
	if !vp.Contains(cursor.X, cursor.Y) {
		info.RelLeft, info.RelTop = -1, -1
	}
	return info
}

// ColorLayers holds the encoded color rows and the palette they refer to.
// Fg or Bg is nil when that layer was not requested.
type ColorLayers struct {
	Fg      []string
	Bg      []string
	Palette *Palette
}

// EncodeColors encodes the requested color layers (LayerFgColors and/or
// LayerBgColors in layers) against one shared palette.
//
// The palette is filled first, in first-seen order over every run of every
// viewport row (foreground before background per run), and frozen before any
// row is written. If the colors exceed PaletteCapacity the whole call fails
// with an error matching ErrPaletteOverflow and no rows are returned.
func EncodeColors(lines []Line, vp Viewport, layers Layer, table *[256]color.RGBA) (*ColorLayers, error) {
	wantFg, wantBg := layers.Has(LayerFgColors), layers.Has(LayerBgColors)

	builder := NewPaletteBuilder(table)
	if !vp.Empty() && (wantFg || wantBg) {
		for i := 0; i < vp.Height; i++ {
			for _, r := range lineAt(lines, vp.Top+i).Runs {
				if wantFg {
					if err := builder.AddColor(r.Fg); err != nil {
						return nil, err
					}
				}
				if wantBg {
					if err := builder.AddColor(r.Bg); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	palette := builder.Build()

	out := &ColorLayers{Palette: palette}
	if wantFg {
		out.Fg = encodeRows(lines, vp, colorFill, func(s Style) byte {
			return palette.TokenFor(s.Fg)
		})
	}
	if wantBg {
		out.Bg = encodeRows(lines, vp, colorFill, func(s Style) byte {
			return palette.TokenFor(s.Bg)
		})
	}
	return out, nil
}

// styleTokens is indexed by bold | italic<<1 | underline<<2.
var styleTokens = [8]byte{'.', 'b', 'i', 'I', 'u', 'U', 'J', 'X'}

var styleLabels = [8]string{
	"none",
	"bold",
	"italic",
	"bold+italic",
	"underline",
	"bold+underline",
	"italic+underline",
	"bold+italic+underline",
}

func styleIndex(bold, italic, underline bool) int {
	i := 0
	if bold {
		i |= 1
	}
	if italic {
		i |= 2
	}
	if underline {
		i |= 4
	}
	return i
}

// StyleToken returns the combined style layer character for a
// bold/italic/underline combination.
func StyleToken(bold, italic, underline bool) byte {
	return styleTokens[styleIndex(bold, italic, underline)]
}

// DecodeStyleToken is the inverse of StyleToken. ok is false for characters
// that are not style tokens.
func DecodeStyleToken(token byte) (bold, italic, underline, ok bool) {
	for i, t := range styleTokens {
		if t == token {
			return i&1 != 0, i&2 != 0, i&4 != 0, true
		}
	}
	return false, false, false, false
}

// StyleLegend maps every combined style token to a human label.
func StyleLegend() map[string]string {
	legend := make(map[string]string, len(styleTokens))
	for i, t := range styleTokens {
		legend[string(t)] = styleLabels[i]
	}
	return legend
}

// EncodeStyles encodes the combined bold/italic/underline layer.
func EncodeStyles(lines []Line, vp Viewport) []string {
	return encodeRows(lines, vp, styleFill, func(s Style) byte {
		return StyleToken(s.Attrs.Has(AttrBold), s.Attrs.Has(AttrItalic), s.Attrs.Has(AttrUnderline))
	})
}

// EncodeAttr encodes a single-attribute layer: 'X' where attr is set, ' ' elsewhere.
func EncodeAttr(lines []Line, vp Viewport, attr Attrs) []string {
	return encodeRows(lines, vp, attrFill, func(s Style) byte {
		if s.Attrs.Has(attr) {
			return attrMark
		}
		return attrFill
	})
}
