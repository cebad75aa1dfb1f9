package termframe

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"strings"
)

var (
	// ErrConflictingViewport is returned when a request sets both a region and an aroundCursor distance.
	ErrConflictingViewport = errors.New("region and aroundCursor are mutually exclusive")
	// ErrInvalidRequest is returned for request parameters outside their domain.
	ErrInvalidRequest = errors.New("invalid request")
)

// Request describes what a caller wants encoded.
// At most one of Region and AroundCursor may be set; with neither, the full screen is used.
type Request struct {
	Layers       Layer
	Region       *Region
	AroundCursor *int
	Compact      bool
}

// Validate checks the request parameters.
func (r Request) Validate() error {
	if r.Region != nil && r.AroundCursor != nil {
		return ErrConflictingViewport
	}
	if r.AroundCursor != nil && *r.AroundCursor < 0 {
		return fmt.Errorf("%w: aroundCursor distance %d is negative", ErrInvalidRequest, *r.AroundCursor)
	}
	return nil
}

// Frame is an encoded screen capture. Row-oriented layers all have the same
// number of rows; a layer that was not requested is nil and omitted from JSON.
type Frame struct {
	Terminal     Size
	Viewport     Viewport
	Cursor       *CursorInfo
	Text         []string
	FgColors     []string
	BgColors     []string
	ColorPalette map[string]*string
	Styles       []string
	StyleLegend  map[string]string
	Bold         []string
	Italic       []string
	Underline    []string
}

// frameJSON keeps requested-but-empty layers as [] rather than dropping them.
type frameJSON struct {
	Terminal     Size               `json:"terminal"`
	Viewport     Viewport           `json:"viewport"`
	Cursor       *CursorInfo        `json:"cursor,omitempty"`
	Text         *[]string          `json:"text,omitempty"`
	FgColors     *[]string          `json:"fgColors,omitempty"`
	BgColors     *[]string          `json:"bgColors,omitempty"`
	ColorPalette map[string]*string `json:"colorPalette,omitempty"`
	Styles       *[]string          `json:"styles,omitempty"`
	StyleLegend  map[string]string  `json:"styleLegend,omitempty"`
	Bold         *[]string          `json:"bold,omitempty"`
	Italic       *[]string          `json:"italic,omitempty"`
	Underline    *[]string          `json:"underline,omitempty"`
}

func rowsRef(rows []string) *[]string {
	if rows == nil {
		return nil
	}
	return &rows
}

func rowsDeref(rows *[]string) []string {
	if rows == nil {
		return nil
	}
	if *rows == nil {
		return []string{}
	}
	return *rows
}

// MarshalJSON encodes the frame with the field names clients expect.
func (f Frame) MarshalJSON() ([]byte, error) {
	return json.Marshal(frameJSON{
		Terminal:     f.Terminal,
		Viewport:     f.Viewport,
		Cursor:       f.Cursor,
		Text:         rowsRef(f.Text),
		FgColors:     rowsRef(f.FgColors),
		BgColors:     rowsRef(f.BgColors),
		ColorPalette: f.ColorPalette,
		Styles:       rowsRef(f.Styles),
		StyleLegend:  f.StyleLegend,
		Bold:         rowsRef(f.Bold),
		Italic:       rowsRef(f.Italic),
		Underline:    rowsRef(f.Underline),
	})
}

// UnmarshalJSON decodes a frame produced by MarshalJSON.
func (f *Frame) UnmarshalJSON(data []byte) error {
	var j frameJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*f = Frame{
		Terminal:     j.Terminal,
		Viewport:     j.Viewport,
		Cursor:       j.Cursor,
		Text:         rowsDeref(j.Text),
		FgColors:     rowsDeref(j.FgColors),
		BgColors:     rowsDeref(j.BgColors),
		ColorPalette: j.ColorPalette,
		Styles:       rowsDeref(j.Styles),
		StyleLegend:  j.StyleLegend,
		Bold:         rowsDeref(j.Bold),
		Italic:       rowsDeref(j.Italic),
		Underline:    rowsDeref(j.Underline),
	}
	return nil
}

// rowLayers returns pointers to every row-oriented layer field.
func (f *Frame) rowLayers() []*[]string {
	return []*[]string{&f.Text, &f.FgColors, &f.BgColors, &f.Styles, &f.Bold, &f.Italic, &f.Underline}
}

// RowCount returns the number of rows of the populated layers, or -1 if no
// row-oriented layer is populated.
func (f *Frame) RowCount() int {
	for _, rows := range f.rowLayers() {
		if *rows != nil {
			return len(*rows)
		}
	}
	return -1
}

// Validate checks that every populated row-oriented layer has the same
// number of rows.
func (f *Frame) Validate() error {
	n := f.RowCount()
	for _, rows := range f.rowLayers() {
		if *rows != nil && len(*rows) != n {
			return fmt.Errorf("row count mismatch: %d != %d", len(*rows), n)
		}
	}
	return nil
}

// compact keeps only the rows listed in keep, in every row-oriented layer.
func (f *Frame) compact(keep []int) {
	for _, rows := range f.rowLayers() {
		if *rows == nil {
			continue
		}
		kept := make([]string, len(keep))
		for i, idx := range keep {
			kept[i] = (*rows)[idx]
		}
		*rows = kept
	}
}

// nonEmptyRows returns the indices of text rows that are not blank.
func nonEmptyRows(text []string) []int {
	keep := make([]int, 0, len(text))
	for i, row := range text {
		if strings.TrimSpace(row) != "" {
			keep = append(keep, i)
		}
	}
	return keep
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithColorTable resolves indexed colors through table instead of DefaultPalette.
func WithColorTable(table *[256]color.RGBA) Option {
	return func(e *Encoder) {
		e.table = table
	}
}

// WithParseOptions sets the options used when raw lines are parsed.
func WithParseOptions(opts ...ParseOption) Option {
	return func(e *Encoder) {
		e.parseOpts = append(e.parseOpts, opts...)
	}
}

// Encoder turns screens into frames. It holds only configuration, so one
// Encoder can be shared by concurrent callers.
type Encoder struct {
	table     *[256]color.RGBA
	parseOpts []ParseOption
}

// NewEncoder creates an encoder with the given options.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{table: &DefaultPalette}
	for _, opt := range opts {
		opt(e)
	}
	if e.table == nil {
		e.table = &DefaultPalette
	}
	return e
}

var defaultEncoder = NewEncoder()

// Encode encodes screen with the default encoder.
func Encode(screen *Screen, req Request) (*Frame, error) {
	return defaultEncoder.Encode(screen, req)
}

// EncodeRaw parses raw lines and encodes them with the default encoder.
func EncodeRaw(size Size, cursor Cursor, raw []string, req Request) (*Frame, error) {
	return defaultEncoder.EncodeRaw(size, cursor, raw, req)
}

// ParseScreen builds a screen from raw escape-coded lines using the encoder's parse options.
func (e *Encoder) ParseScreen(size Size, cursor Cursor, raw []string) *Screen {
	return &Screen{
		Size:   size,
		Cursor: cursor,
		Lines:  ParseLines(raw, e.parseOpts...),
	}
}

// EncodeRaw parses raw lines and encodes the resulting screen.
func (e *Encoder) EncodeRaw(size Size, cursor Cursor, raw []string, req Request) (*Frame, error) {
	return e.Encode(e.ParseScreen(size, cursor, raw), req)
}

// Encode renders the requested layers of screen into a frame.
//
// With req.Compact, rows whose viewport text is blank are dropped from every
// layer; the text is computed for this even when LayerText is not requested.
// On error no frame is returned.
func (e *Encoder) Encode(screen *Screen, req Request) (*Frame, error) {
	if screen == nil {
		return nil, fmt.Errorf("%w: nil screen", ErrInvalidRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	vp := ComputeViewport(screen.Size, screen.Cursor, req.Region, req.AroundCursor)
	f := &Frame{
		Terminal: screen.Size,
		Viewport: vp,
	}

	var text []string
	if req.Layers.Has(LayerText) || req.Compact {
		text = EncodeText(screen.Lines, vp)
	}
	if req.Layers.Has(LayerText) {
		f.Text = text
	}

	if req.Layers.Has(LayerCursor) {
		c := EncodeCursor(screen.Cursor, vp)
		f.Cursor = &c
	}

	if req.Layers&LayerColors != 0 {
		colors, err := EncodeColors(screen.Lines, vp, req.Layers, e.table)
		if err != nil {
			return nil, fmt.Errorf("encode colors: %w", err)
		}
		f.FgColors = colors.Fg
		f.BgColors = colors.Bg
		f.ColorPalette = colors.Palette.Map()
	}

	if req.Layers.Has(LayerStyles) {
		f.Styles = EncodeStyles(screen.Lines, vp)
		f.StyleLegend = StyleLegend()
	}
	if req.Layers.Has(LayerBold) {
		f.Bold = EncodeAttr(screen.Lines, vp, AttrBold)
	}
	if req.Layers.Has(LayerItalic) {
		f.Italic = EncodeAttr(screen.Lines, vp, AttrItalic)
	}
	if req.Layers.Has(LayerUnderline) {
		f.Underline = EncodeAttr(screen.Lines, vp, AttrUnderline)
	}

	if req.Compact {
		f.compact(nonEmptyRows(text))
	}
	return f, nil
}
