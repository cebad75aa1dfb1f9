package termframe

import (
	"errors"
	"fmt"
	"image/color"
)

// NoColorToken marks a cell with no explicit color. It is never assigned to a real color.
const NoColorToken = '0'

// PaletteTokens lists the tokens handed out to colors, in allocation order.
const PaletteTokens = "123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// PaletteCapacity is the number of distinct real colors one palette can hold.
const PaletteCapacity = len(PaletteTokens)

// ErrPaletteOverflow is matched (via errors.Is) by the error returned when a
// frame needs more distinct colors than PaletteCapacity.
var ErrPaletteOverflow = errors.New("palette overflow")

// PaletteOverflowError reports the first color that did not fit.
type PaletteOverflowError struct {
	Color string
}

func (e *PaletteOverflowError) Error() string {
	return fmt.Sprintf("palette overflow: %s would be color %d, capacity is %d", e.Color, PaletteCapacity+1, PaletteCapacity)
}

// Is makes errors.Is(err, ErrPaletteOverflow) succeed.
func (e *PaletteOverflowError) Is(target error) bool {
	return target == ErrPaletteOverflow
}

// PaletteBuilder assigns tokens to hex colors in first-seen order.
// It is the mutable first phase; Build freezes it into a Palette.
type PaletteBuilder struct {
	table  *[256]color.RGBA
	tokens map[string]byte
	order  []string
}

// NewPaletteBuilder creates an empty builder. Indexed colors added through
// AddColor resolve through table (DefaultPalette if nil).
func NewPaletteBuilder(table *[256]color.RGBA) *PaletteBuilder {
	return &PaletteBuilder{
		table:  table,
		tokens: make(map[string]byte),
	}
}

// Add registers hex if unseen. It fails with a *PaletteOverflowError once
// every token is taken; the builder is left unchanged in that case.
func (b *PaletteBuilder) Add(hex string) error {
	if _, ok := b.tokens[hex]; ok {
		return nil
	}
	if len(b.order) >= PaletteCapacity {
		return &PaletteOverflowError{Color: hex}
	}
	b.tokens[hex] = PaletteTokens[len(b.order)]
	b.order = append(b.order, hex)
	return nil
}

// AddColor registers c unless it is the terminal default.
func (b *PaletteBuilder) AddColor(c Color) error {
	rgba, ok := c.Resolve(b.table)
	if !ok {
		return nil
	}
	return b.Add(RGBToHex(rgba))
}

// Build returns the immutable palette. The builder must not be used afterwards.
func (b *PaletteBuilder) Build() *Palette {
	p := &Palette{
		table:  b.table,
		tokens: b.tokens,
		order:  b.order,
	}
	b.tokens, b.order = nil, nil
	return p
}

// Palette is a frozen bijection between hex colors and single-byte tokens.
type Palette struct {
	table  *[256]color.RGBA
	tokens map[string]byte
	order  []string
}

// Len returns the number of real colors in the palette.
func (p *Palette) Len() int {
	return len(p.order)
}

// Token returns the token for hex, or NoColorToken if hex is not in the palette.
func (p *Palette) Token(hex string) byte {
	if t, ok := p.tokens[hex]; ok {
		return t
	}
	return NoColorToken
}

// TokenFor returns the token for c; the terminal default maps to NoColorToken.
func (p *Palette) TokenFor(c Color) byte {
	rgba, ok := c.Resolve(p.table)
	if !ok {
		return NoColorToken
	}
	return p.Token(RGBToHex(rgba))
}

// Colors returns the hex colors in token order.
func (p *Palette) Colors() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Map returns token -> hex, with NoColorToken mapped to nil.
func (p *Palette) Map() map[string]*string {
	m := make(map[string]*string, len(p.order)+1)
	m[string(rune(NoColorToken))] = nil
	for i, hex := range p.order {
		h := hex
		m[string(PaletteTokens[i])] = &h
	}
	return m
}
