package termframe

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Attrs is a bitmask of cell rendering attributes.
type Attrs uint8

const (
	AttrBold Attrs = 1 << iota
	AttrItalic
	AttrUnderline
	AttrStrike
	AttrBlink
	AttrInverse
	AttrInvisible
	AttrFaint
)

// Has returns true if every attribute in a is set.
func (s Attrs) Has(a Attrs) bool {
	return s&a == a
}

// Set returns s with a enabled.
func (s Attrs) Set(a Attrs) Attrs {
	return s | a
}

// Clear returns s with a disabled.
func (s Attrs) Clear(a Attrs) Attrs {
	return s &^ a
}

var attrNames = []struct {
	attr Attrs
	name string
}{
	{AttrBold, "bold"},
	{AttrItalic, "italic"},
	{AttrUnderline, "underline"},
	{AttrStrike, "strikethrough"},
	{AttrBlink, "blink"},
	{AttrInverse, "inverse"},
	{AttrInvisible, "invisible"},
	{AttrFaint, "faint"},
}

// String returns the set attribute names joined by "|", or "none".
func (s Attrs) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, n := range attrNames {
		if s.Has(n.attr) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Style is the attribute and color state applied to a span of text.
type Style struct {
	Attrs Attrs
	Fg    Color
	Bg    Color
}

// Run is a span of Repeat consecutive columns sharing one Style.
type Run struct {
	Repeat int
	Attrs  Attrs
	Fg     Color
	Bg     Color
}

// Style returns the style carried by the run.
func (r Run) Style() Style {
	return Style{Attrs: r.Attrs, Fg: r.Fg, Bg: r.Bg}
}

// Line is one screen row: its characters and the style runs covering them.
// Runs are expected to cover len(Columns()) columns but consumers tolerate a mismatch.
type Line struct {
	Text string `json:"text"`
	Runs []Run  `json:"runs,omitempty"`
}

// Columns returns the line's characters, one per column.
func (l Line) Columns() []rune {
	return []rune(l.Text)
}

// Coverage returns the number of columns described by the runs.
func (l Line) Coverage() int {
	n := 0
	for _, r := range l.Runs {
		if r.Repeat > 0 {
			n += r.Repeat
		}
	}
	return n
}

// StyleAt returns the style of column col, or the zero Style if no run covers it.
func (l Line) StyleAt(col int) Style {
	if col < 0 {
		return Style{}
	}
	for _, r := range l.Runs {
		if r.Repeat <= 0 {
			continue
		}
		if col < r.Repeat {
			return r.Style()
		}
		col -= r.Repeat
	}
	return Style{}
}

// Cursor is a 0-based cursor position (X is the column, Y the row).
type Cursor struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size holds terminal dimensions in cells.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Screen is a snapshot of the visible terminal: row 0 is the top line.
// Lines may be shorter than Size.Height; missing rows are treated as empty.
type Screen struct {
	Size   Size   `json:"size"`
	Cursor Cursor `json:"cursor"`
	Lines  []Line `json:"lines"`
}

// Line returns row, or an empty line if row is outside the captured lines.
func (s *Screen) Line(row int) Line {
	if row < 0 || row >= len(s.Lines) {
		return Line{}
	}
	return s.Lines[row]
}

// runJSON is the wire form of a Run: flat attribute booleans and optional colors.
type runJSON struct {
	Repeat        int             `json:"repeat"`
	Bold          bool            `json:"bold,omitempty"`
	Italic        bool            `json:"italic,omitempty"`
	Underline     bool            `json:"underline,omitempty"`
	Strikethrough bool            `json:"strikethrough,omitempty"`
	Blink         bool            `json:"blink,omitempty"`
	Inverse       bool            `json:"inverse,omitempty"`
	Invisible     bool            `json:"invisible,omitempty"`
	Faint         bool            `json:"faint,omitempty"`
	Fg            json.RawMessage `json:"fg,omitempty"`
	Bg            json.RawMessage `json:"bg,omitempty"`
}

func (j *runJSON) flags() []struct {
	v    *bool
	attr Attrs
} {
	return []struct {
		v    *bool
		attr Attrs
	}{
		{&j.Bold, AttrBold},
		{&j.Italic, AttrItalic},
		{&j.Underline, AttrUnderline},
		{&j.Strikethrough, AttrStrike},
		{&j.Blink, AttrBlink},
		{&j.Inverse, AttrInverse},
		{&j.Invisible, AttrInvisible},
		{&j.Faint, AttrFaint},
	}
}

// MarshalJSON encodes the run with flat attributes; default colors are omitted.
func (r Run) MarshalJSON() ([]byte, error) {
	j := runJSON{Repeat: r.Repeat}
	for _, f := range j.flags() {
		*f.v = r.Attrs.Has(f.attr)
	}
	var err error
	if !r.Fg.IsDefault() {
		if j.Fg, err = json.Marshal(r.Fg); err != nil {
			return nil, err
		}
	}
	if !r.Bg.IsDefault() {
		if j.Bg, err = json.Marshal(r.Bg); err != nil {
			return nil, err
		}
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes a run; missing fields default to no attributes and terminal-default colors.
func (r *Run) UnmarshalJSON(data []byte) error {
	var j runJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	out := Run{Repeat: j.Repeat}
	for _, f := range j.flags() {
		if *f.v {
			out.Attrs = out.Attrs.Set(f.attr)
		}
	}
	if len(j.Fg) > 0 {
		if err := json.Unmarshal(j.Fg, &out.Fg); err != nil {
			return fmt.Errorf("fg: %w", err)
		}
	}
	if len(j.Bg) > 0 {
		if err := json.Unmarshal(j.Bg, &out.Bg); err != nil {
			return fmt.Errorf("bg: %w", err)
		}
	}
	*r = out
	return nil
}

// MarshalJSON encodes a color as null (default), a number (indexed) or "#rrggbb" (true color).
func (c Color) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ColorIndexed:
		return json.Marshal(int(c.Index))
	case ColorRGB:
		return json.Marshal(RGBToHex(c.RGB))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, "default", an index 0-255 or "#rrggbb".
func (c *Color) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*c = DefaultColor()
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		if str == "" || str == "default" {
			*c = DefaultColor()
			return nil
		}
		if len(str) != 7 || str[0] != '#' {
			return fmt.Errorf("invalid color %q", str)
		}
		v, err := strconv.ParseUint(str[1:], 16, 32)
		if err != nil {
			return fmt.Errorf("invalid color %q: %w", str, err)
		}
		*c = TrueColor(uint8(v>>16), uint8(v>>8), uint8(v))
		return nil
	}
	var idx int
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("invalid color %s: %w", s, err)
	}
	if idx < 0 || idx > 255 {
		return fmt.Errorf("color index %d out of range", idx)
	}
	*c = IndexedColor(uint8(idx))
	return nil
}
