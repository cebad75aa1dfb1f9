package termframe

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func testScreen() *Screen {
	enc := NewEncoder()
	return enc.ParseScreen(
		Size{Width: 10, Height: 4},
		Cursor{X: 3, Y: 2},
		[]string{
			"\x1b[1;31mhello\x1b[0m",
			"",
			"\x1b[4;44m$ ls\x1b[0m",
			"   ",
		},
	)
}

func TestEncode_TextRegion(t *testing.T) {
	screen := &Screen{
		Size:   Size{Width: 10, Height: 2},
		Cursor: Cursor{X: 3, Y: 0},
		Lines:  ParseLines([]string{"ABCDEFGHIJ", "KLMNOPQRST"}),
	}

	f, err := Encode(screen, Request{Layers: LayerText, Region: &Region{Left: 2, Top: 0, Width: 4, Height: 1}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(f.Text) != 1 || f.Text[0] != "CDEF" {
		t.Errorf("Text = %q, want [CDEF]", f.Text)
	}
	if f.Cursor != nil || f.FgColors != nil || f.Styles != nil {
		t.Error("unrequested layers should be nil")
	}
}

func TestEncode_AllLayersAligned(t *testing.T) {
	all, _ := ParseLayers([]string{"text", "cursor", "fgColors", "bgColors", "styles", "bold", "italic", "underline"})

	f, err := Encode(testScreen(), Request{Layers: all})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if f.RowCount() != 4 {
		t.Errorf("RowCount() = %d, want 4", f.RowCount())
	}

	if f.Text[0] != "hello" {
		t.Errorf("Text[0] = %q, want hello", f.Text[0])
	}
	if f.FgColors[0] != "1111100000" {
		t.Errorf("FgColors[0] = %q", f.FgColors[0])
	}
	if f.BgColors[2] != "2222000000" {
		t.Errorf("BgColors[2] = %q", f.BgColors[2])
	}
	if f.Styles[0] != "bbbbb....." || f.Styles[2] != "uuuu......" {
		t.Errorf("Styles = %q", f.Styles)
	}
	if f.Underline[2] != "XXXX      " {
		t.Errorf("Underline[2] = %q", f.Underline[2])
	}
	if f.Cursor == nil || f.Cursor.RelLeft != 3 || f.Cursor.RelTop != 2 {
		t.Errorf("Cursor = %+v", f.Cursor)
	}
	if len(f.StyleLegend) != 8 {
		t.Errorf("len(StyleLegend) = %d, want 8", len(f.StyleLegend))
	}
	if len(f.ColorPalette) != 3 {
		t.Errorf("ColorPalette = %v, want 0,1,2", f.ColorPalette)
	}
}

func TestEncode_Compact(t *testing.T) {
	f, err := Encode(testScreen(), Request{Layers: LayerText | LayerBold, Compact: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := []string{"hello", "$ ls"}
	if len(f.Text) != len(want) {
		t.Fatalf("Text = %q, want %q", f.Text, want)
	}
	for i := range want {
		if f.Text[i] != want[i] {
			t.Errorf("Text[%d] = %q, want %q", i, f.Text[i], want[i])
		}
	}
	if len(f.Bold) != 2 || f.Bold[0] != "XXXXX     " || f.Bold[1] != "          " {
		t.Errorf("Bold = %q", f.Bold)
	}
}

func TestEncode_CompactWithoutText(t *testing.T) {
	f, err := Encode(testScreen(), Request{Layers: LayerStyles, Compact: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if f.Text != nil {
		t.Errorf("Text = %q, want nil", f.Text)
	}
	if len(f.Styles) != 2 || f.Styles[0] != "bbbbb....." || f.Styles[1] != "uuuu......" {
		t.Errorf("Styles = %q", f.Styles)
	}
}

func TestEncode_CompactAllBlank(t *testing.T) {
	screen := &Screen{Size: Size{Width: 3, Height: 2}, Lines: ParseLines([]string{"", "  "})}
	f, err := Encode(screen, Request{Layers: LayerText | LayerFgColors, Compact: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if f.Text == nil || len(f.Text) != 0 || f.FgColors == nil || len(f.FgColors) != 0 {
		t.Errorf("Text = %#v, FgColors = %#v, want empty non-nil", f.Text, f.FgColors)
	}
}

func TestEncode_PaletteOverflow(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 62; i++ {
		fmt.Fprintf(&b, "\x1b[38;5;%dm#", 16+i)
	}
	screen := &Screen{Size: Size{Width: 62, Height: 1}, Lines: ParseLines([]string{b.String()})}

	f, err := Encode(screen, Request{Layers: LayerText | LayerFgColors})
	if !errors.Is(err, ErrPaletteOverflow) {
		t.Fatalf("Encode = %v, want ErrPaletteOverflow", err)
	}
	if f != nil {
		t.Errorf("Encode returned a frame on overflow: %+v", f)
	}
}

func TestEncode_ConflictingViewport(t *testing.T) {
	_, err := Encode(testScreen(), Request{Layers: LayerText, Region: &Region{Width: 1, Height: 1}, AroundCursor: intPtr(1)})
	if !errors.Is(err, ErrConflictingViewport) {
		t.Errorf("Encode = %v, want ErrConflictingViewport", err)
	}
}

func TestEncode_InvalidRequest(t *testing.T) {
	if _, err := Encode(testScreen(), Request{AroundCursor: intPtr(-1)}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("negative aroundCursor: %v, want ErrInvalidRequest", err)
	}
	if _, err := Encode(nil, Request{}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("nil screen: %v, want ErrInvalidRequest", err)
	}
}

func TestEncode_NoLayers(t *testing.T) {
	f, err := Encode(testScreen(), Request{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if f.RowCount() != -1 {
		t.Errorf("RowCount() = %d, want -1", f.RowCount())
	}
	if f.Viewport.Mode != ViewportFull || f.Terminal != (Size{Width: 10, Height: 4}) {
		t.Errorf("Viewport = %+v, Terminal = %+v", f.Viewport, f.Terminal)
	}
}

func TestEncoder_WithColorTable(t *testing.T) {
	table := DefaultPalette
	table[1].R, table[1].G, table[1].B = 0x11, 0x22, 0x33

	enc := NewEncoder(WithColorTable(&table))
	f, err := enc.EncodeRaw(Size{Width: 2, Height: 1}, Cursor{}, []string{"\x1b[31mAB"}, Request{Layers: LayerFgColors})
	if err != nil {
		t.Fatalf("EncodeRaw: %v", err)
	}
	if hex := f.ColorPalette["1"]; hex == nil || *hex != "#112233" {
		t.Errorf("ColorPalette[1] = %v, want #112233", hex)
	}
}

func TestEncoder_WithParseOptions(t *testing.T) {
	enc := NewEncoder(WithParseOptions(WithStyleCarryOver()))
	f, err := enc.EncodeRaw(Size{Width: 1, Height: 2}, Cursor{}, []string{"\x1b[1mA", "B"}, Request{Layers: LayerBold})
	if err != nil {
		t.Fatalf("EncodeRaw: %v", err)
	}
	if f.Bold[1] != "X" {
		t.Errorf("Bold[1] = %q, want X", f.Bold[1])
	}
}

func TestFrameJSON(t *testing.T) {
	f, err := Encode(testScreen(), Request{Layers: LayerText | LayerCursor | LayerFgColors | LayerStyles})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"terminal", "viewport", "cursor", "text", "fgColors", "colorPalette", "styles", "styleLegend"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	for _, key := range []string{"bgColors", "bold", "italic", "underline"} {
		if _, ok := m[key]; ok {
			t.Errorf("unexpected key %q in %s", key, data)
		}
	}
	if !strings.Contains(string(data), `"0":null`) {
		t.Errorf("colorPalette should map 0 to null: %s", data)
	}
	if !strings.Contains(string(data), `"relLeft":3`) {
		t.Errorf("cursor should use relLeft: %s", data)
	}
	if !strings.Contains(string(data), `"mode":"Full"`) {
		t.Errorf("viewport should carry mode: %s", data)
	}

	var back Frame
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal Frame: %v", err)
	}
	if back.RowCount() != f.RowCount() || back.Text[0] != "hello" || back.BgColors != nil {
		t.Errorf("round trip = %+v", back)
	}
}

func TestFrameJSON_EmptyViewportKeepsLayers(t *testing.T) {
	f, err := Encode(testScreen(), Request{Layers: LayerText | LayerBold, Region: &Region{Width: 0, Height: 5}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"text":[]`) || !strings.Contains(string(data), `"bold":[]`) {
		t.Errorf("requested layers should serialize as []: %s", data)
	}
}

func TestFrameValidate_Mismatch(t *testing.T) {
	f := &Frame{Text: []string{"a", "b"}, Bold: []string{"X"}}
	if err := f.Validate(); err == nil {
		t.Error("Validate() = nil, want row count mismatch")
	}
}
