package termframe

import (
	"image/color"
	"testing"
)

func TestIndexToRGB(t *testing.T) {
	tests := []struct {
		index uint8
		want  color.RGBA
	}{
		{0, color.RGBA{0, 0, 0, 255}},
		{1, color.RGBA{205, 49, 49, 255}},
		{15, color.RGBA{233, 235, 235, 255}},
		{16, color.RGBA{0, 0, 0, 255}},
		{21, color.RGBA{0, 0, 255, 255}},
		{196, color.RGBA{255, 0, 0, 255}},
		{231, color.RGBA{255, 255, 255, 255}},
		{232, color.RGBA{8, 8, 8, 255}},
		{244, color.RGBA{128, 128, 128, 255}},
		{255, color.RGBA{238, 238, 238, 255}},
	}

	for _, tt := range tests {
		if got := IndexToRGB(tt.index); got != tt.want {
			t.Errorf("IndexToRGB(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}
}

func TestIndexToRGB_Cube(t *testing.T) {
	levels := []uint8{0, 95, 135, 175, 215, 255}
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				idx := uint8(16 + 36*r + 6*g + b)
				want := color.RGBA{levels[r], levels[g], levels[b], 255}
				if got := IndexToRGB(idx); got != want {
					t.Fatalf("IndexToRGB(%d) = %v, want %v", idx, got, want)
				}
			}
		}
	}
}

func TestDefaultPalette(t *testing.T) {
	for i := 0; i < 256; i++ {
		if DefaultPalette[i] != IndexToRGB(uint8(i)) {
			t.Fatalf("DefaultPalette[%d] = %v, want %v", i, DefaultPalette[i], IndexToRGB(uint8(i)))
		}
	}
}

func TestRGBToHex(t *testing.T) {
	tests := []struct {
		c    color.RGBA
		want string
	}{
		{color.RGBA{0, 0, 0, 255}, "#000000"},
		{color.RGBA{255, 128, 1, 0}, "#ff8001"},
		{color.RGBA{205, 49, 49, 255}, "#cd3131"},
	}

	for _, tt := range tests {
		if got := RGBToHex(tt.c); got != tt.want {
			t.Errorf("RGBToHex(%v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestColorResolve(t *testing.T) {
	if _, ok := DefaultColor().Resolve(nil); ok {
		t.Error("default color should not resolve")
	}

	got, ok := IndexedColor(1).Resolve(nil)
	if !ok || got != DefaultPalette[1] {
		t.Errorf("IndexedColor(1).Resolve(nil) = %v, %v, want %v, true", got, ok, DefaultPalette[1])
	}

	var table [256]color.RGBA
	table[1] = color.RGBA{1, 2, 3, 255}
	got, _ = IndexedColor(1).Resolve(&table)
	if got != table[1] {
		t.Errorf("IndexedColor(1).Resolve(custom) = %v, want %v", got, table[1])
	}

	got, ok = TrueColor(10, 20, 30).Resolve(nil)
	if !ok || got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("TrueColor.Resolve = %v, %v", got, ok)
	}
}

func TestColorString(t *testing.T) {
	tests := []struct {
		c    Color
		want string
	}{
		{DefaultColor(), "default"},
		{IndexedColor(42), "idx:42"},
		{TrueColor(0xab, 0xcd, 0xef), "#abcdef"},
	}

	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestColorIsDefault(t *testing.T) {
	var zero Color
	if !zero.IsDefault() {
		t.Error("zero Color should be the default color")
	}
	if IndexedColor(0).IsDefault() {
		t.Error("IndexedColor(0) should not be the default color")
	}
}
