package termframe

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

func TestRender_Size(t *testing.T) {
	screen := &Screen{
		Size:  Size{Width: 4, Height: 2},
		Lines: ParseLines([]string{"ab", "cd"}),
	}
	img := Render(screen, Viewport{Width: 4, Height: 2}, &RenderConfig{CellWidth: 5, CellHeight: 10, HideCursor: true})

	b := img.Bounds()
	if b.Dx() != 20 || b.Dy() != 20 {
		t.Errorf("image size = %dx%d, want 20x20", b.Dx(), b.Dy())
	}
}

func TestRender_DefaultFont(t *testing.T) {
	screen := &Screen{Size: Size{Width: 3, Height: 1}, Lines: ParseLines([]string{"abc"})}
	img := Render(screen, Viewport{Width: 3, Height: 1}, nil)

	// basicfont.Face7x13 is 7x13.
	b := img.Bounds()
	if b.Dx() != 21 || b.Dy() != 13 {
		t.Errorf("image size = %dx%d, want 21x13", b.Dx(), b.Dy())
	}
}

func TestRender_Background(t *testing.T) {
	screen := &Screen{Size: Size{Width: 2, Height: 1}, Lines: ParseLines([]string{"\x1b[41m \x1b[0m "})}
	img := Render(screen, Viewport{Width: 2, Height: 1}, &RenderConfig{CellWidth: 4, CellHeight: 4, HideCursor: true})

	if got := img.RGBAAt(1, 1); got != DefaultPalette[1] {
		t.Errorf("red cell = %v, want %v", got, DefaultPalette[1])
	}
	if got := img.RGBAAt(5, 1); got != DefaultBackground {
		t.Errorf("default cell = %v, want %v", got, DefaultBackground)
	}
}

func TestRender_Inverse(t *testing.T) {
	screen := &Screen{Size: Size{Width: 1, Height: 1}, Lines: ParseLines([]string{"\x1b[7m "})}
	img := Render(screen, Viewport{Width: 1, Height: 1}, &RenderConfig{CellWidth: 4, CellHeight: 4, HideCursor: true})

	if got := img.RGBAAt(0, 0); got != DefaultForeground {
		t.Errorf("inverse cell = %v, want %v", got, DefaultForeground)
	}
}

func TestRender_Cursor(t *testing.T) {
	bg := color.RGBA{10, 20, 30, 255}
	screen := &Screen{Size: Size{Width: 2, Height: 1}, Cursor: Cursor{X: 1, Y: 0}}
	img := Render(screen, Viewport{Width: 2, Height: 1}, &RenderConfig{CellWidth: 4, CellHeight: 4, DefaultBG: &bg})

	if got := img.RGBAAt(0, 0); got != bg {
		t.Errorf("plain cell = %v, want %v", got, bg)
	}
	want := color.RGBA{245, 235, 225, 255}
	if got := img.RGBAAt(5, 2); got != want {
		t.Errorf("cursor cell = %v, want %v", got, want)
	}
}

func TestRender_EmptyViewport(t *testing.T) {
	img := Render(&Screen{}, Viewport{}, nil)
	if !img.Bounds().Empty() {
		t.Errorf("bounds = %v, want empty", img.Bounds())
	}
}

func TestWritePNG(t *testing.T) {
	screen := &Screen{Size: Size{Width: 3, Height: 2}, Lines: ParseLines([]string{"\x1b[1;32mok"})}

	var buf bytes.Buffer
	if err := WritePNG(&buf, screen, Viewport{Width: 3, Height: 2}, nil); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 21 || b.Dy() != 26 {
		t.Errorf("decoded size = %dx%d, want 21x26", b.Dx(), b.Dy())
	}
}

func TestLoadFontFromBytes_Invalid(t *testing.T) {
	if _, err := LoadFontFromBytes([]byte("not a font"), 12); err == nil {
		t.Error("LoadFontFromBytes(garbage) should fail")
	}
}
