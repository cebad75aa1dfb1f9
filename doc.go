// Package termframe encodes a captured terminal screen into a compact,
// layered, row-aligned frame suitable for transport to clients with a limited
// budget, such as language models reading what a terminal shows.
//
// The package turns raw captured lines with embedded SGR escape sequences into
// structured styled lines, selects a viewport, and emits only the layers a
// caller asks for:
//   - Plain text
//   - Cursor position (absolute and viewport relative)
//   - Foreground and background colors, one character per cell against a
//     shared palette of at most 61 colors
//   - A combined bold/italic/underline style layer with a legend
//   - Separate bold, italic and underline masks
//
// # Quick Start
//
// Encode raw captured lines:
//
//	frame, err := termframe.EncodeRaw(
//	    termframe.Size{Width: 80, Height: 24},
//	    termframe.Cursor{X: 2, Y: 1},
//	    []string{"\x1b[31mred\x1b[0m plain", "$ "},
//	    termframe.Request{Layers: termframe.LayerText | termframe.LayerFgColors},
//	)
//	if err != nil {
//	    return err
//	}
//	json.NewEncoder(os.Stdout).Encode(frame)
//
// # Architecture
//
// The package is organized around these core types:
//
//   - [Screen]: Terminal size, cursor and structured [Line] values
//   - [Line]: Visible text plus the [Run] sequence covering it
//   - [Viewport]: The rectangle of the screen being encoded
//   - [Palette]: Color to single-character token mapping
//   - [Encoder]: Configuration shared by every encode call
//   - [Frame]: The encoded result
//
// # Parsing
//
// [ParseLine] strips every escape sequence from a raw line and applies the SGR
// ones to a running style, producing one run per stretch of visible text.
// Malformed SGR parameters are tolerated. Style resets at each line unless
// [WithStyleCarryOver] is passed to [ParseLines].
//
// # Viewports
//
// [ComputeViewport] picks the region, the rows around the cursor, or the full
// screen, in that order of priority. A [Request] that sets both a region and
// an around-cursor distance is rejected with [ErrConflictingViewport].
//
// # Colors
//
// Indexed colors resolve through a 256-entry table (see [DefaultPalette] and
// [WithColorTable]); true colors pass through unchanged. Colors are
// deduplicated by their "#rrggbb" value and assigned tokens in first-seen
// order. A frame needing more than [PaletteCapacity] colors fails with
// [ErrPaletteOverflow] and produces no partial output.
//
// # Compaction
//
// With Request.Compact, rows whose viewport text is blank are removed from
// every row-oriented layer at the same indices, so all layers stay aligned.
//
// # Sources
//
// Captures come from a [Source]. The package provides [StaticSource],
// [RawSource] and [ReaderSource]; the tmux subpackage captures a live pane.
//
//	src := termframe.ReaderSource{R: os.Stdin, Format: termframe.InputRaw}
//	frame, err := termframe.CaptureAndEncode(ctx, src, nil, req)
//
// # Previews
//
// [Render] and [WritePNG] rasterize the viewport of a screen for debugging,
// using [golang.org/x/image/font/basicfont] or a font loaded with [LoadFont].
//
// # Thread Safety
//
// An [Encoder] holds only configuration and is safe for concurrent use. Each
// encode call builds its own palette.
package termframe
