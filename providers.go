package termframe

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Source supplies the current visible screen of a terminal.
// Implementations may block on I/O; ctx bounds that work.
type Source interface {
	// Capture returns a fresh snapshot of the visible screen.
	Capture(ctx context.Context) (*Screen, error)
}

// --- Static Source ---

// StaticSource always returns the same pre-structured screen.
type StaticSource struct {
	Screen *Screen
}

// Capture returns the wrapped screen.
func (s StaticSource) Capture(ctx context.Context) (*Screen, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Screen == nil {
		return nil, fmt.Errorf("static source: no screen")
	}
	return s.Screen, nil
}

// --- Raw Source ---

// RawSource holds raw escape-coded lines and parses them on capture.
type RawSource struct {
	Size    Size
	Cursor  Cursor
	Lines   []string
	Options []ParseOption
}

// Capture parses the raw lines into a screen.
func (s RawSource) Capture(ctx context.Context) (*Screen, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Screen{
		Size:   s.Size,
		Cursor: s.Cursor,
		Lines:  ParseLines(s.Lines, s.Options...),
	}, nil
}

// --- Reader Source ---

// InputFormat selects how a ReaderSource interprets its input.
type InputFormat string

const (
	// InputRaw is newline separated text with embedded SGR escapes.
	InputRaw InputFormat = "raw"
	// InputJSON is a JSON encoded Screen.
	InputJSON InputFormat = "json"
)

// ParseInputFormat validates an input format name.
func ParseInputFormat(s string) (InputFormat, error) {
	switch f := InputFormat(strings.ToLower(s)); f {
	case InputRaw, InputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown input format %q", s)
	}
}

// maxLineSize bounds a single raw input line.
const maxLineSize = 1 << 20

// ReaderSource reads one snapshot from R.
//
// For raw input a zero Size is derived from the input: the widest parsed line
// and the number of lines. For JSON input a zero Size or Cursor in the
// document is kept as is.
type ReaderSource struct {
	R       io.Reader
	Format  InputFormat
	Size    Size
	Cursor  Cursor
	Options []ParseOption
}

// Capture reads and parses the whole input.
func (s ReaderSource) Capture(ctx context.Context) (*Screen, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch s.Format {
	case InputJSON:
		var screen Screen
		if err := json.NewDecoder(s.R).Decode(&screen); err != nil {
			return nil, fmt.Errorf("decode screen: %w", err)
		}
		return &screen, nil

	case InputRaw, "":
		raw, err := readLines(s.R)
		if err != nil {
			return nil, fmt.Errorf("read lines: %w", err)
		}
		screen := &Screen{
			Size:   s.Size,
			Cursor: s.Cursor,
			Lines:  ParseLines(raw, s.Options...),
		}
		if screen.Size == (Size{}) {
			screen.Size = measure(screen.Lines)
		}
		return screen, nil

	default:
		return nil, fmt.Errorf("unknown input format %q", s.Format)
	}
}

func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// measure returns the smallest size that holds every line.
func measure(lines []Line) Size {
	size := Size{Height: len(lines)}
	for _, l := range lines {
		size.Width = max(size.Width, utf8.RuneCountInString(l.Text))
	}
	return size
}

// CaptureAndEncode captures a snapshot from src and encodes it with enc
// (the default encoder if nil).
func CaptureAndEncode(ctx context.Context, src Source, enc *Encoder, req Request) (*Frame, error) {
	if enc == nil {
		enc = defaultEncoder
	}
	screen, err := src.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return enc.Encode(screen, req)
}
