// Command termframe encodes a terminal screen snapshot into a compact layered frame.
//
// Usage:
//
//	tmux capture-pane -p -e | termframe -layers text,fgColors -compact
//	termframe -tmux main:0.1 -around 5 -layers text,cursor,styles
//	termframe -input json screen.json -png preview.png
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	termframe "github.com/danielgatis/go-termframe"
	"github.com/danielgatis/go-termframe/tmux"
)

type options struct {
	input      string
	tmuxTarget string
	size       string
	cursor     string
	layers     string
	region     string
	around     int
	compact    bool
	carryStyle bool
	pngPath    string
	fontPath   string
	fontSize   float64
	configPath string
	indent     bool
	verbose    bool
	timeout    time.Duration
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("termframe: ")

	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("termframe", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.input, "input", "raw", "snapshot format when reading a file or stdin: raw or json")
	fs.StringVar(&o.tmuxTarget, "tmux", "", "capture this tmux pane instead of reading input")
	fs.StringVar(&o.size, "size", "", "terminal size for raw input: WxH or auto")
	fs.StringVar(&o.cursor, "cursor", "0,0", "cursor position for raw input: X,Y")
	fs.StringVar(&o.layers, "layers", "", "comma-separated layers (text,cursor,fgColors,bgColors,styles,bold,italic,underline)")
	fs.StringVar(&o.region, "region", "", "region viewport: LEFT,TOP,WIDTH,HEIGHT")
	fs.IntVar(&o.around, "around", -1, "rows above and below the cursor to include")
	fs.BoolVar(&o.compact, "compact", false, "drop rows whose text is blank")
	fs.BoolVar(&o.carryStyle, "carry-style", false, "carry SGR state across lines")
	fs.StringVar(&o.pngPath, "png", "", "also write a PNG preview of the viewport")
	fs.StringVar(&o.fontPath, "font", "", "TrueType/OpenType font for the PNG preview")
	fs.Float64Var(&o.fontSize, "font-size", 14, "font size for -font")
	fs.StringVar(&o.configPath, "config", "", "TOML config file")
	fs.BoolVar(&o.indent, "indent", false, "pretty-print the frame JSON")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging to stderr")
	fs.DurationVar(&o.timeout, "timeout", 5*time.Second, "timeout for capturing the snapshot")
	if err := fs.Parse(args); err != nil {
		return err
	}

	vlog := log.New(io.Discard, "termframe: ", 0)
	if o.verbose {
		vlog.SetOutput(stderr)
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfgPath, explicit := o.configPath, o.configPath != ""
	if !explicit {
		cfgPath = DefaultConfigPath()
	}
	cfg, err := LoadConfig(cfgPath, explicit)
	if err != nil {
		return err
	}
	if !set["layers"] {
		o.layers = strings.Join(cfg.Layers, ",")
	}
	if !set["compact"] {
		o.compact = cfg.Compact
	}
	if !set["carry-style"] {
		o.carryStyle = cfg.CarryStyle
	}
	if !set["indent"] {
		o.indent = cfg.Indent
	}

	req, err := buildRequest(o, set)
	if err != nil {
		return err
	}

	table, err := cfg.ColorTable()
	if err != nil {
		return err
	}
	var parseOpts []termframe.ParseOption
	if o.carryStyle {
		parseOpts = append(parseOpts, termframe.WithStyleCarryOver())
	}
	enc := termframe.NewEncoder(termframe.WithColorTable(table), termframe.WithParseOptions(parseOpts...))

	src, closeSrc, err := buildSource(o, fs.Args(), stdin, parseOpts)
	if err != nil {
		return err
	}
	defer closeSrc()

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	screen, err := src.Capture(ctx)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	vlog.Printf("captured %dx%d screen, %d lines, cursor %d,%d",
		screen.Size.Width, screen.Size.Height, len(screen.Lines), screen.Cursor.X, screen.Cursor.Y)

	frame, err := enc.Encode(screen, req)
	if err != nil {
		return err
	}
	vlog.Printf("viewport %s %d,%d %dx%d, layers %s, %d rows",
		frame.Viewport.Mode, frame.Viewport.Left, frame.Viewport.Top, frame.Viewport.Width, frame.Viewport.Height,
		req.Layers, frame.RowCount())

	if o.pngPath != "" {
		if err := writePreview(o, screen, frame.Viewport, table); err != nil {
			return err
		}
		vlog.Printf("wrote preview %s", o.pngPath)
	}

	out := json.NewEncoder(stdout)
	if o.indent {
		out.SetIndent("", "  ")
	}
	return out.Encode(frame)
}

func buildRequest(o options, set map[string]bool) (termframe.Request, error) {
	layers, err := termframe.ParseLayers(strings.Split(o.layers, ","))
	if err != nil {
		return termframe.Request{}, err
	}
	req := termframe.Request{Layers: layers, Compact: o.compact}

	if o.region != "" {
		n, err := parseInts(o.region, 4)
		if err != nil {
			return termframe.Request{}, fmt.Errorf("-region: %w", err)
		}
		req.Region = &termframe.Region{Left: n[0], Top: n[1], Width: n[2], Height: n[3]}
	}
	if set["around"] {
		around := o.around
		req.AroundCursor = &around
	}
	if err := req.Validate(); err != nil {
		return termframe.Request{}, err
	}
	return req, nil
}

func buildSource(o options, args []string, stdin io.Reader, parseOpts []termframe.ParseOption) (termframe.Source, func(), error) {
	noop := func() {}

	if o.tmuxTarget != "" {
		if len(args) > 0 {
			return nil, noop, fmt.Errorf("-tmux cannot be combined with an input file")
		}
		return tmux.New(o.tmuxTarget, parseOpts...), noop, nil
	}

	format, err := termframe.ParseInputFormat(o.input)
	if err != nil {
		return nil, noop, err
	}

	var size termframe.Size
	switch o.size {
	case "":
	case "auto":
		w, h, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			return nil, noop, fmt.Errorf("-size auto: %w", err)
		}
		size = termframe.Size{Width: w, Height: h}
	default:
		if size, err = parseSize(o.size); err != nil {
			return nil, noop, fmt.Errorf("-size: %w", err)
		}
	}

	n, err := parseInts(o.cursor, 2)
	if err != nil {
		return nil, noop, fmt.Errorf("-cursor: %w", err)
	}
	cursor := termframe.Cursor{X: n[0], Y: n[1]}

	r, closeFn := stdin, noop
	switch len(args) {
	case 0:
		if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return nil, noop, fmt.Errorf("no input: pipe a snapshot, pass a file, or use -tmux")
		}
	case 1:
		f, err := os.Open(args[0])
		if err != nil {
			return nil, noop, err
		}
		r, closeFn = f, func() { f.Close() }
	default:
		return nil, noop, fmt.Errorf("expected at most one input file, got %d", len(args))
	}

	return termframe.ReaderSource{
		R:       r,
		Format:  format,
		Size:    size,
		Cursor:  cursor,
		Options: parseOpts,
	}, closeFn, nil
}

func writePreview(o options, screen *termframe.Screen, vp termframe.Viewport, table *[256]color.RGBA) error {
	cfg := &termframe.RenderConfig{Palette: table}
	if o.fontPath != "" {
		face, err := termframe.LoadFont(o.fontPath, o.fontSize)
		if err != nil {
			return fmt.Errorf("load font: %w", err)
		}
		cfg.Font = face
	}

	f, err := os.Create(o.pngPath)
	if err != nil {
		return err
	}
	if err := termframe.WritePNG(f, screen, vp, cfg); err != nil {
		f.Close()
		return fmt.Errorf("write preview: %w", err)
	}
	return f.Close()
}

// parseSize parses "WxH".
func parseSize(s string) (termframe.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return termframe.Size{}, fmt.Errorf("expected WxH, got %q", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || width <= 0 {
		return termframe.Size{}, fmt.Errorf("invalid width in %q", s)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height <= 0 {
		return termframe.Size{}, fmt.Errorf("invalid height in %q", s)
	}
	return termframe.Size{Width: width, Height: height}, nil
}

// parseInts parses exactly n comma-separated integers.
func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated integers, got %q", n, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", p)
		}
		out[i] = v
	}
	return out, nil
}
