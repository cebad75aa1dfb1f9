// Package tmux captures the visible screen of a tmux pane as a termframe.Screen.
package tmux

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	termframe "github.com/danielgatis/go-termframe"
)

// paneFormat asks display-message for the pane size and cursor position.
const paneFormat = "#{pane_width} #{pane_height} #{cursor_x} #{cursor_y}"

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec, including stderr in errors.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// Client captures one tmux pane. An empty Target means tmux's current pane.
type Client struct {
	Target       string
	Binary       string
	Run          Runner
	ParseOptions []termframe.ParseOption
}

var _ termframe.Source = (*Client)(nil)

// New creates a client for target using the tmux binary on PATH.
func New(target string, opts ...termframe.ParseOption) *Client {
	return &Client{
		Target:       target,
		Binary:       "tmux",
		Run:          ExecRunner,
		ParseOptions: opts,
	}
}

// run invokes a tmux subcommand; the target flag goes before positional arguments.
func (c *Client) run(ctx context.Context, sub string, args ...string) ([]byte, error) {
	full := []string{sub}
	if c.Target != "" {
		full = append(full, "-t", c.Target)
	}
	full = append(full, args...)
	bin := c.Binary
	if bin == "" {
		bin = "tmux"
	}
	run := c.Run
	if run == nil {
		run = ExecRunner
	}
	return run(ctx, bin, full...)
}

// PaneInfo returns the pane size and cursor position.
func (c *Client) PaneInfo(ctx context.Context) (termframe.Size, termframe.Cursor, error) {
	out, err := c.run(ctx, "display-message", "-p", paneFormat)
	if err != nil {
		return termframe.Size{}, termframe.Cursor{}, err
	}
	return parsePaneInfo(string(out))
}

func parsePaneInfo(s string) (termframe.Size, termframe.Cursor, error) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return termframe.Size{}, termframe.Cursor{}, fmt.Errorf("unexpected pane info %q", strings.TrimSpace(s))
	}
	var n [4]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return termframe.Size{}, termframe.Cursor{}, fmt.Errorf("unexpected pane info %q", strings.TrimSpace(s))
		}
		n[i] = v
	}
	return termframe.Size{Width: n[0], Height: n[1]}, termframe.Cursor{X: n[2], Y: n[3]}, nil
}

// CaptureLines returns the visible pane lines with SGR escapes and trailing spaces kept.
func (c *Client) CaptureLines(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "capture-pane", "-p", "-e", "-N")
	if err != nil {
		return nil, err
	}
	return splitLines(string(out)), nil
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Capture implements termframe.Source.
func (c *Client) Capture(ctx context.Context) (*termframe.Screen, error) {
	size, cursor, err := c.PaneInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("tmux pane info: %w", err)
	}
	raw, err := c.CaptureLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("tmux capture-pane: %w", err)
	}
	return &termframe.Screen{
		Size:   size,
		Cursor: cursor,
		Lines:  termframe.ParseLines(raw, c.ParseOptions...),
	}, nil
}
