package termframe

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/danielgatis/go-ansicode"
)

// escapePattern matches CSI sequences, OSC strings (BEL or ST terminated),
// DCS/SOS/PM/APC strings and two-byte escapes (with optional intermediates).
var escapePattern = regexp.MustCompile(`\x1b(?:\[[0-?]*[ -/]*[@-~]|\][^\x07\x1b]*(?:\x07|\x1b\\)|[PX^_][^\x1b]*\x1b\\|[ -/]*[0-Z\\-~])`)

// sgrPattern matches a complete Select Graphic Rendition sequence.
var sgrPattern = regexp.MustCompile(`^\x1b\[[0-9;:]*m$`)

// sgrHandler receives SGR attributes from the ansicode decoder.
// The decoder is only ever fed single-code SGR sequences built by sgrGroups,
// so SetTerminalCharAttribute is the only handler method it reaches; the
// embedded Handler stays nil.
type sgrHandler struct {
	ansicode.Handler
	style Style
}

// SetTerminalCharAttribute applies one SGR attribute to the accumulated style.
func (h *sgrHandler) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {
	h.style = applyCharAttribute(h.style, attr)
}

func applyCharAttribute(s Style, attr ansicode.TerminalCharAttribute) Style {
	switch attr.Attr {
	case ansicode.CharAttributeReset:
		return Style{}

	case ansicode.CharAttributeBold:
		s.Attrs = s.Attrs.Set(AttrBold)

	case ansicode.CharAttributeDim:
		s.Attrs = s.Attrs.Set(AttrFaint)

	case ansicode.CharAttributeItalic:
		s.Attrs = s.Attrs.Set(AttrItalic)

	case ansicode.CharAttributeUnderline,
		ansicode.CharAttributeDoubleUnderline,
		ansicode.CharAttributeCurlyUnderline,
		ansicode.CharAttributeDottedUnderline,
		ansicode.CharAttributeDashedUnderline:
		s.Attrs = s.Attrs.Set(AttrUnderline)

	case ansicode.CharAttributeBlinkSlow, ansicode.CharAttributeBlinkFast:
		s.Attrs = s.Attrs.Set(AttrBlink)

	case ansicode.CharAttributeReverse:
		s.Attrs = s.Attrs.Set(AttrInverse)

	case ansicode.CharAttributeHidden:
		s.Attrs = s.Attrs.Set(AttrInvisible)

	case ansicode.CharAttributeStrike:
		s.Attrs = s.Attrs.Set(AttrStrike)

	case ansicode.CharAttributeCancelBold:
		s.Attrs = s.Attrs.Clear(AttrBold)

	case ansicode.CharAttributeCancelBoldDim:
		s.Attrs = s.Attrs.Clear(AttrBold | AttrFaint)

	case ansicode.CharAttributeCancelItalic:
		s.Attrs = s.Attrs.Clear(AttrItalic)

	case ansicode.CharAttributeCancelUnderline:
		s.Attrs = s.Attrs.Clear(AttrUnderline)

	case ansicode.CharAttributeCancelBlink:
		s.Attrs = s.Attrs.Clear(AttrBlink)

	case ansicode.CharAttributeCancelReverse:
		s.Attrs = s.Attrs.Clear(AttrInverse)

	case ansicode.CharAttributeCancelHidden:
		s.Attrs = s.Attrs.Clear(AttrInvisible)

	case ansicode.CharAttributeCancelStrike:
		s.Attrs = s.Attrs.Clear(AttrStrike)

	case ansicode.CharAttributeForeground:
		s.Fg = attributeColor(attr)

	case ansicode.CharAttributeBackground:
		s.Bg = attributeColor(attr)
	}
	return s
}

// attributeColor converts the color carried by an SGR attribute.
// Named colors 0-15 are the standard palette entries; the named
// foreground/background (SGR 39/49) and anything else are the terminal default.
func attributeColor(attr ansicode.TerminalCharAttribute) Color {
	if attr.RGBColor != nil {
		return TrueColor(attr.RGBColor.R, attr.RGBColor.G, attr.RGBColor.B)
	}

	if attr.IndexedColor != nil {
		return IndexedColor(uint8(attr.IndexedColor.Index))
	}

	if attr.NamedColor != nil {
		if n := int(*attr.NamedColor); n >= 0 && n < 16 {
			return IndexedColor(uint8(n))
		}
	}

	return DefaultColor()
}

// ParseOption configures ParseLines.
type ParseOption func(*parseConfig)

type parseConfig struct {
	carryOver bool
}

// WithStyleCarryOver keeps the SGR state at the end of a line for the next
// one, instead of resetting it at every line boundary.
func WithStyleCarryOver() ParseOption {
	return func(c *parseConfig) {
		c.carryOver = true
	}
}

// ParseLine converts one raw line containing SGR escapes into a structured line.
// Style starts from the terminal default.
func ParseLine(raw string) Line {
	line, _ := ParseLineFrom(raw, Style{})
	return line
}

// ParseLineFrom parses raw starting from the given style and returns the
// structured line together with the style in effect at its end.
//
// Every visible text segment produces one run carrying the style in effect
// before it. Unknown SGR codes and truncated extended colors are ignored;
// non-SGR escape sequences are dropped from the text.
func ParseLineFrom(raw string, start Style) (Line, Style) {
	h := &sgrHandler{style: start}
	var dec *ansicode.Decoder

	var text strings.Builder
	var runs []Run

	emit := func(segment string) {
		segment = visibleText(segment)
		n := utf8.RuneCountInString(segment)
		if n == 0 {
			return
		}
		text.WriteString(segment)
		runs = append(runs, Run{
			Repeat: n,
			Attrs:  h.style.Attrs,
			Fg:     h.style.Fg,
			Bg:     h.style.Bg,
		})
	}

	pos := 0
	for _, loc := range escapePattern.FindAllStringIndex(raw, -1) {
		emit(raw[pos:loc[0]])
		seq := raw[loc[0]:loc[1]]
		if sgrPattern.MatchString(seq) {
			if dec == nil {
				dec = ansicode.NewDecoder(h)
			}
			for _, group := range sgrGroups(seq[2 : len(seq)-1]) {
				_, _ = dec.Write([]byte("\x1b[" + group + "m"))
			}
		}
		pos = loc[1]
	}
	emit(raw[pos:])

	line := Line{Text: text.String(), Runs: runs}
	if len(line.Runs) == 0 && line.Text != "" {
		line.Runs = []Run{{Repeat: utf8.RuneCountInString(line.Text)}}
	}
	return line, h.style
}

// ParseLines parses a block of raw lines. By default each line starts from
// the terminal default style; see WithStyleCarryOver.
func ParseLines(raw []string, opts ...ParseOption) []Line {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	lines := make([]Line, len(raw))
	var style Style
	for i, r := range raw {
		if !cfg.carryOver {
			style = Style{}
		}
		lines[i], style = ParseLineFrom(r, style)
	}
	return lines
}

// visibleText drops control characters that do not occupy a column.
// Tabs become a single space.
func visibleText(s string) string {
	clean := true
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c == 0x7f {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t':
			b.WriteByte(' ')
		case r < 0x20 || r == 0x7f:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sgrGroups splits SGR parameters into one group per code, in order, so each
// code is decoded on its own. An empty parameter list is a reset.
//
// Extended colors (38/48/58) keep their arguments in the group; a group whose
// color arguments are missing or out of range is dropped, as is any
// non-numeric parameter. Underline colors (58) are not tracked and are
// dropped too. 21 (double underline) is decoded as a plain underline.
func sgrGroups(params string) []string {
	if params == "" {
		return []string{"0"}
	}

	fields := strings.Split(params, ";")
	groups := make([]string, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if f == "" {
			groups = append(groups, "0")
			continue
		}

		if strings.Contains(f, ":") {
			if g, ok := colonGroup(f); ok {
				groups = append(groups, g)
			}
			continue
		}

		code, ok := sgrParam(f, 1<<16)
		if !ok {
			continue
		}
		switch code {
		case 38, 48, 58:
			args, n, ok := extendedColor(fields[i+1:])
			i += n
			if ok && code != 58 {
				groups = append(groups, strconv.Itoa(code)+";"+args)
			}
		case 21:
			groups = append(groups, "4")
		default:
			groups = append(groups, strconv.Itoa(code))
		}
	}
	return groups
}

// extendedColor reads the arguments following 38/48/58: "5;N" or "2;R;G;B".
// It returns the normalized arguments, the number of fields consumed and
// whether the color is complete and in range.
func extendedColor(fields []string) (string, int, bool) {
	if len(fields) == 0 {
		return "", 0, false
	}
	mode, ok := sgrParam(fields[0], 255)
	if !ok {
		return "", 1, false
	}

	var want int
	switch mode {
	case 5:
		want = 1
	case 2:
		want = 3
	default:
		return "", 1, false
	}

	if len(fields) < 1+want {
		return "", len(fields), false
	}
	parts := []string{strconv.Itoa(mode)}
	for _, f := range fields[1 : 1+want] {
		v, ok := sgrParam(f, 255)
		if !ok {
			return "", 1 + want, false
		}
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ";"), 1 + want, true
}

// colonGroup handles ITU T.416 sub-parameter forms such as "4:3",
// "38:5:N", "38:2:R:G:B" and "38:2:CS:R:G:B".
func colonGroup(f string) (string, bool) {
	sub := strings.Split(f, ":")
	code, ok := sgrParam(sub[0], 1<<16)
	if !ok {
		return "", false
	}

	switch code {
	case 4:
		// 4:0 is "no underline", any other style is an underline.
		if style, ok := sgrParam(sub[1], 1<<16); ok && style == 0 {
			return "24", true
		}
		return "4", true
	case 38, 48:
		args := sub[1:]
		// Drop the color space id of 38:2:CS:R:G:B.
		if len(args) == 5 && args[0] == "2" {
			args = append([]string{"2"}, args[2:]...)
		}
		ext, n, ok := extendedColor(args)
		if !ok || n != len(args) {
			return "", false
		}
		return strconv.Itoa(code) + ";" + ext, true
	case 58:
		return "", false
	default:
		return strconv.Itoa(code), true
	}
}

// sgrParam parses a decimal parameter in [0, limit].
func sgrParam(s string, limit int) (int, bool) {
	if s == "" || len(s) > 5 {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v > limit {
		return 0, false
	}
	return v, true
}
