package imgfmt

import (
	"image/color"
	"strings"
	"unicode/utf8"

	chroma "github.com/alecthomas/chroma/v2"
	"golang.org/x/text/unicode/norm"
)

// run is a piece of a line drawn with one style.
type run struct {
	text string

	colour    color.Color // nil for the default text colour
	bold      bool
	italic    bool
	underline bool
}

// line is a single line of code.
type line []run

// splitLines breaks tokens into lines of styled runs.
//
// Newlines are dropped, tabs are expanded to spaces,
// and text is normalized to NFC so that combining sequences
// draw with precomposed glyphs where the font has them.
// There's always at least one line.
func splitLines(style *chroma.Style, tokens []chroma.Token, tabWidth int) []line {
	var lines []line
	for _, toks := range chroma.SplitTokensIntoLines(tokens) {
		var (
			ln  line
			col int
		)
		for _, tok := range toks {
			text := strings.TrimRight(tok.Value, "\r\n")
			if text == "" {
				continue
			}

			text, col = expandTabs(norm.NFC.String(text), col, tabWidth)
			ln = append(ln, newRun(style, tok.Type, text))
		}
		lines = append(lines, ln)
	}

	if len(lines) == 0 {
		lines = append(lines, nil)
	}
	return lines
}

func newRun(style *chroma.Style, tt chroma.TokenType, text string) run {
	r := run{text: text}
	if style == nil {
		return r
	}

	entry := style.Get(tt)
	if entry.Colour.IsSet() {
		r.colour = toRGBA(entry.Colour)
	}
	r.bold = entry.Bold == chroma.Yes
	r.italic = entry.Italic == chroma.Yes
	r.underline = entry.Underline == chroma.Yes
	return r
}

// expandTabs replaces tabs in s with spaces up to the next tab stop.
// col is the column s starts at.
// Returns the expanded string and the column after it.
func expandTabs(s string, col, tabWidth int) (string, int) {
	if !strings.ContainsRune(s, '\t') {
		return s, col + utf8.RuneCountInString(s)
	}

	var sb strings.Builder
	for _, r := range s {
		if r != '\t' {
			sb.WriteRune(r)
			col++
			continue
		}

		n := tabWidth - col%tabWidth
		sb.WriteString(strings.Repeat(" ", n))
		col += n
	}
	return sb.String(), col
}
