package main

import (
	"bytes"
	"fmt"
	"time"

	"braces.dev/errtrace"
	chroma "github.com/alecthomas/chroma/v2"
	"github.com/charmbracelet/log"
	"go.abhg.dev/code2img/internal/artifact"
	"go.abhg.dev/code2img/internal/fonts"
	"go.abhg.dev/code2img/internal/highlight"
	"go.abhg.dev/code2img/internal/imgfmt"
)

// Fixed presentation of rendered images.
const (
	_fontSize = 32
	_imagePad = 20
	_linePad  = 6
)

// Store persists encoded images under their content keys.
type Store interface {
	Write(key string, data []byte) (path string, err error)
}

var (
	_ Store            = (*artifact.Store)(nil)
	_ chroma.Formatter = (*imgfmt.Formatter)(nil)
)

// newFormatter builds the image formatter used by code2img.
func newFormatter(fs *fonts.Set) *imgfmt.Formatter {
	return &imgfmt.Formatter{
		Fonts:    fs,
		FontSize: _fontSize,
		ImagePad: _imagePad,
		LinePad:  _linePad,
	}
}

// Renderer renders code snippets to images.
type Renderer struct {
	Log       *log.Logger // required
	Formatter chroma.Formatter
	Style     *chroma.Style
	Store     Store
}

// Render highlights code as lang and stores the resulting image,
// returning its path.
//
// An empty lang guesses the language from the code.
// Unknown languages are rendered as plain text.
// Requests with the same lang and the same code,
// ignoring trailing white space,
// always produce the same path.
func (r *Renderer) Render(code, lang string) (string, error) {
	start := time.Now()

	lexer, how := highlight.ResolveLexer(lang, code)
	code = artifact.Normalize(code)
	key := artifact.Key(lang, code)

	tokens, err := lexer.Lex(code)
	if err != nil {
		r.Log.Debug("Tokenizing failed, using plain text", "lexer", lexer.Name(), "error", err)
		lexer = highlight.PlainText
		tokens, err = lexer.Lex(code)
		if err != nil {
			return "", errtrace.Wrap(fmt.Errorf("tokenize: %w", err))
		}
	}
	r.Log.Debug("Selected lexer", "lang", lang, "lexer", lexer.Name(), "by", how, "key", key)

	var buff bytes.Buffer
	if err := r.Formatter.Format(&buff, r.Style, chroma.Literator(tokens...)); err != nil {
		return "", errtrace.Wrap(fmt.Errorf("render %v: %w", key, err))
	}

	path, err := r.Store.Write(key, buff.Bytes())
	if err != nil {
		return "", errtrace.Wrap(fmt.Errorf("store %v: %w", key, err))
	}

	r.Log.Debug("Wrote image",
		"path", path,
		"size", buff.Len(),
		"took", time.Since(start).Round(time.Millisecond))
	return path, nil
}
