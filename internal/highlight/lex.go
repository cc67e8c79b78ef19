package highlight

import (
	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// PlainText is a [Lexer] that emits its input as a single text token.
var PlainText Lexer = newLexer(lexers.Fallback)

// Lexer analyzes source code and generates a stream of tokens.
type Lexer interface {
	// Name is the name of the underlying Chroma lexer.
	Name() string

	Lex(src string) ([]chroma.Token, error)
}

// chromaLexer builds a [Lexer] from a Chroma lexer.
type chromaLexer struct{ l chroma.Lexer }

func newLexer(l chroma.Lexer) *chromaLexer {
	return &chromaLexer{l: chroma.Coalesce(l)}
}

func (cl *chromaLexer) Name() string {
	return cl.l.Config().Name
}

// Lex lexically analyzes the given source code using Chroma.
func (cl *chromaLexer) Lex(src string) ([]chroma.Token, error) {
	return chroma.Tokenise(cl.l, nil, src)
}

// Resolution reports how [ResolveLexer] picked a lexer.
type Resolution int

const (
	// ByName means the language name matched a lexer name or alias.
	ByName Resolution = iota + 1

	// ByContent means no language was given
	// and the lexer was guessed from the source.
	ByContent

	// Fallback means nothing matched and PlainText was used.
	Fallback
)

func (r Resolution) String() string {
	switch r {
	case ByName:
		return "name"
	case ByContent:
		return "content"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// ResolveLexer picks a lexer for src.
//
// If lang is non-empty, it's looked up as a lexer name or alias.
// Otherwise, the lexer is guessed from src.
// Failure of either lookup, for any reason, yields [PlainText].
func ResolveLexer(lang, src string) (lexer Lexer, how Resolution) {
	defer func() {
		if recover() != nil {
			lexer, how = PlainText, Fallback
		}
	}()

	if lang != "" {
		if l := lexers.Get(lang); l != nil {
			return newLexer(l), ByName
		}
		return PlainText, Fallback
	}

	if l := lexers.Analyse(src); l != nil {
		return newLexer(l), ByContent
	}
	return PlainText, Fallback
}
