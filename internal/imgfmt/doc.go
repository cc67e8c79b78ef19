// Package imgfmt implements a Chroma formatter that draws
// highlighted source code into a PNG image.
//
//	it, _ := lexer.Tokenise(nil, src)
//	err := (&imgfmt.Formatter{FontSize: 32}).Format(w, style, it)
//
// The image is sized to fit the code:
// one row per line and as wide as the longest line,
// surrounded by ImagePad pixels on every side.
// Colours and font weights come from the Chroma style.
package imgfmt
