// Package highlight picks Chroma lexers and styles for code snippets.
//
// Lexer resolution never fails.
// A missing or unknown language name,
// or a snippet Chroma can't classify,
// resolves to [PlainText].
package highlight
