// Package guess infers the dialect and column schema of delimited text from a
// small sample of lines.
//
// A guess runs these stages in order, each filling only settings the caller
// left unset:
//
//	delimiter -> quote -> escape -> null_string -> preamble skip ->
//	comment_line_marker -> final tokenization -> trim / header -> columns
//
// No stage returns an error. A stage without signal leaves its setting unset
// or applies a fixed default; a malformed sample line is skipped; an unusable
// tokenizer configuration falls back to a naive split. The only failure is an
// empty result, reported by Guess returning false.
package guess
