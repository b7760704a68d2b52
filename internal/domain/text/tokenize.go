// Package text provides the shared tokenizer used for both seed phrases and
// post bodies, so comparisons are always apples-to-apples.
package text

import (
	"regexp"
	"strings"
)

// wordRegex extracts tokens: runs of Unicode letters/digits, optionally
// joined by word-internal apostrophes or hyphens ("i-rec", "don't").
// Everything else is treated as punctuation and dropped.
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}]+(?:['-][\p{L}\p{N}]+)*`)

// Tokenize normalizes raw text into an ordered token sequence: lower-case,
// punctuation stripped, whitespace collapsed. Pure and deterministic.
// Input with no letters or digits yields an empty (nil) slice.
func Tokenize(raw string) []string {
	return wordRegex.FindAllString(strings.ToLower(raw), -1)
}

// Join renders a token sequence back into a single-space-separated string,
// the canonical form used for fuzzy ratio comparison.
func Join(tokens []string) string {
	return strings.Join(tokens, " ")
}
