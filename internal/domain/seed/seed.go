// Package seed models operator-submitted search phrases.
package seed

import (
	"strings"

	"github.com/huntline/phrasehound/internal/domain"
	"github.com/huntline/phrasehound/internal/domain/text"
)

// Phrase is one seed phrase: the line as the operator typed it plus the
// normalized token sequence derived from it. A Phrase always carries at
// least one token.
type Phrase struct {
	raw    string
	tokens []string
}

// New normalizes a single operator line into a Phrase.
// A line that yields zero tokens is rejected with domain.ErrInvalidSeed.
func New(raw string) (Phrase, error) {
	tokens := text.Tokenize(raw)
	if len(tokens) == 0 {
		return Phrase{}, domain.ErrInvalidSeed
	}

	return Phrase{raw: strings.TrimSpace(raw), tokens: tokens}, nil
}

// Raw returns the trimmed operator line.
func (p Phrase) Raw() string { return p.raw }

// Tokens returns the normalized token sequence.
func (p Phrase) Tokens() []string { return p.tokens }

// Canonical returns the normalized form, tokens joined by single spaces.
func (p Phrase) Canonical() string { return text.Join(p.tokens) }

// ParseLines splits an operator message into phrases, one per line.
// Lines that normalize to zero tokens (blank, whitespace-only or
// punctuation-only) are reported as *domain.SeedLineError values carrying
// the 1-based line number; the remaining lines are still parsed, so one
// bad line never sinks the batch. Trailing newlines do not count as lines.
func ParseLines(input string) ([]Phrase, []error) {
	input = strings.TrimRight(input, "\r\n")
	if input == "" {
		return nil, nil
	}

	var (
		phrases []Phrase
		errs    []error
	)
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSuffix(line, "\r")
		p, err := New(line)
		if err != nil {
			errs = append(errs, domain.NewSeedLineError(i+1, strings.TrimSpace(line)))
			continue
		}
		phrases = append(phrases, p)
	}

	return phrases, errs
}
