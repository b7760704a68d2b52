package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSeed signals an operator line that normalizes to zero tokens.
	ErrInvalidSeed = errors.New("invalid seed phrase")
	// ErrNoSeeds signals a submission with no usable seed phrase at all.
	ErrNoSeeds = errors.New("no seed phrases")
	// ErrInvalidConfig signals configuration rejected at load time.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrBadDateRange signals an unparseable or inverted date range.
	ErrBadDateRange = errors.New("bad date range")
	// ErrSessionNotFound signals a chat with no active conversation flow.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidTransition signals a conversation step the flow does not allow.
	ErrInvalidTransition = errors.New("invalid flow transition")
	// ErrProviderError signals a content-search API failure.
	ErrProviderError = errors.New("search provider error")
)

// SeedLineError wraps ErrInvalidSeed with the 1-based line number of the
// offending operator line, so it can be reported back per line.
type SeedLineError struct {
	Line int
	Text string
}

func (e *SeedLineError) Error() string {
	return fmt.Sprintf("%s: line %d %q", ErrInvalidSeed.Error(), e.Line, e.Text)
}

func (e *SeedLineError) Unwrap() error { return ErrInvalidSeed }

// NewSeedLineError creates a per-line seed validation error.
func NewSeedLineError(line int, text string) error {
	return &SeedLineError{Line: line, Text: text}
}
