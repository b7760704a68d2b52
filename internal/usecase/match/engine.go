// Package match decides whether a seed phrase genuinely occurs in a post.
package match

import (
	"fmt"

	"github.com/huntline/phrasehound/internal/domain"
	"github.com/huntline/phrasehound/internal/domain/seed"
	"github.com/huntline/phrasehound/internal/domain/verdict"
)

// Config holds the engine knobs, fixed at construction.
type Config struct {
	RequireExact   bool
	MaxGapWords    int
	FuzzyThreshold float64
}

// Engine evaluates (seed, document) pairs. It holds no mutable cross-call
// state, so a single Engine is safe for concurrent use.
type Engine struct {
	cfg Config

	// fuzzy is the fallback stage, swappable in tests.
	fuzzy func(seedTokens, docTokens []string) float64
}

// NewEngine validates the config and builds an engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.MaxGapWords < 0 {
		return nil, fmt.Errorf("%w: maxGapWords must not be negative, got %d",
			domain.ErrInvalidConfig, cfg.MaxGapWords)
	}
	if cfg.FuzzyThreshold < 0 || cfg.FuzzyThreshold > 1 {
		return nil, fmt.Errorf("%w: fuzzyThreshold must be within [0,1], got %v",
			domain.ErrInvalidConfig, cfg.FuzzyThreshold)
	}

	return &Engine{cfg: cfg, fuzzy: bestWindowRatio}, nil
}

// Evaluate decides the verdict for one seed against one tokenized document.
// docTokens must come from text.Tokenize; the engine never re-normalizes.
// An empty document is an automatic non-match.
func (e *Engine) Evaluate(p seed.Phrase, docTokens []string) verdict.Verdict {
	if len(docTokens) == 0 {
		return verdict.NewNone()
	}

	if ok, gap := matchesExact(p.Tokens(), docTokens, e.cfg.MaxGapWords); ok {
		return verdict.NewExact(gap)
	}
	if e.cfg.RequireExact {
		return verdict.NewNone()
	}

	ratio := e.fuzzy(p.Tokens(), docTokens)
	if ratio >= e.cfg.FuzzyThreshold {
		return verdict.NewFuzzy(ratio)
	}

	return verdict.NewNoneWithRatio(ratio)
}
