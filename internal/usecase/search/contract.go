package search

import (
	"context"

	"github.com/huntline/phrasehound/internal/domain/daterange"
	"github.com/huntline/phrasehound/internal/domain/post"
	"github.com/huntline/phrasehound/internal/domain/seed"
	"github.com/huntline/phrasehound/internal/domain/verdict"
)

// PostFetcher pulls candidate posts for one seed phrase within a day range.
// Implementations own pagination and their page budget; the service only
// ever sees already-fetched posts.
type PostFetcher interface {
	FetchPosts(ctx context.Context, query string, rng daterange.Range) ([]post.Post, error)
}

// Evaluator decides the verdict for one (seed, document) pair.
type Evaluator interface {
	Evaluate(p seed.Phrase, docTokens []string) verdict.Verdict
}
