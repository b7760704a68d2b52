// Package search runs the fetch-filter-match pipeline for one operator request.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/huntline/phrasehound/internal/domain"
	"github.com/huntline/phrasehound/internal/domain/daterange"
	"github.com/huntline/phrasehound/internal/domain/post"
	"github.com/huntline/phrasehound/internal/domain/seed"
	"github.com/huntline/phrasehound/internal/domain/text"
	"github.com/huntline/phrasehound/internal/domain/verdict"
	"github.com/huntline/phrasehound/internal/logger"
	"github.com/huntline/phrasehound/internal/metrics"
)

// Evaluation is one evaluated (seed, post) pair with its verdict.
type Evaluation struct {
	Seed    seed.Phrase
	Post    post.Post
	Verdict verdict.Verdict
}

// FetchFailure records a seed whose candidate fetch failed.
type FetchFailure struct {
	Seed seed.Phrase
	Err  error
}

// Report is the outcome of one search run. Matches keeps operator order:
// seeds in submission order, posts in provider order within each seed.
type Report struct {
	Matches     []Evaluation
	Evaluations []Evaluation // every evaluated pair, debug mode only
	Failures    []FetchFailure
	Fetched     int // posts pulled from the provider before filtering
	Evaluated   int // (seed, post) pairs put through the engine
}

// Config tunes one service instance.
type Config struct {
	Workers  int // concurrent evaluations, min 1
	MinViews int // drop posts with fewer views before matching
	Debug    bool
}

// Service fetches candidates per seed and evaluates each seed against its
// own candidates.
type Service struct {
	fetcher PostFetcher
	engine  Evaluator
	cfg     Config
}

// New creates a search service.
func New(fetcher PostFetcher, engine Evaluator, cfg Config) *Service {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Service{fetcher: fetcher, engine: engine, cfg: cfg}
}

// candidate is a post with its body tokenized exactly once.
type candidate struct {
	post   post.Post
	tokens []string
}

// Run executes one search. A fetch failure disables that seed only; the
// remaining seeds still run and the failure is reported alongside results.
func (s *Service) Run(ctx context.Context, phrases []seed.Phrase, rng daterange.Range) (Report, error) {
	started := time.Now()
	if len(phrases) == 0 {
		metrics.SearchRunsTotal.WithLabelValues("error").Inc()
		return Report{}, domain.ErrNoSeeds
	}

	log := logger.From(ctx)

	var report Report
	cands := make([][]candidate, len(phrases))
	for i, p := range phrases {
		if err := ctx.Err(); err != nil {
			metrics.SearchRunsTotal.WithLabelValues("error").Inc()
			return Report{}, fmt.Errorf("search cancelled: %w", err)
		}

		posts, err := s.fetcher.FetchPosts(ctx, p.Raw(), rng)
		if err != nil {
			log.Warn("candidate fetch failed",
				zap.String("seed", p.Canonical()),
				zap.Error(err))
			report.Failures = append(report.Failures, FetchFailure{Seed: p, Err: err})
			continue
		}
		report.Fetched += len(posts)
		cands[i] = s.sift(posts, rng)
	}

	verdicts := s.evaluateAll(phrases, cands)

	for i, p := range phrases {
		for j, c := range cands[i] {
			v := verdicts[i][j]
			report.Evaluated++
			metrics.VerdictsTotal.WithLabelValues(string(v.Kind())).Inc()

			ev := Evaluation{Seed: p, Post: c.post, Verdict: v}
			if v.Matched() {
				report.Matches = append(report.Matches, ev)
			}
			if s.cfg.Debug {
				report.Evaluations = append(report.Evaluations, ev)
			}
		}
	}

	log.Info("search run finished",
		zap.Int("seeds", len(phrases)),
		zap.Int("fetched", report.Fetched),
		zap.Int("evaluated", report.Evaluated),
		zap.Int("matches", len(report.Matches)),
		zap.Int("failures", len(report.Failures)))

	metrics.SearchRunsTotal.WithLabelValues("ok").Inc()
	metrics.SearchRunDuration.Observe(time.Since(started).Seconds())
	return report, nil
}

// sift applies the view floor and the date window, then tokenizes the
// survivors. A post without a timestamp passes the window check.
func (s *Service) sift(posts []post.Post, rng daterange.Range) []candidate {
	out := make([]candidate, 0, len(posts))
	for _, p := range posts {
		if p.Views() < s.cfg.MinViews {
			continue
		}
		if !p.Published().IsZero() && !rng.Contains(p.Published()) {
			continue
		}
		out = append(out, candidate{post: p, tokens: text.Tokenize(p.Body())})
	}
	return out
}

// evaluateAll fans (seed, candidate) pairs over a bounded worker pool.
// Workers write to disjoint slots, so no locking is needed and the output
// never depends on scheduling order.
func (s *Service) evaluateAll(phrases []seed.Phrase, cands [][]candidate) [][]verdict.Verdict {
	verdicts := make([][]verdict.Verdict, len(phrases))
	total := 0
	for i := range cands {
		verdicts[i] = make([]verdict.Verdict, len(cands[i]))
		total += len(cands[i])
	}
	if total == 0 {
		return verdicts
	}

	type job struct{ seedIdx, postIdx int }
	jobs := make(chan job)

	workers := s.cfg.Workers
	if workers > total {
		workers = total
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				verdicts[j.seedIdx][j.postIdx] =
					s.engine.Evaluate(phrases[j.seedIdx], cands[j.seedIdx][j.postIdx].tokens)
			}
		}()
	}

	for i := range cands {
		for j := range cands[i] {
			jobs <- job{seedIdx: i, postIdx: j}
		}
	}
	close(jobs)
	wg.Wait()

	return verdicts
}
