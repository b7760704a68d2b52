package search

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/huntline/phrasehound/internal/domain"
	"github.com/huntline/phrasehound/internal/domain/daterange"
	"github.com/huntline/phrasehound/internal/domain/post"
	"github.com/huntline/phrasehound/internal/domain/seed"
	"github.com/huntline/phrasehound/internal/domain/verdict"
	"github.com/huntline/phrasehound/internal/usecase/match"
)

// mockFetcher implements PostFetcher for tests.
type mockFetcher struct {
	fn func(ctx context.Context, query string, rng daterange.Range) ([]post.Post, error)
}

func (m *mockFetcher) FetchPosts(ctx context.Context, query string, rng daterange.Range) ([]post.Post, error) {
	return m.fn(ctx, query, rng)
}

func byQuery(posts map[string][]post.Post) *mockFetcher {
	return &mockFetcher{fn: func(_ context.Context, query string, _ daterange.Range) ([]post.Post, error) {
		return posts[query], nil
	}}
}

func exactEngine(t *testing.T) *match.Engine {
	t.Helper()
	e, err := match.NewEngine(match.Config{RequireExact: true, MaxGapWords: 0, FuzzyThreshold: 0.72})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func fuzzyEngine(t *testing.T) *match.Engine {
	t.Helper()
	e, err := match.NewEngine(match.Config{RequireExact: false, MaxGapWords: 0, FuzzyThreshold: 0.72})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func testRange(t *testing.T) daterange.Range {
	t.Helper()
	r, err := daterange.Parse("2025-10-22 — 2025-10-25")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return r
}

func mkSeeds(t *testing.T, lines ...string) []seed.Phrase {
	t.Helper()
	out := make([]seed.Phrase, 0, len(lines))
	for _, l := range lines {
		p, err := seed.New(l)
		if err != nil {
			t.Fatalf("seed.New(%q): %v", l, err)
		}
		out = append(out, p)
	}
	return out
}

func mkPost(text string, views int, published time.Time) post.Post {
	return post.New("Channel", "https://t.me/c/1", "", text, "", views, published)
}

func inWindow() time.Time {
	return time.Date(2025, 10, 23, 12, 0, 0, 0, time.UTC)
}

func TestRun_MatchesKeepSubmissionOrder(t *testing.T) {
	fetcher := byQuery(map[string][]post.Post{
		"alpha beta": {
			mkPost("alpha beta here", 10, inWindow()),
			mkPost("nothing of note", 10, inWindow()),
			mkPost("again alpha beta", 10, inWindow()),
		},
		"gamma": {
			mkPost("gamma rays detected", 10, inWindow()),
		},
	})
	svc := New(fetcher, exactEngine(t), Config{Workers: 4})

	report, err := svc.Run(context.Background(), mkSeeds(t, "alpha beta", "gamma"), testRange(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Fetched != 4 || report.Evaluated != 4 {
		t.Errorf("Fetched = %d, Evaluated = %d", report.Fetched, report.Evaluated)
	}
	if len(report.Failures) != 0 {
		t.Errorf("unexpected failures: %v", report.Failures)
	}
	if len(report.Evaluations) != 0 {
		t.Error("debug off, Evaluations must stay empty")
	}

	if len(report.Matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(report.Matches))
	}
	wantBodies := []string{"alpha beta here", "again alpha beta", "gamma rays detected"}
	for i, m := range report.Matches {
		if m.Post.Body() != wantBodies[i] {
			t.Errorf("match %d = %q, want %q", i, m.Post.Body(), wantBodies[i])
		}
		if m.Verdict.Kind() != verdict.Exact {
			t.Errorf("match %d kind = %q", i, m.Verdict.Kind())
		}
	}
	if report.Matches[0].Seed.Canonical() != "alpha beta" || report.Matches[2].Seed.Canonical() != "gamma" {
		t.Error("matches are not grouped by seed submission order")
	}
}

func TestRun_NoSeeds(t *testing.T) {
	svc := New(byQuery(nil), exactEngine(t), Config{})

	_, err := svc.Run(context.Background(), nil, testRange(t))
	if !errors.Is(err, domain.ErrNoSeeds) {
		t.Errorf("expected ErrNoSeeds, got %v", err)
	}
}

func TestRun_EmptyCandidateSet(t *testing.T) {
	svc := New(byQuery(map[string][]post.Post{}), exactEngine(t), Config{})

	report, err := svc.Run(context.Background(), mkSeeds(t, "alpha beta"), testRange(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Matches) != 0 || report.Evaluated != 0 {
		t.Errorf("empty fetch must produce empty report, got %+v", report)
	}
}

func TestRun_ViewFloor(t *testing.T) {
	fetcher := byQuery(map[string][]post.Post{
		"alpha beta": {
			mkPost("alpha beta low", 50, inWindow()),
			mkPost("alpha beta high", 150, inWindow()),
		},
	})
	svc := New(fetcher, exactEngine(t), Config{MinViews: 100})

	report, err := svc.Run(context.Background(), mkSeeds(t, "alpha beta"), testRange(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Evaluated != 1 {
		t.Errorf("Evaluated = %d, want 1 (low-view post filtered before matching)", report.Evaluated)
	}
	if len(report.Matches) != 1 || report.Matches[0].Post.Views() != 150 {
		t.Errorf("matches = %+v", report.Matches)
	}
}

func TestRun_DateWindow(t *testing.T) {
	fetcher := byQuery(map[string][]post.Post{
		"alpha beta": {
			mkPost("alpha beta early", 10, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)),
			mkPost("alpha beta inside", 10, inWindow()),
			mkPost("alpha beta undated", 10, time.Time{}),
		},
	})
	svc := New(fetcher, exactEngine(t), Config{})

	report, err := svc.Run(context.Background(), mkSeeds(t, "alpha beta"), testRange(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Evaluated != 2 {
		t.Fatalf("Evaluated = %d, want 2 (out-of-window post dropped, undated kept)", report.Evaluated)
	}
	got := []string{report.Matches[0].Post.Body(), report.Matches[1].Post.Body()}
	want := []string{"alpha beta inside", "alpha beta undated"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("matches = %v, want %v", got, want)
	}
}

func TestRun_FetchFailureDisablesOneSeedOnly(t *testing.T) {
	boom := errors.New("provider down")
	fetcher := &mockFetcher{fn: func(_ context.Context, query string, _ daterange.Range) ([]post.Post, error) {
		if strings.Contains(query, "bad") {
			return nil, boom
		}
		return []post.Post{mkPost("good seed found", 10, inWindow())}, nil
	}}
	svc := New(fetcher, exactEngine(t), Config{})

	report, err := svc.Run(context.Background(), mkSeeds(t, "bad seed", "good seed"), testRange(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(report.Failures))
	}
	if report.Failures[0].Seed.Raw() != "bad seed" || !errors.Is(report.Failures[0].Err, boom) {
		t.Errorf("failure = %+v", report.Failures[0])
	}
	if len(report.Matches) != 1 || report.Matches[0].Seed.Raw() != "good seed" {
		t.Errorf("matches = %+v", report.Matches)
	}
}

func TestRun_DebugReportsEveryPair(t *testing.T) {
	fetcher := byQuery(map[string][]post.Post{
		"organic search results": {
			mkPost("buy organic search results now", 10, inWindow()),
			mkPost("really organic serch result here", 10, inWindow()),
			mkPost("ничего похожего тут нет", 10, inWindow()),
		},
	})
	svc := New(fetcher, fuzzyEngine(t), Config{Debug: true})

	report, err := svc.Run(context.Background(), mkSeeds(t, "organic search results"), testRange(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Evaluations) != 3 || report.Evaluated != 3 {
		t.Fatalf("Evaluations = %d, Evaluated = %d, want 3", len(report.Evaluations), report.Evaluated)
	}

	kinds := []verdict.Kind{
		report.Evaluations[0].Verdict.Kind(),
		report.Evaluations[1].Verdict.Kind(),
		report.Evaluations[2].Verdict.Kind(),
	}
	want := []verdict.Kind{verdict.Exact, verdict.Fuzzy, verdict.None}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}

	if miss := report.Evaluations[2].Verdict; !miss.HasRatio() {
		t.Error("debug None verdict must carry the computed ratio")
	}
	if len(report.Matches) != 2 {
		t.Errorf("matches = %d, want 2", len(report.Matches))
	}
}

func TestRun_DeterministicAcrossWorkers(t *testing.T) {
	posts := make([]post.Post, 0, 30)
	for i := 0; i < 30; i++ {
		body := fmt.Sprintf("filler %d and more words", i)
		if i%3 == 0 {
			body = fmt.Sprintf("filler %d alpha beta tail", i)
		}
		posts = append(posts, mkPost(body, 10, inWindow()))
	}
	fetcher := byQuery(map[string][]post.Post{"alpha beta": posts, "filler 7": posts})
	seeds := mkSeeds(t, "alpha beta", "filler 7")

	first, err := New(fetcher, exactEngine(t), Config{Workers: 8, Debug: true}).
		Run(context.Background(), seeds, testRange(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := New(fetcher, exactEngine(t), Config{Workers: 2, Debug: true}).
		Run(context.Background(), seeds, testRange(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(first.Matches, second.Matches) {
		t.Error("match order differs across worker counts")
	}
	if !reflect.DeepEqual(first.Evaluations, second.Evaluations) {
		t.Error("debug evaluation order differs across worker counts")
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New(byQuery(nil), exactEngine(t), Config{})
	_, err := svc.Run(ctx, mkSeeds(t, "alpha beta"), testRange(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
