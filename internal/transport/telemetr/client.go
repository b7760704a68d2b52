// Package telemetr talks to the Telemetr content search API.
package telemetr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/huntline/phrasehound/internal/domain"
	"github.com/huntline/phrasehound/internal/domain/daterange"
	"github.com/huntline/phrasehound/internal/domain/post"
	"github.com/huntline/phrasehound/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const searchPath = "/channels/posts/search"

// Config holds the content search provider settings.
type Config struct {
	BaseURL   string
	Token     string
	Pages     int // page budget per seed
	PageSize  int // items requested per page
	UseQuotes bool
	Timeout   time.Duration
	Logger    *zap.Logger
}

// Client fetches candidate posts from the post search endpoint. One
// FetchPosts call spends the whole page budget for one seed phrase.
type Client struct {
	http      *http.Client
	baseURL   string
	token     string
	pages     int
	pageSize  int
	useQuotes bool
	logger    *zap.Logger
}

// NewClient creates a Telemetr API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telemetr token is not set: %w", domain.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telemetr.me"
	}
	if cfg.Pages < 1 {
		cfg.Pages = 1
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.Token,
		pages:     cfg.Pages,
		pageSize:  cfg.PageSize,
		useQuotes: cfg.UseQuotes,
		logger:    log,
	}, nil
}

// FetchPosts pulls up to Pages*PageSize posts for one seed phrase, stopping
// early on a short page. A page failure past the first keeps what was already
// fetched; a first-page failure means the seed got nothing and is an error.
func (c *Client) FetchPosts(ctx context.Context, query string, rng daterange.Range) ([]post.Post, error) {
	q := c.outboundQuery(query)

	var out []post.Post
	for page := 1; page <= c.pages; page++ {
		items, err := c.fetchPage(ctx, q, rng, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			c.logger.Warn("page fetch failed, keeping earlier pages",
				zap.Int("page", page),
				zap.Error(err))
			break
		}

		metrics.ProviderPagesTotal.Inc()
		out = append(out, items...)
		if len(items) < c.pageSize {
			break
		}
	}

	return out, nil
}

// outboundQuery optionally wraps the seed in double quotes so the upstream
// treats it as a phrase. Already-quoted input passes through unchanged.
func (c *Client) outboundQuery(seed string) string {
	s := strings.TrimSpace(seed)
	if !c.useQuotes || s == "" {
		return s
	}
	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s
	}

	return `"` + s + `"`
}

func (c *Client) fetchPage(ctx context.Context, query string, rng daterange.Range, page int) ([]post.Post, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("date_from", rng.SinceParam())
	params.Set("date_to", rng.UntilParam())
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build post search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("post search request: %v: %w", err, domain.ErrProviderError)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read post search response: %v: %w", err, domain.ErrProviderError)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("post search status %d: %s: %w",
			resp.StatusCode, snippet(body), domain.ErrProviderError)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode post search response: %v: %w", err, domain.ErrProviderError)
	}
	if env.Status != "ok" {
		metrics.ProviderRequestsTotal.WithLabelValues("error").Inc()
		if env.Error != "" {
			return nil, fmt.Errorf("post search status %q: %s: %w",
				env.Status, env.Error, domain.ErrProviderError)
		}
		return nil, fmt.Errorf("post search status %q: %w", env.Status, domain.ErrProviderError)
	}

	metrics.ProviderRequestsTotal.WithLabelValues("success").Inc()
	metrics.ProviderRequestDuration.Observe(time.Since(start).Seconds())

	posts := make([]post.Post, 0, len(env.Response.Items))
	for _, raw := range env.Response.Items {
		if p, ok := decodeItem(raw); ok {
			posts = append(posts, p)
		}
	}

	return posts, nil
}

// snippet keeps error bodies short enough for a log line.
func snippet(body []byte) string {
	const max = 256
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max]
	}

	return s
}
