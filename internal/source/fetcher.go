// File: internal/source/fetcher.go
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"yad2_tracker/internal/config"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultTimeout   = 10 * time.Second
)

// ErrEmptyURL is returned for a blank endpoint URL.
var ErrEmptyURL = errors.New("endpoint url is empty")

// FetchResult is the outcome of one endpoint request. Exactly one of Body and
// Err is meaningful.
type FetchResult struct {
	URL  string
	Body []byte
	Err  error
}

// OK reports whether the request produced a body.
func (r FetchResult) OK() bool { return r.Err == nil }

// Fetcher performs GET requests against the feed endpoints with a browser-like
// header set. Every request runs on a clone of one parent collector so the
// rate limit is shared across a run.
type Fetcher struct {
	collector   *colly.Collector
	concurrency int
	logger      *zap.Logger
}

// NewFetcher builds a fetcher from FETCH_TIMEOUT_SECONDS, FETCH_DELAY_MS and
// FETCH_CONCURRENCY.
func NewFetcher(cfg *config.Config, logger *zap.Logger) (*Fetcher, error) {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	concurrency := cfg.FetchConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.UserAgent(browserUserAgent),
	)
	c.SetRequestTimeout(timeout)

	err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: concurrency,
		RandomDelay: cfg.FetchDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("fetcher: failed to set limit rule: %w", err)
	}

	return &Fetcher{
		collector:   c,
		concurrency: concurrency,
		logger:      logger.Named("fetcher"),
	}, nil
}

// Fetch requests a single endpoint. Network errors, timeouts and non-2xx
// statuses come back in FetchResult.Err; Fetch never panics past this point.
func (f *Fetcher) Fetch(ctx context.Context, url string) FetchResult {
	res := FetchResult{URL: url}
	if url == "" {
		res.Err = ErrEmptyURL
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	collector := f.collector.Clone()

	collector.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("Accept", "application/json, text/plain, */*")
		r.Headers.Set("Accept-Language", "he-IL,he;q=0.9,en-US;q=0.8,en;q=0.7")
		r.Headers.Set("Referer", "https://www.yad2.co.il/")
		r.Headers.Set("Origin", "https://www.yad2.co.il")
		r.Headers.Set("Cache-Control", "no-cache")
		f.logger.Debug("Fetching endpoint", zap.String("url", r.URL.String()))
	})

	collector.OnResponse(func(r *colly.Response) {
		if r.StatusCode < http.StatusOK || r.StatusCode >= http.StatusMultipleChoices {
			res.Err = fmt.Errorf("fetch %s: unexpected status %d", url, r.StatusCode)
			return
		}
		res.Body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		res.Err = fmt.Errorf("fetch %s failed with status %d: %w", url, r.StatusCode, err)
	})

	if err := collector.Visit(url); err != nil {
		res.Err = fmt.Errorf("fetch %s: %w", url, err)
	}
	collector.Wait()

	if res.Err == nil && ctx.Err() != nil {
		res.Err = ctx.Err()
	}
	if res.Err != nil {
		res.Body = nil
		f.logger.Warn("Endpoint fetch failed", zap.String("url", url), zap.Error(res.Err))
		return res
	}
	f.logger.Debug("Endpoint fetched", zap.String("url", url), zap.Int("bytes", len(res.Body)))
	return res
}

// FetchAll fetches urls with at most FETCH_CONCURRENCY requests in flight.
// Results are returned in input order and one failure never affects the rest.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []FetchResult {
	results := make([]FetchResult, len(urls))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			results[i] = f.Fetch(ctx, u)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
