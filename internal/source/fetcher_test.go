package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"yad2_tracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFetcher(t *testing.T, timeout time.Duration, concurrency int) *Fetcher {
	t.Helper()
	f, err := NewFetcher(&config.Config{
		FetchTimeout:     timeout,
		FetchConcurrency: concurrency,
	}, zap.NewNop())
	require.NoError(t, err)
	return f
}

func TestFetch_SendsBrowserHeadersAndReturnsBody(t *testing.T) {
	var gotUA, gotAccept, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotReferer = r.Header.Get("Referer")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"markers":[]}}`))
	}))
	defer srv.Close()

	res := newTestFetcher(t, time.Second, 1).Fetch(context.Background(), srv.URL+"/feed?city=5000")

	require.NoError(t, res.Err)
	assert.True(t, res.OK())
	assert.JSONEq(t, `{"data":{"markers":[]}}`, string(res.Body))
	assert.Contains(t, gotUA, "Chrome")
	assert.Contains(t, gotAccept, "application/json")
	assert.Equal(t, "https://www.yad2.co.il/", gotReferer)
}

func TestFetch_Non2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	res := newTestFetcher(t, time.Second, 1).Fetch(context.Background(), srv.URL)

	assert.Error(t, res.Err)
	assert.False(t, res.OK())
	assert.Nil(t, res.Body)
}

func TestFetch_TimeoutIsFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	res := newTestFetcher(t, 50*time.Millisecond, 1).Fetch(context.Background(), srv.URL)
	assert.Error(t, res.Err)
}

func TestFetch_EmptyURLAndCancelledContext(t *testing.T) {
	f := newTestFetcher(t, time.Second, 1)

	assert.ErrorIs(t, f.Fetch(context.Background(), "").Err, ErrEmptyURL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.Fetch(ctx, "http://127.0.0.1:1/feed").Err, context.Canceled)
}

func TestFetchAll_IsolatesFailuresAndKeepsOrder(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/one", srv.URL + "/bad", srv.URL + "/three"}
	results := newTestFetcher(t, time.Second, 2).FetchAll(context.Background(), urls)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, urls[i], r.URL)
	}
	assert.Equal(t, "/one", string(results[0].Body))
	assert.Error(t, results[1].Err)
	assert.Equal(t, "/three", string(results[2].Body))
	assert.EqualValues(t, 3, hits.Load())
}
