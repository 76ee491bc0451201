// Package pool supplies normalized candidate sale records to the valuation
// pipeline, from the remote MLS feed or from a local file.
package pool

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fire-ai/valuation-cli/internal/model"
)

// Provider supplies a snapshot of candidate records. The returned slice may
// be shared between concurrent requests and must be treated as read-only.
type Provider interface {
	Candidates(ctx context.Context) ([]model.CandidateRecord, error)
}

// Options configures the HTTP provider.
type Options struct {
	URL        string
	Timeout    time.Duration // full-feed download, default 120s
	CacheTTL   time.Duration // snapshot reuse window, default 30m
	MaxRetries int
	Backoff    time.Duration // base retry backoff, default 2s
	RateRPS    float64
	HTTPClient *http.Client
}

// HTTPProvider fetches the raw feed over HTTP and caches one normalized
// snapshot for the TTL. Concurrent valuations read the same snapshot.
type HTTPProvider struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter

	mu        sync.RWMutex
	snapshot  []model.CandidateRecord
	fetchedAt time.Time
}

// NewHTTPProvider creates a provider for the given feed options.
func NewHTTPProvider(opts Options) (*HTTPProvider, error) {
	if opts.URL == "" {
		return nil, eris.New("pool: feed URL is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 30 * time.Minute
	}
	if opts.RateRPS == 0 {
		opts.RateRPS = 1
	}
	if opts.Backoff == 0 {
		opts.Backoff = 2 * time.Second
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPProvider{
		opts:    opts,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(opts.RateRPS), 1),
	}, nil
}

// Candidates returns the cached snapshot when fresh, otherwise refetches.
func (p *HTTPProvider) Candidates(ctx context.Context) ([]model.CandidateRecord, error) {
	p.mu.RLock()
	if p.snapshot != nil && time.Since(p.fetchedAt) < p.opts.CacheTTL {
		snapshot := p.snapshot
		p.mu.RUnlock()
		zap.L().Debug("pool: cache hit", zap.Int("records", len(snapshot)))
		return snapshot, nil
	}
	p.mu.RUnlock()

	records, err := p.fetch(ctx)
	if err != nil {
		// Serve a stale snapshot over failing the request outright.
		p.mu.RLock()
		stale := p.snapshot
		p.mu.RUnlock()
		if stale != nil {
			zap.L().Warn("pool: refresh failed, serving stale snapshot",
				zap.Int("records", len(stale)),
				zap.Error(err),
			)
			return stale, nil
		}
		return nil, err
	}

	p.mu.Lock()
	p.snapshot = records
	p.fetchedAt = time.Now()
	p.mu.Unlock()

	zap.L().Info("pool: snapshot refreshed", zap.Int("records", len(records)))
	return records, nil
}

// Stats reports the cached snapshot size and age. ok is false before the
// first successful fetch.
func (p *HTTPProvider) Stats() (size int, age time.Duration, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snapshot == nil {
		return 0, 0, false
	}
	return len(p.snapshot), time.Since(p.fetchedAt), true
}

// Invalidate drops the cached snapshot, forcing the next call to refetch.
func (p *HTTPProvider) Invalidate() {
	p.mu.Lock()
	p.snapshot = nil
	p.mu.Unlock()
}

func (p *HTTPProvider) fetch(ctx context.Context) ([]model.CandidateRecord, error) {
	var lastErr error
	attempts := p.opts.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * p.opts.Backoff
			zap.L().Warn("pool: fetch retry",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "pool: fetch cancelled")
			}
		}

		records, err := p.fetchOnce(ctx)
		if err == nil {
			return records, nil
		}
		lastErr = err
	}
	return nil, eris.Wrapf(lastErr, "pool: fetch failed after %d attempts", attempts)
}

func (p *HTTPProvider) fetchOnce(ctx context.Context) ([]model.CandidateRecord, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "pool: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.opts.URL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "pool: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "pool: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("pool: feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "pool: read body")
	}

	raws, err := decodeFeed(body)
	if err != nil {
		return nil, err
	}
	return NormalizeAll(raws), nil
}

// decodeFeed accepts the envelope shapes the feed has shipped over time:
// a bare array, or an object with an "items", "properties", or "data" array.
func decodeFeed(body []byte) ([]rawRecord, error) {
	var asList []rawRecord
	if err := json.Unmarshal(body, &asList); err == nil {
		return asList, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, eris.Wrap(err, "pool: decode feed")
	}

	for _, key := range []string{"items", "properties", "data"} {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var list []rawRecord
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, eris.Wrapf(err, "pool: decode feed %s", key)
		}
		return list, nil
	}

	return nil, eris.New("pool: feed has no recognized record list")
}
