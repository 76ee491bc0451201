// Package geocode resolves a subject address to coordinates via the MLSGrid
// property search (primary) and the Census Geocoder (fallback).
package geocode

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client geocodes addresses. An unmatched address is not an error: the
// valuation engine runs in a degraded, area-ranked mode without coordinates.
type Client interface {
	Geocode(ctx context.Context, addr AddressInput) (*Result, error)
}

// AddressInput represents an address to geocode.
type AddressInput struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// Result holds the geocoding output for an address.
type Result struct {
	Latitude  float64
	Longitude float64
	Source    string // "mlsgrid" or "census"
	Quality   string // "rooftop", "centroid", "approximate"
	Matched   bool
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithMLSGrid sets the MLSGrid API base URL and bearer token.
func WithMLSGrid(baseURL, token string) Option {
	return func(g *geocoder) {
		if baseURL != "" {
			g.mlsgridURL = baseURL
		}
		g.mlsgridToken = token
	}
}

// WithCensusURL overrides the Census one-line geocoder URL.
func WithCensusURL(u string) Option {
	return func(g *geocoder) {
		g.censusURL = u
	}
}

// WithHTTPClient sets a custom HTTP client for all providers.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for provider calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type geocoder struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	mlsgridURL   string
	mlsgridToken string
	censusURL    string
}

// NewClient creates a geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(1, 1),
		mlsgridURL: defaultMLSGridURL,
		censusURL:  censusOneLineURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Geocode tries MLSGrid first (when a token is configured), then Census.
// A miss from every provider returns Matched=false without error.
func (g *geocoder) Geocode(ctx context.Context, addr AddressInput) (*Result, error) {
	if g.mlsgridToken != "" {
		result, err := g.geocodeMLSGrid(ctx, addr)
		if err == nil && result.Matched {
			return result, nil
		}
	}

	result, err := g.geocodeCensus(ctx, addr)
	if err == nil && result.Matched {
		return result, nil
	}

	return &Result{Matched: false}, nil
}
