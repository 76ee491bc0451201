// Package backend posts finished valuations to the downstream collection
// endpoint and reads back the created item id.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fire-ai/valuation-cli/internal/model"
)

// Payload is the flattened body the collection endpoint expects.
type Payload struct {
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Email    string `json:"email,omitempty"`
	PriceMin int64  `json:"price_min"`
	PriceMax int64  `json:"price_max"`
	Summary  string `json:"summary"`
}

// NewPayload assembles the downstream body from a finished run.
func NewPayload(subject model.SubjectProperty, features model.FeatureSet, summary string) Payload {
	return Payload{
		Address:  subject.Address,
		City:     subject.City,
		State:    subject.State,
		ZipCode:  subject.ZipCode,
		Email:    subject.Email,
		PriceMin: features.PriceRange.Min,
		PriceMax: features.PriceRange.Max,
		Summary:  summary,
	}
}

// Poster delivers valuation payloads over HTTP.
type Poster struct {
	url    string
	client *http.Client
}

// Option configures a Poster.
type Option func(*Poster)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Poster) { p.client = c }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Poster) { p.client.Timeout = d }
}

// NewPoster creates a Poster targeting the given endpoint.
func NewPoster(url string, opts ...Option) *Poster {
	p := &Poster{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// itemEnvelope covers the response shapes the collection endpoint returns.
// The created id shows up at the top level, under item, or under data
// depending on the endpoint version.
type itemEnvelope struct {
	ID   string `json:"_id"`
	Item struct {
		ID string `json:"_id"`
	} `json:"item"`
	Data struct {
		ID string `json:"_id"`
	} `json:"data"`
}

func (e itemEnvelope) itemID() string {
	switch {
	case e.ID != "":
		return e.ID
	case e.Item.ID != "":
		return e.Item.ID
	default:
		return e.Data.ID
	}
}

// Post sends the payload and returns the created item id. A response without
// an id is logged but not an error.
func (p *Poster) Post(ctx context.Context, payload Payload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", eris.Wrap(err, "backend: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "backend: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "backend: post valuation")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", eris.New(fmt.Sprintf("backend: post valuation: status %d", resp.StatusCode))
	}

	var envelope itemEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", eris.Wrap(err, "backend: decode response")
	}

	id := envelope.itemID()
	if id == "" {
		zap.L().Warn("backend response missing item id", zap.String("url", p.url))
	}
	return id, nil
}
