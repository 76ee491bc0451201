package pool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedRecord = `{"City":"Charlotte","StateOrProvince":"NC","ClosePrice":300000,"LivingArea":1200,"BedroomsTotal":3,"BathroomsFull":2,"MlsStatus":"Closed"}`

func newTestProvider(t *testing.T, url string) *HTTPProvider {
	t.Helper()
	p, err := NewHTTPProvider(Options{URL: url, RateRPS: 1000})
	require.NoError(t, err)
	return p
}

func TestNewHTTPProvider_RequiresURL(t *testing.T) {
	_, err := NewHTTPProvider(Options{})
	require.Error(t, err)
}

func TestCandidates_EnvelopeShapes(t *testing.T) {
	bodies := []string{
		`{"items":[` + feedRecord + `]}`,
		`{"properties":[` + feedRecord + `]}`,
		`{"data":[` + feedRecord + `]}`,
		`[` + feedRecord + `]`,
	}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}))

		p := newTestProvider(t, srv.URL)
		records, err := p.Candidates(context.Background())
		require.NoError(t, err, body)
		require.Len(t, records, 1, body)
		assert.Equal(t, "Charlotte", records[0].City)
		assert.Equal(t, 2.0, records[0].Bathrooms)

		srv.Close()
	}
}

func TestCandidates_CachesSnapshot(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"items":[` + feedRecord + `]}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)

	first, err := p.Candidates(context.Background())
	require.NoError(t, err)
	second, err := p.Candidates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "second call must hit the cache")
	assert.Equal(t, first, second)

	size, age, ok := p.Stats()
	assert.True(t, ok)
	assert.Equal(t, 1, size)
	assert.Less(t, age, time.Minute)
}

func TestCandidates_InvalidateForcesRefetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"items":[` + feedRecord + `]}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	_, err := p.Candidates(context.Background())
	require.NoError(t, err)

	p.Invalidate()
	_, _, ok := p.Stats()
	assert.False(t, ok)

	_, err = p.Candidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCandidates_ServesStaleOnRefreshFailure(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"items":[` + feedRecord + `]}`))
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(Options{URL: srv.URL, RateRPS: 1000, CacheTTL: time.Nanosecond})
	require.NoError(t, err)

	records, err := p.Candidates(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	fail.Store(true)
	time.Sleep(time.Millisecond) // expire the TTL

	stale, err := p.Candidates(context.Background())
	require.NoError(t, err, "stale snapshot beats a hard failure")
	assert.Equal(t, records, stale)
}

func TestCandidates_RetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := NewHTTPProvider(Options{URL: srv.URL, RateRPS: 1000, MaxRetries: 1, Backoff: time.Millisecond})
	require.NoError(t, err)

	_, err = p.Candidates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, int32(2), calls.Load())
}

func TestCandidates_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	_, err := p.Candidates(context.Background())
	require.Error(t, err)
}

func TestCandidates_UnrecognizedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"rows":[]}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	_, err := p.Candidates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recognized record list")
}
