package valuation

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fire-ai/valuation-cli/internal/backend"
	"github.com/fire-ai/valuation-cli/internal/comps"
	"github.com/fire-ai/valuation-cli/internal/model"
	"github.com/fire-ai/valuation-cli/internal/store"
	"github.com/fire-ai/valuation-cli/pkg/geocode"
)

// memStore is an in-memory Store that records the status sequence.
type memStore struct {
	mu       sync.Mutex
	runs     map[string]*model.Run
	statuses []model.RunStatus
}

func newMemStore() *memStore {
	return &memStore{runs: make(map[string]*model.Run)}
}

func (m *memStore) CreateRun(_ context.Context, subject model.SubjectProperty) (*model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run := &model.Run{ID: uuid.New().String(), Subject: subject, Status: model.RunStatusQueued}
	m.runs[run.ID] = run
	return run, nil
}

func (m *memStore) UpdateRunStatus(_ context.Context, runID string, status model.RunStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return eris.Errorf("run not found: %s", runID)
	}
	run.Status = status
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memStore) UpdateRunResult(_ context.Context, runID string, result *model.ValuationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return eris.Errorf("run not found: %s", runID)
	}
	run.Status = model.RunStatusComplete
	run.Result = result
	m.statuses = append(m.statuses, model.RunStatusComplete)
	return nil
}

func (m *memStore) FailRun(_ context.Context, runID string, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return eris.Errorf("run not found: %s", runID)
	}
	run.Status = model.RunStatusFailed
	m.statuses = append(m.statuses, model.RunStatusFailed)
	return nil
}

func (m *memStore) GetRun(_ context.Context, runID string) (*model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	return run, nil
}

func (m *memStore) ListRuns(_ context.Context, _ store.RunFilter) ([]model.Run, error) {
	return nil, nil
}

func (m *memStore) Migrate(_ context.Context) error { return nil }

func (m *memStore) Close() error { return nil }

type fakeProvider struct {
	records []model.CandidateRecord
	err     error
}

func (f *fakeProvider) Candidates(_ context.Context) ([]model.CandidateRecord, error) {
	return f.records, f.err
}

type fakeGeocoder struct {
	result *geocode.Result
	err    error
	calls  int
}

func (f *fakeGeocoder) Geocode(_ context.Context, _ geocode.AddressInput) (*geocode.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(_ context.Context, _ model.SubjectProperty, _ model.FeatureSet) (string, error) {
	return f.text, f.err
}

type fakePoster struct {
	itemID  string
	err     error
	payload backend.Payload
	calls   int
}

func (f *fakePoster) Post(_ context.Context, payload backend.Payload) (string, error) {
	f.calls++
	f.payload = payload
	if f.err != nil {
		return "", f.err
	}
	return f.itemID, nil
}

func testSubject() model.SubjectProperty {
	return model.SubjectProperty{
		Address:        "510 Martha Ave",
		City:           "Charlotte",
		State:          "NC",
		ZipCode:        "28202",
		Bedrooms:       3,
		Bathrooms:      2,
		SquareFootage:  1169,
		YearBuilt:      1981,
		ConditionScore: 5,
		Email:          "owner@example.com",
	}
}

func testCandidates() []model.CandidateRecord {
	base := model.CandidateRecord{
		City:      "Charlotte",
		State:     "NC",
		ZipCode:   "28202",
		Bedrooms:  3,
		Bathrooms: 2,
		AreaSqft:  1200,
		YearBuilt: 1985,
		Status:    "Closed",
	}

	a := base
	a.Address = "12 Oak St"
	a.Price = 300000
	b := base
	b.Address = "34 Elm St"
	b.Price = 310000
	c := base
	c.Address = "56 Pine St"
	c.Price = 295000
	return []model.CandidateRecord{a, b, c}
}

func TestPipelineRun_Complete(t *testing.T) {
	st := newMemStore()
	gen := &fakeGenerator{text: "A clear market summary."}
	poster := &fakePoster{itemID: "item-42"}
	p := New(st, &fakeProvider{records: testCandidates()}, nil,
		comps.NewSelector(comps.DefaultFilterConfig()), gen, poster, 25)

	result, err := p.Run(context.Background(), testSubject())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 3, result.PoolSize)
	assert.Len(t, result.Comparables, 3)
	require.NotNil(t, result.Features)
	assert.Equal(t, int64(301667), result.Features.AveragePrice)
	assert.Equal(t, "A clear market summary.", result.Summary)
	assert.Equal(t, "item-42", result.ItemID)

	assert.Equal(t, []model.RunStatus{
		model.RunStatusFetchingPool,
		model.RunStatusSelecting,
		model.RunStatusAggregating,
		model.RunStatusSummarizing,
		model.RunStatusPosting,
		model.RunStatusComplete,
	}, st.statuses)

	assert.Equal(t, 1, poster.calls)
	assert.Equal(t, "28202", poster.payload.ZipCode)
	assert.Equal(t, result.Features.PriceRange.Min, poster.payload.PriceMin)

	run, err := st.GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Result)
}

func TestPipelineRun_GeocodesSubject(t *testing.T) {
	st := newMemStore()
	geo := &fakeGeocoder{result: &geocode.Result{
		Latitude:  35.2271,
		Longitude: -80.8431,
		Source:    "census",
		Quality:   "rooftop",
		Matched:   true,
	}}
	p := New(st, &fakeProvider{records: testCandidates()}, geo,
		comps.NewSelector(comps.DefaultFilterConfig()), nil, nil, 25)

	result, err := p.Run(context.Background(), testSubject())
	require.NoError(t, err)
	assert.Equal(t, 1, geo.calls)
	assert.True(t, result.Geocoded)
	require.NotNil(t, result.Subject.Latitude)
	assert.InDelta(t, 35.2271, *result.Subject.Latitude, 1e-9)
	assert.Contains(t, st.statuses, model.RunStatusGeocoding)
}

func TestPipelineRun_SkipsGeocodingWithCoordinates(t *testing.T) {
	st := newMemStore()
	geo := &fakeGeocoder{result: &geocode.Result{Matched: true}}
	subject := testSubject()
	subject.SetCoordinates(35.2271, -80.8431)

	p := New(st, &fakeProvider{records: testCandidates()}, geo,
		comps.NewSelector(comps.DefaultFilterConfig()), nil, nil, 25)

	result, err := p.Run(context.Background(), subject)
	require.NoError(t, err)
	assert.Equal(t, 0, geo.calls)
	assert.True(t, result.Geocoded)
	assert.NotContains(t, st.statuses, model.RunStatusGeocoding)
}

func TestPipelineRun_GeocodingFailureDegrades(t *testing.T) {
	st := newMemStore()
	geo := &fakeGeocoder{err: eris.New("geocode: mlsgrid query: status 500")}

	p := New(st, &fakeProvider{records: testCandidates()}, geo,
		comps.NewSelector(comps.DefaultFilterConfig()), nil, nil, 25)

	result, err := p.Run(context.Background(), testSubject())
	require.NoError(t, err)
	assert.False(t, result.Geocoded)
	assert.Len(t, result.Comparables, 3)
}

func TestPipelineRun_NoComparables(t *testing.T) {
	st := newMemStore()
	far := testCandidates()
	for i := range far {
		far[i].City = "Asheville"
	}

	p := New(st, &fakeProvider{records: far}, nil,
		comps.NewSelector(comps.DefaultFilterConfig()), nil, nil, 25)

	_, err := p.Run(context.Background(), testSubject())
	require.Error(t, err)
	assert.True(t, eris.Is(err, comps.ErrNoComparables))
	assert.Equal(t, model.RunStatusFailed, st.statuses[len(st.statuses)-1])
}

func TestPipelineRun_PoolFetchFails(t *testing.T) {
	st := newMemStore()
	p := New(st, &fakeProvider{err: eris.New("pool: fetch feed: status 502")}, nil,
		comps.NewSelector(comps.DefaultFilterConfig()), nil, nil, 25)

	_, err := p.Run(context.Background(), testSubject())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch pool")
	assert.Equal(t, model.RunStatusFailed, st.statuses[len(st.statuses)-1])
}

func TestPipelineRun_SummaryFailureFailsRun(t *testing.T) {
	st := newMemStore()
	gen := &fakeGenerator{err: eris.New("summary: create message")}

	p := New(st, &fakeProvider{records: testCandidates()}, nil,
		comps.NewSelector(comps.DefaultFilterConfig()), gen, nil, 25)

	_, err := p.Run(context.Background(), testSubject())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate summary")
}

func TestPipelineRun_PosterFailureFailsRun(t *testing.T) {
	st := newMemStore()
	poster := &fakePoster{err: eris.New("backend: post valuation: status 502")}

	p := New(st, &fakeProvider{records: testCandidates()}, nil,
		comps.NewSelector(comps.DefaultFilterConfig()), nil, poster, 25)

	_, err := p.Run(context.Background(), testSubject())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post result")
}

func TestPipelineRun_InvalidSubject(t *testing.T) {
	st := newMemStore()
	p := New(st, &fakeProvider{records: testCandidates()}, nil,
		comps.NewSelector(comps.DefaultFilterConfig()), nil, nil, 25)

	subject := testSubject()
	subject.City = ""

	_, err := p.Run(context.Background(), subject)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate subject")
	assert.Empty(t, st.statuses)
}
