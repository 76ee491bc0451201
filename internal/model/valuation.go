package model

import "time"

// RunStatus represents the current state of a valuation run.
type RunStatus string

const (
	RunStatusQueued       RunStatus = "queued"
	RunStatusFetchingPool RunStatus = "fetching_pool"
	RunStatusGeocoding    RunStatus = "geocoding"
	RunStatusSelecting    RunStatus = "selecting"
	RunStatusAggregating  RunStatus = "aggregating"
	RunStatusSummarizing  RunStatus = "summarizing"
	RunStatusPosting      RunStatus = "posting"
	RunStatusComplete     RunStatus = "complete"
	RunStatusFailed       RunStatus = "failed"
)

// ValuationResult holds the final outcome of a run.
type ValuationResult struct {
	RunID       string          `json:"run_id"`
	Subject     SubjectProperty `json:"subject"`
	Features    *FeatureSet     `json:"features,omitempty"`
	Comparables []Comparable    `json:"comparables,omitempty"`
	Summary     string          `json:"summary,omitempty"`
	ItemID      string          `json:"item_id,omitempty"`
	PoolSize    int             `json:"pool_size"`
	Geocoded    bool            `json:"geocoded"`
	Error       string          `json:"error,omitempty"`
}

// Run records one valuation request and its lifecycle in the store.
type Run struct {
	ID        string           `json:"id"`
	Subject   SubjectProperty  `json:"subject"`
	Status    RunStatus        `json:"status"`
	Result    *ValuationResult `json:"result,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
