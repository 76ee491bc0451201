package comps

import "github.com/rotisserie/eris"

// Domain errors. The engine never retries, logs, or swallows these; transport
// mapping belongs to the caller.
var (
	// ErrNoComparables indicates selection produced an empty set. Select
	// itself returns the empty slice without error; callers that require a
	// non-empty set use this sentinel.
	ErrNoComparables = eris.New("comps: no comparables found")

	// ErrInsufficientData indicates no comparable carried both a positive
	// price and a positive living area.
	ErrInsufficientData = eris.New("comps: insufficient comparable data")
)
