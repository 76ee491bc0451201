package comps

import (
	"math"
	"sort"

	"github.com/fire-ai/valuation-cli/internal/model"
)

// DefaultLimit caps the number of comparables returned by Select.
const DefaultLimit = 25

// Selector picks the admissible comparables for a subject, annotates them
// with distance and weight, and returns them ranked and truncated. It holds
// no request state and is safe for concurrent use against a shared pool.
type Selector struct {
	filter *Filter
}

// NewSelector creates a Selector with the given filter tolerances.
func NewSelector(cfg FilterConfig) *Selector {
	return &Selector{filter: NewFilter(cfg)}
}

// Select filters the candidate pool, builds annotated Comparable values, and
// returns at most limit of them (DefaultLimit when limit <= 0).
//
// Ranking: closest-first by distance when the subject has coordinates,
// otherwise by closest living area. Both sorts are stable so output is
// deterministic for a given pool order. An empty result is valid; rejecting
// it is the aggregator's concern.
//
// Candidates are never mutated: the pool may be a shared cached snapshot
// read by concurrent requests.
func (s *Selector) Select(subject *model.SubjectProperty, candidates []model.CandidateRecord, limit int) []model.Comparable {
	if limit <= 0 {
		limit = DefaultLimit
	}

	selected := make([]model.Comparable, 0, limit)
	for i := range candidates {
		candidate := &candidates[i]
		if !s.filter.Admissible(subject, candidate) {
			continue
		}

		comp := model.Comparable{
			CandidateRecord: *candidate,
			Weight:          NeutralWeight,
		}
		if d := SubjectDistance(subject, candidate); !math.IsInf(d, 1) {
			dist := d
			comp.DistanceMiles = &dist
			comp.Weight = Weight(d)
		}
		selected = append(selected, comp)
	}

	if subject.HasCoordinates() {
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].Distance() < selected[j].Distance()
		})
	} else {
		sort.SliceStable(selected, func(i, j int) bool {
			return areaDelta(&selected[i], subject) < areaDelta(&selected[j], subject)
		})
	}

	if len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

func areaDelta(c *model.Comparable, subject *model.SubjectProperty) int {
	return abs(c.AreaSqft - subject.SquareFootage)
}
