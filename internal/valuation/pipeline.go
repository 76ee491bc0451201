// Package valuation orchestrates a single run: fetch the candidate pool,
// geocode the subject, select comparables, build features, summarize, and
// post the result downstream.
package valuation

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fire-ai/valuation-cli/internal/backend"
	"github.com/fire-ai/valuation-cli/internal/comps"
	"github.com/fire-ai/valuation-cli/internal/model"
	"github.com/fire-ai/valuation-cli/internal/pool"
	"github.com/fire-ai/valuation-cli/internal/store"
	"github.com/fire-ai/valuation-cli/pkg/geocode"
	"github.com/fire-ai/valuation-cli/pkg/summary"
)

// Poster delivers a finished valuation downstream.
type Poster interface {
	Post(ctx context.Context, payload backend.Payload) (string, error)
}

// Pipeline runs valuations end to end.
type Pipeline struct {
	store      store.Store
	provider   pool.Provider
	geocoder   geocode.Client
	selector   *comps.Selector
	summarizer summary.Generator
	poster     Poster
	limit      int
}

// New creates a Pipeline. The geocoder and poster may be nil; those phases
// are skipped when absent.
func New(
	st store.Store,
	provider pool.Provider,
	geocoder geocode.Client,
	selector *comps.Selector,
	summarizer summary.Generator,
	poster Poster,
	limit int,
) *Pipeline {
	if limit <= 0 {
		limit = comps.DefaultLimit
	}
	return &Pipeline{
		store:      st,
		provider:   provider,
		geocoder:   geocoder,
		selector:   selector,
		summarizer: summarizer,
		poster:     poster,
		limit:      limit,
	}
}

// Run executes the full pipeline for one subject property. The returned
// result is also persisted; a failed run is recorded with its cause.
func (p *Pipeline) Run(ctx context.Context, subject model.SubjectProperty) (*model.ValuationResult, error) {
	log := zap.L().With(
		zap.String("city", subject.City),
		zap.String("state", subject.State),
		zap.String("zip", subject.ZipCode),
	)
	log.Info("valuation: starting run")

	if err := subject.Validate(); err != nil {
		return nil, eris.Wrap(err, "valuation: validate subject")
	}

	run, err := p.store.CreateRun(ctx, subject)
	if err != nil {
		return nil, eris.Wrap(err, "valuation: create run")
	}
	log = log.With(zap.String("run_id", run.ID))

	setStatus := func(status model.RunStatus) {
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("valuation: failed to update status", zap.Error(statusErr))
		}
	}

	fail := func(cause error) (*model.ValuationResult, error) {
		log.Error("valuation: run failed", zap.Error(cause))
		if failErr := p.store.FailRun(ctx, run.ID, cause); failErr != nil {
			log.Warn("valuation: failed to record failure", zap.Error(failErr))
		}
		return nil, cause
	}

	result := &model.ValuationResult{
		RunID:   run.ID,
		Subject: subject,
	}

	// Candidate pool
	setStatus(model.RunStatusFetchingPool)
	candidates, err := p.provider.Candidates(ctx)
	if err != nil {
		return fail(eris.Wrap(err, "valuation: fetch pool"))
	}
	result.PoolSize = len(candidates)
	log.Info("valuation: pool fetched", zap.Int("candidates", len(candidates)))

	// Geocode the subject when coordinates are missing. A miss degrades to
	// area-based ranking, it does not fail the run.
	if p.geocoder != nil && !subject.HasCoordinates() {
		setStatus(model.RunStatusGeocoding)
		geo, geoErr := p.geocoder.Geocode(ctx, geocode.AddressInput{
			Street:  subject.Address,
			City:    subject.City,
			State:   subject.State,
			ZipCode: subject.ZipCode,
		})
		switch {
		case geoErr != nil:
			log.Warn("valuation: geocoding unavailable", zap.Error(geoErr))
		case geo.Matched:
			subject.SetCoordinates(geo.Latitude, geo.Longitude)
			result.Subject = subject
			result.Geocoded = true
			log.Info("valuation: subject geocoded",
				zap.String("source", geo.Source),
				zap.String("quality", geo.Quality),
			)
		default:
			log.Info("valuation: no geocoding match")
		}
	} else if subject.HasCoordinates() {
		result.Geocoded = true
	}

	// Comparable selection
	setStatus(model.RunStatusSelecting)
	comparables := p.selector.Select(&subject, candidates, p.limit)
	if len(comparables) == 0 {
		return fail(eris.Wrapf(comps.ErrNoComparables, "valuation: %s, %s", subject.City, subject.State))
	}
	result.Comparables = comparables
	log.Info("valuation: comparables selected", zap.Int("count", len(comparables)))

	// Feature aggregation
	setStatus(model.RunStatusAggregating)
	features, err := comps.Build(comparables, subject.ConditionScore)
	if err != nil {
		return fail(eris.Wrap(err, "valuation: build features"))
	}
	result.Features = features
	log.Info("valuation: features built",
		zap.Int64("average_price", features.AveragePrice),
		zap.Int64("price_min", features.PriceRange.Min),
		zap.Int64("price_max", features.PriceRange.Max),
	)

	// Summary
	if p.summarizer != nil {
		setStatus(model.RunStatusSummarizing)
		text, sumErr := p.summarizer.Generate(ctx, subject, *features)
		if sumErr != nil {
			return fail(eris.Wrap(sumErr, "valuation: generate summary"))
		}
		result.Summary = text
	}

	// Downstream post
	if p.poster != nil {
		setStatus(model.RunStatusPosting)
		itemID, postErr := p.poster.Post(ctx, backend.NewPayload(subject, *features, result.Summary))
		if postErr != nil {
			return fail(eris.Wrap(postErr, "valuation: post result"))
		}
		result.ItemID = itemID
	}

	if err := p.store.UpdateRunResult(ctx, run.ID, result); err != nil {
		return fail(eris.Wrap(err, "valuation: persist result"))
	}
	log.Info("valuation: run complete")

	return result, nil
}
