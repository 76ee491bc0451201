package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fire-ai/valuation-cli/internal/backend"
	"github.com/fire-ai/valuation-cli/internal/comps"
	"github.com/fire-ai/valuation-cli/internal/pool"
	"github.com/fire-ai/valuation-cli/internal/store"
	"github.com/fire-ai/valuation-cli/internal/valuation"
	"github.com/fire-ai/valuation-cli/pkg/geocode"
	"github.com/fire-ai/valuation-cli/pkg/summary"
)

// pipelineEnv bundles the pipeline with the resources it owns.
type pipelineEnv struct {
	Pipeline *valuation.Pipeline
	Provider pool.Provider
	Store    store.Store
}

func (e *pipelineEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

// poolFile lets commands swap the HTTP feed for a local workbook.
var poolFile string

func initStore(ctx context.Context) (store.Store, error) {
	if cfg.Store.Driver == "postgres" {
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "init postgres store")
		}
		return st, nil
	}

	st, err := store.NewSQLite(cfg.Store.SQLitePath)
	if err != nil {
		return nil, eris.Wrap(err, "init sqlite store")
	}
	return st, nil
}

func initProvider() (pool.Provider, error) {
	if poolFile != "" {
		zap.L().Info("using local candidate pool", zap.String("file", poolFile))
		return pool.NewFileProvider(poolFile), nil
	}
	if cfg.Pool.URL == "" {
		return nil, eris.New("pool url not configured")
	}
	return pool.NewHTTPProvider(pool.Options{
		URL:        cfg.Pool.URL,
		Timeout:    time.Duration(cfg.Pool.TimeoutSecs) * time.Second,
		CacheTTL:   time.Duration(cfg.Pool.CacheTTLMinutes) * time.Minute,
		MaxRetries: cfg.Pool.MaxRetries,
		RateRPS:    cfg.Pool.RateLimitRPS,
	})
}

func initGeocoder() geocode.Client {
	opts := []geocode.Option{}
	if cfg.Geocode.MLSGridToken != "" {
		opts = append(opts, geocode.WithMLSGrid(cfg.Geocode.MLSGridURL, cfg.Geocode.MLSGridToken))
	}
	if cfg.Geocode.RateLimitRPS > 0 {
		opts = append(opts, geocode.WithRateLimit(cfg.Geocode.RateLimitRPS))
	}
	return geocode.NewClient(opts...)
}

func initSummarizer() summary.Generator {
	if cfg.Summary.Disabled || cfg.Summary.Key == "" {
		zap.L().Info("summary generation disabled, using static text")
		return summary.NewStaticGenerator()
	}
	return summary.NewClaudeGenerator(cfg.Summary.Key,
		summary.WithModel(cfg.Summary.Model),
		summary.WithMaxTokens(cfg.Summary.MaxTokens),
		summary.WithTemperature(cfg.Summary.Temperature),
	)
}

func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	provider, err := initProvider()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	var poster valuation.Poster
	if cfg.Backend.PostURL != "" {
		poster = backend.NewPoster(cfg.Backend.PostURL,
			backend.WithTimeout(time.Duration(cfg.Backend.TimeoutSecs)*time.Second))
	} else {
		zap.L().Debug("backend post url not set, skipping downstream post")
	}

	p := valuation.New(
		st,
		provider,
		initGeocoder(),
		comps.NewSelector(cfg.Comps.Filter),
		initSummarizer(),
		poster,
		cfg.Comps.Limit,
	)

	return &pipelineEnv{Pipeline: p, Provider: provider, Store: st}, nil
}
