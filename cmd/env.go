package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/engr-sharif/sbmm-planning-tool/internal/analysis"
	"github.com/engr-sharif/sbmm-planning-tool/internal/app"
	"github.com/engr-sharif/sbmm-planning-tool/internal/dataset"
	"github.com/engr-sharif/sbmm-planning-tool/internal/labels"
	"github.com/engr-sharif/sbmm-planning-tool/internal/model"
	"github.com/engr-sharif/sbmm-planning-tool/internal/resilience"
	"github.com/engr-sharif/sbmm-planning-tool/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.SQLitePath
		if dsn == "" {
			dsn = "sbmm.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
			Schema:   cfg.Store.PostgresSchema,
		})
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func datasetPaths() dataset.Paths {
	return dataset.Paths{
		Dir:             cfg.Data.Dir,
		Samples2025:     cfg.Data.Samples2025,
		EASamples:       cfg.Data.EASamples,
		EATestPits:      cfg.Data.EATestPits,
		TestPits2025:    cfg.Data.TestPits2025,
		SoilBorings2025: cfg.Data.SoilBorings2025,
	}
}

func analysisOptions() analysis.Options {
	a := cfg.Analysis
	return analysis.Options{
		GridSizeFt:      a.GridSizeFt,
		MinGridSizeFt:   a.MinGridSizeFt,
		MaxGridSizeFt:   a.MaxGridSizeFt,
		MetersPerDegLat: a.MetersPerDegLat,
		MetersPerDegLon: a.MetersPerDegLon,
		IncludePlanned:  a.IncludePlanned,
	}
}

func labelEngine() *labels.Engine {
	return labels.NewEngine(
		labels.WithOffset(cfg.Labels.OffsetDeg),
		labels.WithMinSeparation(cfg.Labels.MinSeparation),
		labels.WithMultipliers(cfg.Labels.MaxMultiplier),
	)
}

// env is the per-command session environment.
type env struct {
	store   store.Store
	session *app.Session
}

// openEnv builds a session bound to the configured store and plan. Datasets
// are loaded only when withData is set; plan editing does not need them.
func openEnv(ctx context.Context, withData bool) (*env, error) {
	var data *model.Datasets
	if withData {
		d, err := dataset.Load(ctx, datasetPaths())
		if err != nil {
			return nil, err
		}
		data = d
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}

	s := app.New(app.Options{
		Data:           data,
		Persist:        st,
		Plan:           cfg.Planning.Plan,
		Labels:         labelEngine(),
		ClipboardTitle: cfg.Export.ClipboardTitle,
		SaveRetry:      resilience.RetryConfig{MaxAttempts: cfg.Store.SaveAttempts},
	})
	if err := s.Open(ctx); err != nil {
		s.Close()
		st.Close() //nolint:errcheck
		return nil, err
	}
	return &env{store: st, session: s}, nil
}

func (e *env) Close() {
	e.session.Close()
	if err := e.store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}
