package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/streamqa/reconcile/internal/oracle"
	"github.com/streamqa/reconcile/internal/reconcile"
	"github.com/streamqa/reconcile/internal/runner"
	"github.com/streamqa/reconcile/internal/store"
	"github.com/streamqa/reconcile/pkg/anthropic"
)

// env bundles the wired collaborators a command needs.
type env struct {
	Runner *runner.Runner
	Store  store.Store
}

// newEnv wires the runner from configuration. The store is optional and
// disabled by an empty path.
func newEnv() (*env, error) {
	if cfg.Anthropic.Key == "" {
		zap.L().Warn("anthropic key not configured; archive matching will fail authentication")
	}

	matcher := oracle.NewLLMMatcher(anthropic.NewClient(cfg.Anthropic.Key), oracle.Options{
		Model:         cfg.Anthropic.Model,
		WindowMinutes: cfg.Match.WindowMinutes,
		RatePerSecond: cfg.Anthropic.RatePerSecond,
	})

	engine := reconcile.NewEngine(matcher, reconcile.Options{
		BatchSize:           cfg.Match.BatchSize,
		PropagationMinutes:  cfg.Match.PropagationMinutes,
		SimilarityThreshold: cfg.Match.SimilarityThreshold,
	})

	var st store.Store
	if cfg.Store.Path != "" {
		s, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, eris.Wrap(err, "open run store")
		}
		st = s
	}

	return &env{
		Runner: runner.New(engine, st),
		Store:  st,
	}, nil
}

// Close releases held resources.
func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("failed to close run store", zap.Error(err))
		}
	}
}
