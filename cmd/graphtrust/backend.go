package main

import (
	"context"
	"fmt"
	"log/slog"

	"graphtrust/internal/model"
	"graphtrust/internal/model/store"
	"graphtrust/internal/platform/config"
	"graphtrust/internal/platform/postgres"
	redisclient "graphtrust/internal/platform/redis"
)

// backend is the configured model registry plus its connection lifecycle.
type backend struct {
	registry model.Registry
	health   func(ctx context.Context) error
	close    func() error
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	retention := store.WithRetention(cfg.Model.Retention)
	noop := func() error { return nil }
	healthy := func(context.Context) error { return nil }

	switch cfg.Model.Store {
	case config.StoreMemory:
		return &backend{registry: store.NewInMemory(retention), health: healthy, close: noop}, nil

	case config.StoreFile:
		r, err := store.NewFile(cfg.Model.Dir, retention, store.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("open model dir: %w", err)
		}
		return &backend{registry: r, health: healthy, close: noop}, nil

	case config.StoreRedis:
		client, err := redisclient.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &backend{
			registry: store.NewRedis(client.Client, retention),
			health:   client.Health,
			close:    client.Close,
		}, nil

	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		r := store.NewPostgres(db, retention)
		if err := r.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure model schema: %w", err)
		}
		return &backend{registry: r, health: db.PingContext, close: db.Close}, nil
	}
	return nil, fmt.Errorf("unknown model store %q", cfg.Model.Store)
}

func forestConfig(cfg config.ModelConfig) model.ForestConfig {
	f := model.DefaultForestConfig()
	if cfg.Trees > 0 {
		f.Trees = cfg.Trees
	}
	if cfg.MaxDepth > 0 {
		f.MaxDepth = cfg.MaxDepth
	}
	return f
}
