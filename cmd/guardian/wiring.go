package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"guardian/internal/api"
	"guardian/internal/app"
	"guardian/internal/kv"
	"guardian/internal/platform/config"
	"guardian/internal/platform/logger"
	"guardian/internal/platform/metrics"
	"guardian/internal/platform/redis"
	"guardian/internal/session"
)

// deps is everything a command needs, built once per invocation.
type deps struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	store   *session.Store
	app     *app.App
	health  func(ctx context.Context) error
	closers []io.Closer
}

func (d *deps) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

type depsOptions struct {
	stdout, stderr io.Writer
	openBrowser    bool
}

func buildDeps(ctx context.Context, opts depsOptions) (*deps, error) {
	cfg := config.FromEnv()
	log := logger.NewWithWriter(opts.stderr, cfg.Log)
	m := metrics.New()

	d := &deps{cfg: cfg, logger: log, metrics: m}
	backing, err := d.openStore(ctx)
	if err != nil {
		return nil, err
	}

	d.store = session.New(backing,
		session.WithLogger(log),
		session.WithMetrics(m),
		session.WithClearAttempts(cfg.Session.ClearAttempts),
	)
	client := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(log),
		api.WithMetrics(m),
	)
	browser := newSystemBrowser(opts.stdout, opts.openBrowser, log)
	d.app = app.New(d.store, client, browser, newTerminalNotifier(opts.stderr),
		app.WithLogger(log),
		app.WithRedirectURI(cfg.API.RedirectURI),
	)
	return d, nil
}

func (d *deps) openStore(ctx context.Context) (session.KeyValueStore, error) {
	switch d.cfg.Store.Backend {
	case config.StoreMemory:
		d.logger.WarnContext(ctx, "using in-memory store; the session will not survive this process")
		return kv.NewInMemory(), nil
	case config.StoreRedis:
		client, err := redis.New(ctx, d.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis store: %w", err)
		}
		if client == nil {
			return nil, errors.New("GUARDIAN_REDIS_URL is required for the redis store")
		}
		d.closers = append(d.closers, client)
		d.health = client.Health
		return kv.NewRedis(client.Client, kv.WithKeyPrefix(d.cfg.Redis.KeyPrefix)), nil
	default:
		return kv.NewFile(d.cfg.Store.Path), nil
	}
}
