package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/thomaskoefod/feeddash/internal/api"
	"github.com/thomaskoefod/feeddash/internal/config"
	"github.com/thomaskoefod/feeddash/internal/database"
	"github.com/thomaskoefod/feeddash/internal/feedcache"
	"github.com/thomaskoefod/feeddash/internal/logging"
	"github.com/thomaskoefod/feeddash/internal/session"
)

// app holds the pieces every command needs.
type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	db      *database.DB
	session *session.Session
	client  *api.Client
	cache   *feedcache.Cache

	closers []io.Closer
}

func openApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, logFile, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, closers: []io.Closer{logFile}}

	a.db, err = database.New(cfg.Storage.Path)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append([]io.Closer{a.db}, a.closers...)

	a.session, err = session.New(ctx, a.db)
	if err != nil {
		a.Close()
		return nil, err
	}
	// A key from the environment only seeds a session that does not exist yet.
	if !a.session.IsAuthenticated() && cfg.APIKey != "" {
		if err := a.session.SetToken(ctx, cfg.APIKey); err != nil {
			a.Close()
			return nil, fmt.Errorf("seeding session from %s: %w", config.EnvAPIKey, err)
		}
	}

	a.client = api.NewClient(a.session, api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  log,
	})
	a.cache = feedcache.New(a.client, log)

	log.WithFields(logrus.Fields{
		"api":     cfg.API.BaseURL,
		"storage": cfg.Storage.Path,
	}).Info("feeddash starting")
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.WithError(err).Warn("close failed")
		}
	}
	a.closers = nil
}
