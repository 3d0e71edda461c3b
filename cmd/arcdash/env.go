package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/arcitech/arcdash/internal/config"
	"github.com/arcitech/arcdash/internal/logging"
	"github.com/arcitech/arcdash/internal/nav"
	"github.com/arcitech/arcdash/internal/session"
	"github.com/arcitech/arcdash/internal/tokenstore"
	"github.com/arcitech/arcdash/pkg/client"
)

// env is everything one invocation runs on, built once in dependency order:
// config, logger, store, bus, client, session.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	logFile io.Closer
	store   *tokenstore.FileStore
	bus     *nav.Bus
	api     *client.Client
	session *session.Service
}

func newEnv(debug bool) (*env, error) {
	cfg, err := config.NewLoader(logging.Discard()).Load()
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Debug = true
	}

	logger, logFile, err := logging.Open(cfg.StateDir, logging.Options{
		Debug:       cfg.Debug,
		Environment: cfg.Environment,
	})
	if err != nil {
		return nil, err
	}
	logger = logger.With("version", version)

	store := tokenstore.NewFileStore(cfg.StateDir)
	bus := nav.NewBus()
	api := client.New(cfg.APIBaseURL, store,
		client.WithSignals(bus),
		client.WithLogger(logger),
		client.WithEnvironment(cfg.Environment),
		client.WithDebug(cfg.Debug),
		client.WithTimeout(cfg.Timeout),
	)
	svc := session.NewService(api, store,
		session.WithSignals(bus),
		session.WithLogger(logger),
	)

	return &env{
		cfg:     cfg,
		logger:  logger,
		logFile: logFile,
		store:   store,
		bus:     bus,
		api:     api,
		session: svc,
	}, nil
}

func (e *env) Close() error {
	if err := e.logFile.Close(); err != nil {
		return fmt.Errorf("close log: %w", err)
	}
	return nil
}
