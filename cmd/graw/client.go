package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jamesprial/graw"
	"github.com/jamesprial/graw/internal/config"
	"github.com/jamesprial/graw/internal/logging"
	"github.com/jamesprial/graw/pkg/storage"
	"github.com/jamesprial/graw/pkg/storage/bolt"
	"github.com/jamesprial/graw/pkg/storage/sqlite"
)

// session bundles what a command needs to talk to Reddit.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	store  storage.TokenStore
	client *graw.Client
}

func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("closing token store", "error", err)
		}
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openStore opens the configured token store, or returns nil for the
// "none" driver. SQLite databases are migrated on open.
func openStore(cfg *config.Config) (storage.TokenStore, error) {
	if cfg.Storage.Driver == config.DriverNone {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o700); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		if err := store.ApplyMigrations(); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	case config.DriverBolt:
		return bolt.Open(cfg.Storage.Path)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// newSession loads the configuration and builds a client.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	timeout, err := cfg.API.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, store: store}

	clientCfg := &graw.Config{
		ClientID:          cfg.Auth.ClientID,
		ClientSecret:      cfg.Auth.ClientSecret,
		Username:          cfg.Auth.Username,
		Password:          cfg.Auth.Password,
		UserAgent:         cfg.Auth.UserAgent,
		AutoSleep:         graw.Bool(cfg.AutoSleep),
		BaseURL:           cfg.API.BaseURL,
		AuthURL:           cfg.API.AuthURL,
		Timeout:           timeout,
		RequestsPerMinute: cfg.Rate.RequestsPerMinute,
		Burst:             cfg.Rate.Burst,
		Store:             store,
		Logger:            logger,
	}

	s.client, err = graw.NewClient(clientCfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
