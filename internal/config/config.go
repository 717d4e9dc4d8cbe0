// Package config loads graw CLI settings from defaults, an optional TOML
// file, a .env file and the environment, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/jamesprial/graw/internal/logging"
	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverNone   = "none"
)

// DotEnvFile is the .env file read by Load.
const DotEnvFile = ".env"

// Auth holds the Reddit script-app credentials.
type Auth struct {
	ClientID     string `toml:"client_id" env:"CLIENT_ID"`
	ClientSecret string `toml:"client_secret" env:"CLIENT_SECRET"`
	Username     string `toml:"username" env:"USERNAME"`
	Password     string `toml:"password" env:"PASSWORD"`
	UserAgent    string `toml:"user_agent" env:"USER_AGENT"`
}

// Log controls the CLI logger.
type Log struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"`
}

// Storage selects where access tokens are cached between runs.
type Storage struct {
	Driver string `toml:"driver" env:"DRIVER"`
	Path   string `toml:"path" env:"PATH"`
}

// Rate configures optional client-side pacing. Zero disables it.
type Rate struct {
	RequestsPerMinute int `toml:"requests_per_minute" env:"REQUESTS_PER_MINUTE"`
	Burst             int `toml:"burst" env:"BURST"`
}

// API overrides the Reddit hosts and timeouts. Empty values keep the
// client defaults.
type API struct {
	BaseURL string `toml:"base_url" env:"BASE_URL"`
	AuthURL string `toml:"auth_url" env:"AUTH_URL"`
	// Timeout is a Go duration string such as "30s".
	Timeout string `toml:"timeout" env:"TIMEOUT"`
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (a API) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return d, nil
}

// Config is the full CLI configuration. Environment variables use the
// GRAW_ prefix, e.g. GRAW_AUTH_CLIENT_ID or GRAW_AUTOSLEEP.
type Config struct {
	Auth      Auth    `toml:"auth" envPrefix:"AUTH_"`
	AutoSleep bool    `toml:"autosleep" env:"AUTOSLEEP"`
	Log       Log     `toml:"log" envPrefix:"LOG_"`
	Storage   Storage `toml:"storage" envPrefix:"STORAGE_"`
	Rate      Rate    `toml:"rate" envPrefix:"RATE_"`
	API       API     `toml:"api" envPrefix:"API_"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		AutoSleep: true,
		Log:       Log{Level: "info", Format: "text"},
		Storage:   Storage{Driver: DriverSQLite},
	}
}

// Load reads path (skipped when empty), then DotEnvFile if present, then
// the environment, and validates the result.
func Load(path string) (*Config, error) {
	return load(path, DotEnvFile)
}

func load(path, dotenv string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", dotenv, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "GRAW_"}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return &pkgerrs.ConfigError{Field: path, Message: "unrecognized keys:\n" + strict.String()}
		}
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// resolve fills values derived from others.
func (c *Config) resolve() error {
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if c.Storage.Driver == DriverNone || c.Storage.Path != "" {
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}

	name := "tokens.db"
	if c.Storage.Driver == DriverBolt {
		name = "tokens.bolt"
	}
	c.Storage.Path = filepath.Join(home, ".graw", name)
	return nil
}

func (c *Config) validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return &pkgerrs.ConfigError{Field: "log.level", Message: err.Error()}
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return &pkgerrs.ConfigError{Field: "log.format", Message: fmt.Sprintf("must be text or json, got %q", c.Log.Format)}
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverBolt, DriverNone:
	default:
		return &pkgerrs.ConfigError{Field: "storage.driver", Message: fmt.Sprintf("must be sqlite, bolt or none, got %q", c.Storage.Driver)}
	}

	if c.Rate.RequestsPerMinute < 0 {
		return &pkgerrs.ConfigError{Field: "rate.requests_per_minute", Message: "must not be negative"}
	}
	if _, err := c.API.TimeoutDuration(); err != nil {
		return &pkgerrs.ConfigError{Field: "api.timeout", Message: err.Error()}
	}
	if c.Rate.Burst < 0 {
		return &pkgerrs.ConfigError{Field: "rate.burst", Message: "must not be negative"}
	}
	return nil
}
