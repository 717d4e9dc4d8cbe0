package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// clearConfigEnv unsets every GRAW_ variable so tests start clean.
func clearConfigEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"GRAW_AUTH_CLIENT_ID",
		"GRAW_AUTH_CLIENT_SECRET",
		"GRAW_AUTH_USERNAME",
		"GRAW_AUTH_PASSWORD",
		"GRAW_AUTH_USER_AGENT",
		"GRAW_AUTOSLEEP",
		"GRAW_LOG_LEVEL",
		"GRAW_LOG_FORMAT",
		"GRAW_STORAGE_DRIVER",
		"GRAW_STORAGE_PATH",
		"GRAW_RATE_REQUESTS_PER_MINUTE",
		"GRAW_RATE_BURST",
		"GRAW_API_BASE_URL",
		"GRAW_API_AUTH_URL",
		"GRAW_API_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleTOML = `
autosleep = false

[auth]
client_id = "cid"
client_secret = "secret"
username = "alice"
password = "hunter2"
user_agent = "linux:graw:v1.0 (by /u/alice)"

[log]
level = "debug"
format = "json"

[storage]
driver = "bolt"
path = "/tmp/graw.bolt"
`

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.True(t, cfg.AutoSleep)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "tokens.db", filepath.Base(cfg.Storage.Path))
	assert.Equal(t, ".graw", filepath.Base(filepath.Dir(cfg.Storage.Path)))
}

func TestLoad_File(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := load(writeFile(t, "graw.toml", sampleTOML), "")
	require.NoError(t, err)

	assert.False(t, cfg.AutoSleep)
	assert.Equal(t, "cid", cfg.Auth.ClientID)
	assert.Equal(t, "alice", cfg.Auth.Username)
	assert.Equal(t, "linux:graw:v1.0 (by /u/alice)", cfg.Auth.UserAgent)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DriverBolt, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/graw.bolt", cfg.Storage.Path)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GRAW_AUTH_USERNAME", "bob")
	t.Setenv("GRAW_AUTOSLEEP", "true")
	t.Setenv("GRAW_RATE_REQUESTS_PER_MINUTE", "30")

	cfg, err := load(writeFile(t, "graw.toml", sampleTOML), "")
	require.NoError(t, err)

	assert.Equal(t, "bob", cfg.Auth.Username)
	assert.Equal(t, "cid", cfg.Auth.ClientID, "untouched keys keep file values")
	assert.True(t, cfg.AutoSleep)
	assert.Equal(t, 30, cfg.Rate.RequestsPerMinute)
}

func TestLoad_DotEnv(t *testing.T) {
	clearConfigEnv(t)
	dotenv := writeFile(t, ".env", "GRAW_AUTH_CLIENT_ID=from-dotenv\nGRAW_STORAGE_DRIVER=none\n")
	t.Cleanup(func() {
		os.Unsetenv("GRAW_AUTH_CLIENT_ID")
		os.Unsetenv("GRAW_STORAGE_DRIVER")
	})

	cfg, err := load("", dotenv)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Auth.ClientID)
	assert.Equal(t, DriverNone, cfg.Storage.Driver)
	assert.Empty(t, cfg.Storage.Path)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	clearConfigEnv(t)

	_, err := load(writeFile(t, "graw.toml", "[auth]\nclient_idd = \"typo\"\n"), "")
	require.Error(t, err)

	var cfgErr *pkgerrs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "client_idd")
}

func TestLoad_MissingFile(t *testing.T) {
	clearConfigEnv(t)

	_, err := load(filepath.Join(t.TempDir(), "nope.toml"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		field string
	}{
		{name: "log level", key: "GRAW_LOG_LEVEL", value: "loud", field: "log.level"},
		{name: "log format", key: "GRAW_LOG_FORMAT", value: "xml", field: "log.format"},
		{name: "driver", key: "GRAW_STORAGE_DRIVER", value: "postgres", field: "storage.driver"},
		{name: "rate", key: "GRAW_RATE_BURST", value: "-1", field: "rate.burst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("GRAW_STORAGE_PATH", "/tmp/graw.db")
			t.Setenv(tt.key, tt.value)

			_, err := load("", "")
			var cfgErr *pkgerrs.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestAPITimeout(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GRAW_STORAGE_DRIVER", "none")
	t.Setenv("GRAW_API_TIMEOUT", "45s")
	t.Cleanup(func() { os.Unsetenv("GRAW_API_TIMEOUT") })

	cfg, err := load("", "")
	require.NoError(t, err)

	d, err := cfg.API.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, d)

	t.Setenv("GRAW_API_TIMEOUT", "soon")
	_, err = load("", "")
	var cfgErr *pkgerrs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "api.timeout", cfgErr.Field)
}
