package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/graw/test_helpers"
)

// setEnv points the CLI at ms with no token store.
func setEnv(t *testing.T, ms *test_helpers.MockServer) {
	t.Helper()
	for key, value := range map[string]string{
		"GRAW_AUTH_CLIENT_ID":     "client-id",
		"GRAW_AUTH_CLIENT_SECRET": "client-secret",
		"GRAW_AUTH_USERNAME":      "alice",
		"GRAW_AUTH_PASSWORD":      "hunter2",
		"GRAW_AUTH_USER_AGENT":    "linux:graw-cli-test:v1.0 (by /u/alice)",
		"GRAW_API_BASE_URL":       ms.URL(),
		"GRAW_API_AUTH_URL":       ms.URL(),
		"GRAW_STORAGE_DRIVER":     "none",
		"GRAW_LOG_LEVEL":          "error",
	} {
		t.Setenv(key, value)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configPath, logLevel = "", ""
		tokenShow = false
		linksSort, linksLimit, linksAfter, linksBefore = "hot", 0, "", ""
		linksPeriod, linksGeo, linksShowAll = "", "", false
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func newServer(t *testing.T) *test_helpers.MockServer {
	t.Helper()
	ms := test_helpers.NewMockServer()
	t.Cleanup(ms.Close)
	return ms
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "graw version dev")
}

func TestTokenCmd(t *testing.T) {
	ms := newServer(t)
	setEnv(t, ms)

	out, err := execute(t, "token")
	require.NoError(t, err)
	assert.Contains(t, out, "username:   alice")
	assert.Contains(t, out, "scope:      *")
	assert.NotContains(t, out, "mock_token")

	out, err = execute(t, "token", "--show")
	require.NoError(t, err)
	assert.Contains(t, out, "token:      mock_token")
}

func TestTokenCmd_InvalidGrant(t *testing.T) {
	ms := newServer(t)
	ms.SetResponse(test_helpers.TokenPath, test_helpers.InvalidGrantResponse())
	setEnv(t, ms)

	_, err := execute(t, "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth error")
}

func TestLinksCmd(t *testing.T) {
	ms := newServer(t)
	ms.SetResponse("/r/golang/top", test_helpers.LinkListing("x", 2, "t3_x1"))
	setEnv(t, ms)

	out, err := execute(t, "links", "golang", "--sort", "top", "--period", "week", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "t3_x0")
	assert.Contains(t, out, "Link x1")
	assert.Contains(t, out, "after: t3_x1")
}

func TestLinksCmd_ArgumentErrorBeforeNetwork(t *testing.T) {
	ms := newServer(t)
	setEnv(t, ms)

	_, err := execute(t, "links", "golang", "--limit", "500")
	require.Error(t, err)
	assert.Zero(t, ms.TotalCalls())

	_, err = execute(t, "links", "golang", "--sort", "sideways")
	require.Error(t, err)
}

func TestMeCmd(t *testing.T) {
	ms := newServer(t)
	ms.SetResponse("/api/v1/me", test_helpers.JSONResponse(`{"id":"abc","name":"alice","link_karma":7}`))
	setEnv(t, ms)

	out, err := execute(t, "me")
	require.NoError(t, err)
	assert.Contains(t, out, "u/alice")
	assert.Contains(t, out, "link karma:    7")
}

func TestTokenCmd_ReusesStoredToken(t *testing.T) {
	for _, driver := range []string{"sqlite", "bolt"} {
		t.Run(driver, func(t *testing.T) {
			ms := newServer(t)
			setEnv(t, ms)
			t.Setenv("GRAW_STORAGE_DRIVER", driver)
			t.Setenv("GRAW_STORAGE_PATH", filepath.Join(t.TempDir(), "state", "tokens"))

			_, err := execute(t, "token")
			require.NoError(t, err)
			_, err = execute(t, "token")
			require.NoError(t, err)

			assert.Equal(t, 1, ms.GetCallCount(test_helpers.TokenPath))
		})
	}
}

func TestSchemaUpgradeAndPurge(t *testing.T) {
	ms := newServer(t)
	setEnv(t, ms)
	t.Setenv("GRAW_STORAGE_DRIVER", "sqlite")
	t.Setenv("GRAW_STORAGE_PATH", filepath.Join(t.TempDir(), "tokens.db"))

	out, err := execute(t, "schema", "upgrade")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1")

	out, err = execute(t, "purge", "--older-than", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "1h0m0s")
}

func TestSchemaUpgrade_RequiresSQLite(t *testing.T) {
	ms := newServer(t)
	setEnv(t, ms)

	_, err := execute(t, "schema", "upgrade")
	require.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	ms := newServer(t)
	setEnv(t, ms)
	os.Unsetenv("GRAW_AUTH_USERNAME")

	path := filepath.Join(t.TempDir(), "graw.toml")
	require.NoError(t, os.WriteFile(path, []byte("[auth]\nusername = \"from-file\"\n"), 0o600))

	out, err := execute(t, "--config", path, "token")
	require.NoError(t, err)
	assert.Contains(t, out, "username:   from-file")
}
