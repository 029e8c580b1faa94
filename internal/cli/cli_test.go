package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var withingsEnv = []string{
	"WITHINGS_CLIENT_ID", "WITHINGS_CLIENT_SECRET", "WITHINGS_REDIRECT_URI",
	"WITHINGS_ACCESS_TOKEN", "WITHINGS_REFRESH_TOKEN", "WITHINGS_ENV_FILE",
	"WITHINGS_BASE_URL", "WITHINGS_METRICS_ENABLED", "WITHINGS_EXPORT_DIR",
}

// isolateEnv clears the variables the config reads and restores them after
// the test, including any the .env loader sets.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range withingsEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("1.2.3")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExitError(t *testing.T) {
	err := exitError(ExitAuth, "failed: %s", "nope")
	assert.Equal(t, ExitAuth, err.Code)
	assert.EqualError(t, err, "failed: nope")
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd("1.2.3")
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "auth", "status"}, names)
	assert.Equal(t, "1.2.3", root.Version)
}

func TestCliFlags(t *testing.T) {
	root := NewRootCmd("1.2.3")
	require.NoError(t, root.ParseFlags([]string{"--config", "/etc/w.yml", "--env-file", "/srv/.env", "--debug"}))

	flags := cliFlags(root)
	assert.Equal(t, "/etc/w.yml", flags.ConfigPath)
	assert.Equal(t, "/srv/.env", flags.EnvFile)
	assert.True(t, flags.DebugMode)
	assert.Equal(t, "1.2.3", flags.Version)
}

func TestStatus_Authenticated(t *testing.T) {
	isolateEnv(t)
	path := writeEnv(t, "WITHINGS_CLIENT_ID=id\nWITHINGS_CLIENT_SECRET=secret\nWITHINGS_ACCESS_TOKEN=a\nWITHINGS_REFRESH_TOKEN=r\n")

	out, err := execute(t, "status", "--env-file", path)

	require.NoError(t, err)
	assert.Contains(t, out, `"authenticated": true`)
	assert.Contains(t, out, `"has_refresh_token": true`)
	assert.Contains(t, out, path)
}

func TestStatus_NotAuthenticated(t *testing.T) {
	isolateEnv(t)
	path := writeEnv(t, "WITHINGS_CLIENT_ID=id\n")

	out, err := execute(t, "status", "--env-file", path)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitAuth, exitErr.Code)
	assert.Contains(t, out, `"authenticated": false`)
}

func TestStatus_BadConfigFile(t *testing.T) {
	isolateEnv(t)
	path := writeEnv(t, "")

	_, err := execute(t, "status", "--env-file", path, "--config", filepath.Join(t.TempDir(), "missing.yml"))

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitConfig, exitErr.Code)
}
