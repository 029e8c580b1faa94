package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"withings-mcp/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearWithingsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WITHINGS_CLIENT_ID", "WITHINGS_CLIENT_SECRET", "WITHINGS_REDIRECT_URI",
		"WITHINGS_ACCESS_TOKEN", "WITHINGS_REFRESH_TOKEN", "WITHINGS_ENV_FILE",
		"WITHINGS_BASE_URL", "WITHINGS_LOG_LEVEL", "WITHINGS_LOG_DIR",
		"WITHINGS_CACHE_ENABLED", "WITHINGS_CACHE_SIZE", "WITHINGS_METRICS_ENABLED",
		"WITHINGS_METRICS_LISTEN", "WITHINGS_EXPORT_DIR",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestNewConfigProvider_Defaults(t *testing.T) {
	clearWithingsEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("# none\n"), 0600))

	conf, err := NewConfigProvider(&structures.CliFlags{EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "WithingsMCP", conf.AppName)
	assert.Equal(t, DefaultBaseURL, conf.Withings.BaseURL)
	assert.Equal(t, DefaultAuthURL, conf.Withings.AuthURL)
	assert.Equal(t, DefaultRedirectURI, conf.Withings.RedirectURI)
	assert.Equal(t, DefaultScope, conf.Withings.Scope)
	assert.Equal(t, 30*time.Second, conf.Withings.Timeout)
	assert.Equal(t, envFile, conf.Withings.EnvFile)
	assert.Equal(t, "info", conf.Logger.Level)
	assert.True(t, conf.Cache.Enabled)
	assert.Equal(t, time.Minute, conf.Cache.TTL)
	assert.False(t, conf.Metrics.Enabled)
	assert.Equal(t, os.TempDir(), conf.Export.Dir)
}

func TestNewConfigProvider_LoadsEnvFile(t *testing.T) {
	clearWithingsEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "WITHINGS_CLIENT_ID=cid\nWITHINGS_CLIENT_SECRET=secret\n# comment\nWITHINGS_ACCESS_TOKEN=at\nWITHINGS_REFRESH_TOKEN=rt\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0600))

	conf, err := NewConfigProvider(&structures.CliFlags{EnvFile: envFile, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, "cid", conf.Withings.ClientID)
	assert.Equal(t, "secret", conf.Withings.ClientSecret)
	assert.Equal(t, "at", conf.Withings.AccessToken)
	assert.Equal(t, "rt", conf.Withings.RefreshToken)
	assert.True(t, conf.Debug)
}

func TestNewConfigProvider_ProcessEnvWins(t *testing.T) {
	clearWithingsEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("WITHINGS_CLIENT_ID=from-file\n"), 0600))
	t.Setenv("WITHINGS_CLIENT_ID", "from-env")

	conf, err := NewConfigProvider(&structures.CliFlags{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "from-env", conf.Withings.ClientID)
}

func TestNewConfigProvider_YamlFile(t *testing.T) {
	clearWithingsEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := "withings:\n  scope: user.metrics\n  timeout: 5s\nlogger:\n  level: debug\ncache:\n  enabled: false\nmetrics:\n  enabled: true\n  listen: 127.0.0.1:9999\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0600))

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: cfgPath, EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, cfgPath, conf.Path)
	assert.Equal(t, "user.metrics", conf.Withings.Scope)
	assert.Equal(t, 5*time.Second, conf.Withings.Timeout)
	assert.Equal(t, "debug", conf.Logger.Level)
	assert.False(t, conf.Cache.Enabled)
	assert.True(t, conf.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9999", conf.Metrics.Listen)
}

func TestNewConfigProvider_MissingConfigFile(t *testing.T) {
	clearWithingsEnv(t)
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestNewConfigProvider_InvalidLogLevel(t *testing.T) {
	clearWithingsEnv(t)
	t.Setenv("WITHINGS_LOG_LEVEL", "loud")
	_, err := NewConfigProvider(&structures.CliFlags{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.Error(t, err)
}

func TestFindEnvFile_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", ".env"), []byte("X=1\n"), 0600))

	path, ok := FindEnvFile(nested)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(root, "a", ".env"), path)
}

func TestFindEnvFile_IgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".env"), 0755))

	path, ok := FindEnvFile(root)
	if ok {
		assert.NotEqual(t, filepath.Join(root, ".env"), path)
	}
}
