package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DASHBOARD_API_URL", "LOG_LEVEL", "DASHBOARD_FALLBACK_MESSAGE"} {
		if old, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, old) })
		}
	}
	// Keep godotenv away from any .env next to the package.
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultFallbackMessage, cfg.FallbackMessage)
	assert.False(t, cfg.Debug())
}

func TestLoadConfig_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASHBOARD_API_URL", "http://api.internal:9000/")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://api.internal:9000", cfg.APIBaseURL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.True(t, cfg.Debug())
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("DASHBOARD_FALLBACK_MESSAGE=Sin conexión\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DASHBOARD_FALLBACK_MESSAGE") })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "Sin conexión", cfg.FallbackMessage)
}

func TestLoadConfig_FileOverridesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASHBOARD_API_URL", "http://from-env:8000")
	t.Setenv("LOG_LEVEL", "WARN")

	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: http://from-file:8000\nfallback_message: Fallo\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-file:8000", cfg.APIBaseURL)
	assert.Equal(t, "WARN", cfg.LogLevel)
	assert.Equal(t, "Fallo", cfg.FallbackMessage)
}

func TestLoadConfig_FileErrors(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("api_base_url: [unclosed"), 0o600))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadConfig_EmptyBaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASHBOARD_API_URL", "")

	_, err := LoadConfig("")
	assert.Error(t, err)
}
