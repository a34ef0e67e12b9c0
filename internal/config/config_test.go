package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WritesDefaultOnFirstRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, FileName))

	d := Default()
	assert.Equal(t, d.Backend, cfg.Backend)
	assert.Equal(t, d.ListenAddr, cfg.ListenAddr)
	assert.Equal(t, d.Generation, cfg.Generation)
	assert.False(t, cfg.DedupeInflight)
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`
backend: sqlite
data_dir: /var/lib/devotional
timezone: America/Chicago
listen_addr: 127.0.0.1:9000
log_level: debug
dedupe_inflight: true
generation:
  model: test/model
  max_tokens: 1200
  image_url: http://images.local/generate
schedule:
  csv_url: https://sheets.example/verses.csv
`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/devotional", cfg.DataDir)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.True(t, cfg.DedupeInflight)
	assert.Equal(t, "test/model", cfg.Generation.Model)
	assert.Equal(t, int64(1200), cfg.Generation.MaxTokens)
	assert.Equal(t, Default().Generation.BaseURL, cfg.Generation.BaseURL)
	assert.Equal(t, "https://sheets.example/verses.csv", cfg.Schedule.CSVURL)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", loc.String())

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_EnvironmentOverridesAndSecrets(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DEVOTIONAL_LISTEN_ADDR", ":7070")
	t.Setenv("DEVOTIONAL_GENERATION_MODEL", "env/model")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("DEVOTIONAL_IMPORT_SECRET", "s3cret")
	t.Setenv("DEVOTIONAL_ENV", "production")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, "env/model", cfg.Generation.Model)
	assert.Equal(t, "sk-test", cfg.Secrets.OpenRouterAPIKey)
	assert.Equal(t, "s3cret", cfg.Secrets.ImportSecret)
	assert.True(t, cfg.Production())

	// Secrets never reach the file.
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-test")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown backend", "backend: postgres\n"},
		{"bad timezone", "timezone: Mars/Olympus\n"},
		{"bad log level", "log_level: loud\n"},
		{"negative max tokens", "generation:\n  max_tokens: -1\n"},
		{"malformed yaml", "backend: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.yaml), 0o644))
			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestWriteIfMissing_KeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("backend: sqlite\n"), 0o644))

	require.NoError(t, WriteIfMissing(path, Default()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "backend: sqlite\n", string(data))
}

func TestLocation_DefaultsToUTC(t *testing.T) {
	loc, err := Config{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

type envTestConfig struct {
	Port int `env:"DEVOTIONAL_TEST_PORT" envDefault:"123"`
}

func TestParseEnv(t *testing.T) {
	var cfg envTestConfig
	require.NoError(t, ParseEnv(&cfg))
	assert.Equal(t, 123, cfg.Port)

	t.Setenv("DEVOTIONAL_TEST_PORT", "not-an-int")
	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
