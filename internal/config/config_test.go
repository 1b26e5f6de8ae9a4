package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/luminary/internal/journey"
)

var envKeys = []string{
	"LUMINARY_ADDR", "LUMINARY_DB", "LUMINARY_STORE", "LUMINARY_ASSESSMENT",
	"LUMINARY_LOG_LEVEL", "LUMINARY_LOG_FORMAT",
	"LUMINARY_RATE_LIMIT", "LUMINARY_RATE_WINDOW", "LUMINARY_LLM_TIMEOUT",
}

// isolate unsets every LUMINARY_* variable for the test and points
// DotEnvFile at a file that does not exist.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	dir := t.TempDir()
	old := DotEnvFile
	DotEnvFile = filepath.Join(dir, ".env")
	t.Cleanup(func() { DotEnvFile = old })
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, journey.MethodConversation, cfg.Method())
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "luminary.yaml")
	writeFile(t, path, `
addr: 127.0.0.1:9000
store: bolt
assessment: quiz
log:
  level: debug
  format: console
rateLimit:
  requests: 5
  window: 30s
llmTimeout: 2m
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, BackendBolt, cfg.Store)
	assert.Equal(t, journey.MethodQuiz, cfg.Method())
	assert.Equal(t, LogConfig{Level: "debug", Format: "console"}, cfg.Log)
	assert.Equal(t, RateLimitConfig{Requests: 5, Window: 30 * time.Second}, cfg.RateLimit)
	assert.Equal(t, 2*time.Minute, cfg.LLMTimeout)
}

func TestLoad_UnknownYAMLKey(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "luminary.yaml")
	writeFile(t, path, "adress: :9000\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "luminary.yaml")
	writeFile(t, path, "addr: :9000\nstore: bolt\n")

	t.Setenv("LUMINARY_ADDR", ":7000")
	t.Setenv("LUMINARY_RATE_LIMIT", "3")
	t.Setenv("LUMINARY_LLM_TIMEOUT", "10s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, BackendBolt, cfg.Store)
	assert.Equal(t, 3, cfg.RateLimit.Requests)
	assert.Equal(t, 10*time.Second, cfg.LLMTimeout)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	writeFile(t, DotEnvFile, "LUMINARY_ASSESSMENT=quiz\nLUMINARY_DB=/tmp/from-dotenv.db\n")

	// A variable already in the environment wins over .env.
	t.Setenv("LUMINARY_DB", "/tmp/from-env.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, journey.MethodQuiz, cfg.Method())
	assert.Equal(t, "/tmp/from-env.db", cfg.DBPath)
}

func TestLoad_BadEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"LUMINARY_RATE_LIMIT", "lots"},
		{"LUMINARY_RATE_WINDOW", "soon"},
		{"LUMINARY_STORE", "postgres"},
		{"LUMINARY_ASSESSMENT", "vibes"},
		{"LUMINARY_RATE_LIMIT", "0"},
		{"LUMINARY_LLM_TIMEOUT", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			require.Error(t, err)
		})
	}
}
