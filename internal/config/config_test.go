package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "templates", cfg.Store.Dir)
	assert.Equal(t, "screenshots", cfg.Capture.Dir)
	assert.Equal(t, 0.7, cfg.Match.Confidence)
	assert.Equal(t, "first", cfg.Match.Policy)
	assert.Equal(t, 500*time.Millisecond, cfg.Dispatch.MinInterval)
	assert.Equal(t, 30, cfg.Dispatch.WindowCap)
	assert.Equal(t, 2*time.Second, cfg.Dispatch.Cooldown)
	assert.NotEmpty(t, cfg.LLM.Model)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
match:
  confidence: 0.9
  policy: best
store:
  dir: /tmp/tpl
dispatch:
  min_interval: 250ms
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Match.Confidence)
	assert.Equal(t, "best", cfg.Match.Policy)
	assert.Equal(t, "/tmp/tpl", cfg.Store.Dir)
	assert.Equal(t, 250*time.Millisecond, cfg.Dispatch.MinInterval)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30, cfg.Dispatch.WindowCap)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LLMCU_MATCH_POLICY", "best")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "best", cfg.Match.Policy)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Match:    MatchConfig{Confidence: 0.7, Policy: "first"},
		Dispatch: DispatchConfig{},
	}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Match.Confidence = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Match.Confidence = 1.5
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Match.Policy = "greedy"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Dispatch.MinInterval = -time.Second
	assert.Error(t, bad.Validate())
}
