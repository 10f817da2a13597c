package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/forager/pkg/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forager.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
budget: 20
deadline: 10s
top_k: 5
criteria:
  - name: price
    weight: 0.5
    maximize: false
  - name: rating
    weight: 0.5
    maximize: true
tool:
  timeout: 2s
  max_retries: 1
redis:
  addr: localhost:6379
  ttl: 1h
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 20, cfg.Budget)
	assert.Equal(t, 10*time.Second, cfg.Deadline.Std())
	assert.Equal(t, 2*time.Second, cfg.Tool.Timeout.Std())
	assert.Equal(t, time.Hour, cfg.Redis.TTL.Std())
	require.Len(t, cfg.Criteria, 2)
	assert.Equal(t, domain.CriterionPrice, cfg.Criteria[0].Name)
	assert.False(t, cfg.Criteria[0].Maximize)
}

func TestLoad_EnvOverridesSecret(t *testing.T) {
	t.Setenv("FORAGER_OPENAI_API_KEY", "sk-env")
	path := writeConfig(t, "openai:\n  api_key: sk-file\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
}

func TestLoad_RejectsBadWeight(t *testing.T) {
	path := writeConfig(t, "criteria:\n  - name: price\n    weight: 1.5\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	require.Error(t, err)
}
