package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.NotEmpty(t, cfg.OutputDir)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLMBaseURL)
	assert.Equal(t, 800, cfg.LLMMaxTokens)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 256, cfg.CacheMaxItems)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 256, cfg.CacheMaxItems)
	assert.Equal(t, 800, cfg.LLMMaxTokens)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("OT_ASSESS_DATA_DIR", "/tmp/test-ot")
	os.Setenv("OT_ASSESS_LLM_BASE_URL", "http://llm.internal:9000/v1")
	os.Setenv("OT_ASSESS_LLM_API_KEY", "test-key")
	os.Setenv("OT_ASSESS_LLM_MAX_TOKENS", "1200")
	os.Setenv("OT_ASSESS_LLM_TIMEOUT", "90s")
	os.Setenv("OT_ASSESS_CACHE_MAX_ITEMS", "500")
	os.Setenv("OT_ASSESS_CACHE_TTL", "12h")
	os.Setenv("OT_ASSESS_ASSESSOR_NAME", "J. Reyes")
	os.Setenv("OT_ASSESS_LOG_LEVEL", "debug")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-ot", cfg.DataDir)
	assert.Equal(t, "/tmp/test-ot/reports", cfg.OutputDir)
	assert.Equal(t, "http://llm.internal:9000/v1", cfg.LLMBaseURL)
	assert.Equal(t, "test-key", cfg.LLMAPIKey)
	assert.Equal(t, 1200, cfg.LLMMaxTokens)
	assert.Equal(t, 90*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 500, cfg.CacheMaxItems)
	assert.Equal(t, 12*time.Hour, cfg.CacheTTL)
	assert.Equal(t, "J. Reyes", cfg.AssessorName)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadLiteConfig_ExplicitOutputDir(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("OT_ASSESS_DATA_DIR", "/tmp/test-ot")
	os.Setenv("OT_ASSESS_OUTPUT_DIR", "/srv/reports")
	defer clearEnvVars(t)

	cfg := LoadLiteConfig()
	assert.Equal(t, "/srv/reports", cfg.OutputDir)
}

func TestLiteConfig_StoreDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.ot-assessment"}

	assert.Equal(t, "/home/user/.ot-assessment/assessments.db", cfg.StoreDBPath())
}

func TestLiteConfig_ExportDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.ot-assessment"}

	assert.Equal(t, "/home/user/.ot-assessment/exports", cfg.ExportDir())
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	cfg := &LiteConfig{
		DataDir:   filepath.Join(tmpDir, "ot"),
		OutputDir: filepath.Join(tmpDir, "ot", "reports"),
	}

	err = cfg.EnsureDataDir()
	require.NoError(t, err)

	// Verify directories exist
	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)

	_, err = os.Stat(cfg.OutputDir)
	assert.NoError(t, err)

	_, err = os.Stat(cfg.ExportDir())
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"OT_ASSESS_DATA_DIR",
		"OT_ASSESS_OUTPUT_DIR",
		"OT_ASSESS_LLM_BASE_URL",
		"OT_ASSESS_LLM_API_KEY",
		"OT_ASSESS_LLM_MODEL",
		"OT_ASSESS_LLM_MAX_TOKENS",
		"OT_ASSESS_LLM_TIMEOUT",
		"OT_ASSESS_CACHE_MAX_ITEMS",
		"OT_ASSESS_CACHE_TTL",
		"OT_ASSESS_ASSESSOR_NAME",
		"OT_ASSESS_CREDENTIALS",
		"OT_ASSESS_LOG_LEVEL",
		"OT_ASSESS_LOG_FORMAT",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
