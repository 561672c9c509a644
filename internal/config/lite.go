// Package config provides configuration management for the assessment server.
// This file contains the lightweight configuration for the CLI report generator.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LiteConfig is a simplified configuration for the report-gen CLI.
// It requires no postgres or redis and uses sensible defaults.
type LiteConfig struct {
	// Data storage
	DataDir   string // Base directory for the sqlite store and exports
	OutputDir string // Directory report text files are written to

	// LLM completion endpoint
	LLMBaseURL   string
	LLMAPIKey    string
	LLMModel     string
	LLMMaxTokens int
	LLMTimeout   time.Duration

	// Cache settings
	CacheMaxItems int           // Maximum items in memory cache
	CacheTTL      time.Duration // Default cache TTL

	// Report signing
	AssessorName string
	Credentials  string

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".ot-assessment")

	return &LiteConfig{
		DataDir:       dataDir,
		OutputDir:     filepath.Join(dataDir, "reports"),
		LLMBaseURL:    "http://localhost:11434/v1",
		LLMMaxTokens:  800,
		LLMTimeout:    60 * time.Second,
		CacheMaxItems: 256,
		CacheTTL:      24 * time.Hour,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	// Data directory
	if v := os.Getenv("OT_ASSESS_DATA_DIR"); v != "" {
		cfg.DataDir = v
		cfg.OutputDir = filepath.Join(v, "reports")
	}
	if v := os.Getenv("OT_ASSESS_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	// LLM endpoint
	if v := os.Getenv("OT_ASSESS_LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	cfg.LLMAPIKey = os.Getenv("OT_ASSESS_LLM_API_KEY")
	cfg.LLMModel = os.Getenv("OT_ASSESS_LLM_MODEL")
	if v := os.Getenv("OT_ASSESS_LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LLMMaxTokens = n
		}
	}
	if v := os.Getenv("OT_ASSESS_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LLMTimeout = d
		}
	}

	// Cache settings
	if v := os.Getenv("OT_ASSESS_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("OT_ASSESS_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}

	// Report signing
	cfg.AssessorName = os.Getenv("OT_ASSESS_ASSESSOR_NAME")
	cfg.Credentials = os.Getenv("OT_ASSESS_CREDENTIALS")

	// Logging
	if v := os.Getenv("OT_ASSESS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OT_ASSESS_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// StoreDBPath returns the path to the assessment SQLite database.
func (c *LiteConfig) StoreDBPath() string {
	return filepath.Join(c.DataDir, "assessments.db")
}

// ExportDir returns the directory for JSON exports.
func (c *LiteConfig) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// EnsureDataDir creates the data and output directories if they don't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ExportDir(), 0755)
}
