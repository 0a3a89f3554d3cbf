package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	testCases := map[string]string{
		"PORT":               "9090",
		"ENVIRONMENT":        "test",
		"ORACLE_PROVIDER":    "azure",
		"ORACLE_ENDPOINT":    "https://test.openai.azure.com/",
		"ORACLE_API_KEY":     "test-key",
		"ORACLE_MODEL":       "gpt-4o-mini",
		"ORACLE_TIMEOUT":     "15s",
		"CHAT_HISTORY_LIMIT": "4",
	}

	for key, value := range testCases {
		os.Setenv(key, value)
	}
	defer func() {
		for key := range testCases {
			os.Unsetenv(key)
		}
	}()

	cfg := LoadConfig()

	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be '9090', got '%s'", cfg.Port)
	}
	if cfg.Environment != "test" {
		t.Errorf("Expected Environment to be 'test', got '%s'", cfg.Environment)
	}
	if cfg.OracleProvider != "azure" {
		t.Errorf("Expected OracleProvider to be 'azure', got '%s'", cfg.OracleProvider)
	}
	if cfg.OracleAPIKey != "test-key" {
		t.Errorf("Expected OracleAPIKey to be 'test-key', got '%s'", cfg.OracleAPIKey)
	}
	if cfg.OracleTimeout != 15*time.Second {
		t.Errorf("Expected OracleTimeout to be 15s, got %v", cfg.OracleTimeout)
	}
	if cfg.ChatHistoryLimit != 4 {
		t.Errorf("Expected ChatHistoryLimit to be 4, got %d", cfg.ChatHistoryLimit)
	}
	if !cfg.OracleConfigured() {
		t.Error("Expected oracle to be configured")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	vars := []string{
		"PORT", "ENVIRONMENT", "ORACLE_PROVIDER", "ORACLE_ENDPOINT",
		"ORACLE_API_KEY", "ORACLE_MODEL", "ORACLE_TIMEOUT", "CHAT_HISTORY_LIMIT",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}

	cfg := LoadConfig()

	if cfg.Port != "8080" {
		t.Errorf("Expected default Port to be '8080', got '%s'", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("Expected default Environment to be 'development', got '%s'", cfg.Environment)
	}
	if cfg.ChatHistoryLimit != 10 {
		t.Errorf("Expected default ChatHistoryLimit to be 10, got %d", cfg.ChatHistoryLimit)
	}
	if cfg.OracleConfigured() {
		t.Error("Expected oracle to be unconfigured without ORACLE_API_KEY")
	}
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	os.Setenv("CHAT_HISTORY_LIMIT", "lots")
	defer os.Unsetenv("CHAT_HISTORY_LIMIT")

	if got := getEnvInt("CHAT_HISTORY_LIMIT", 7); got != 7 {
		t.Errorf("Expected fallback 7, got %d", got)
	}
}
