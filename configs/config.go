package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	Port          string
	Environment   string
	APIKey        string
	AdminUsername string
	AdminPassword string
	LogLevel      string

	// Oracle (text-generation service). Any OpenAI-compatible endpoint works;
	// "azure" switches to Azure OpenAI deployments.
	OracleProvider            string
	OracleEndpoint            string
	OracleAPIKey              string
	OracleModel               string
	OracleTimeout             time.Duration
	AzureOpenAIAPIVersion     string
	AzureOpenAIDeploymentName string

	DataDir          string // ":memory:" keeps records in memory
	UploadDir        string
	PromptsFile      string
	ChatHistoryLimit int
	TableCacheTTL    time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		APIKey:        getEnv("API_KEY", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		OracleProvider:            getEnv("ORACLE_PROVIDER", "openai"),
		OracleEndpoint:            getEnv("ORACLE_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta/openai"),
		OracleAPIKey:              getEnv("ORACLE_API_KEY", ""),
		OracleModel:               getEnv("ORACLE_MODEL", "gemini-2.5-flash"),
		OracleTimeout:             getEnvDuration("ORACLE_TIMEOUT", 60*time.Second),
		AzureOpenAIAPIVersion:     getEnv("AZURE_OPENAI_API_VERSION", "2024-06-01"),
		AzureOpenAIDeploymentName: getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", ""),

		DataDir:          getEnv("DATA_DIR", "data/db"),
		UploadDir:        getEnv("UPLOAD_DIR", "data/uploads"),
		PromptsFile:      getEnv("PROMPTS_FILE", ""),
		ChatHistoryLimit: getEnvInt("CHAT_HISTORY_LIMIT", 10),
		TableCacheTTL:    getEnvDuration("TABLE_CACHE_TTL", 10*time.Minute),
	}
}

// OracleConfigured reports whether a credential for the oracle is present.
func (c *Config) OracleConfigured() bool {
	return c.OracleAPIKey != ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
