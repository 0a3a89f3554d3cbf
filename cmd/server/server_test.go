package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	config "retail-insight-api/configs"
	"retail-insight-api/internal/app"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	// a missing .env is fine in tests
	_ = godotenv.Load("../../.env")

	os.Exit(m.Run())
}

func TestApplicationSetup(t *testing.T) {
	t.Setenv("DATA_DIR", app.InMemoryDataDir)
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("ORACLE_API_KEY", "")

	cfg := config.LoadConfig()
	require.NotNil(t, cfg, "Config should not be nil")

	application, err := app.New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	application.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApplicationSetupWithOracle(t *testing.T) {
	t.Setenv("DATA_DIR", app.InMemoryDataDir)
	t.Setenv("ORACLE_API_KEY", "test-key")
	t.Setenv("ORACLE_PROVIDER", "azure")
	t.Setenv("ORACLE_ENDPOINT", "https://test.openai.azure.com/")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT_NAME", "retail-chat")

	application, err := app.New(config.LoadConfig(), zap.NewNop())
	require.NoError(t, err)
	_ = application.Close()

	t.Setenv("ORACLE_PROVIDER", "carrier-pigeon")
	_, err = app.New(config.LoadConfig(), zap.NewNop())
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := app.NewLogger("production", "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = app.NewLogger("development", "loud")
	assert.Error(t, err)
}
