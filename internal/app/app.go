// Package app wires configuration, storage and services into an HTTP router.
package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	config "retail-insight-api/configs"
	"retail-insight-api/pkg/dataset"
	"retail-insight-api/pkg/handlers"
	"retail-insight-api/pkg/llm"
	"retail-insight-api/pkg/services"
	"retail-insight-api/pkg/store"
)

// InMemoryDataDir as DATA_DIR keeps all records in memory.
const InMemoryDataDir = ":memory:"

// App is a fully wired API.
type App struct {
	Router *gin.Engine
	store  *store.Store
	logger *zap.Logger
}

// New builds the API described by cfg. Without ORACLE_API_KEY the server
// still starts; oracle-backed operations report a configuration error.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	prompts, err := config.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	var st *store.Store
	if cfg.DataDir == InMemoryDataDir {
		st, err = store.OpenInMemory(logger)
	} else {
		st, err = store.Open(cfg.DataDir, logger)
	}
	if err != nil {
		return nil, err
	}

	oracle, err := newOracle(cfg, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	tables := dataset.NewTableCache(cfg.TableCacheTTL)
	files := services.NewFileService(st, tables, cfg.UploadDir, logger)
	planner := services.NewPlannerService(oracle, prompts, logger)
	narrator := services.NewNarratorService(oracle, prompts, logger)

	router := handlers.NewRouter(handlers.Dependencies{
		Config:     cfg,
		Logger:     logger,
		Monitoring: services.NewMonitoringService(logger),
		Files:      files,
		Feedback:   services.NewFeedbackService(oracle, prompts, files, st, logger),
		Chat:       services.NewChatService(files, st, planner, narrator, prompts, cfg.ChatHistoryLimit, logger),
		Dashboard:  services.NewDashboardService(planner, files, logger),
		Forecast:   services.NewForecastService(planner, narrator, files, logger),
	})

	return &App{Router: router, store: st, logger: logger}, nil
}

// newOracle returns nil when no credential is configured.
func newOracle(cfg *config.Config, logger *zap.Logger) (llm.Oracle, error) {
	if !cfg.OracleConfigured() {
		logger.Warn("ORACLE_API_KEY is not set; AI features are disabled")
		return nil, nil
	}
	client, err := llm.NewClient(&llm.Config{
		Provider:   cfg.OracleProvider,
		Endpoint:   cfg.OracleEndpoint,
		APIKey:     cfg.OracleAPIKey,
		Model:      cfg.OracleModel,
		APIVersion: cfg.AzureOpenAIAPIVersion,
		Deployment: cfg.AzureOpenAIDeploymentName,
		Timeout:    cfg.OracleTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create oracle client: %w", err)
	}
	logger.Info("Oracle configured",
		zap.String("provider", cfg.OracleProvider),
		zap.String("model", client.GetModel()))
	return client, nil
}

// Close releases the record store.
func (a *App) Close() error {
	return a.store.Close()
}

// NewLogger builds a zap logger for the environment at the given level.
func NewLogger(environment, level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if environment == "development" {
		zcfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zcfg.Level = lvl
	return zcfg.Build()
}
