package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	config "retail-insight-api/configs"
	"retail-insight-api/internal/app"
)

var (
	router  *gin.Engine
	initErr error
	once    sync.Once
)

// setupApp builds the router once per serverless instance.
func setupApp() (*gin.Engine, error) {
	once.Do(func() {
		// Vercel injects the environment; there is no .env file here.
		cfg := config.LoadConfig()

		logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
		if err != nil {
			initErr = err
			return
		}

		gin.SetMode(gin.ReleaseMode)
		application, err := app.New(cfg, logger)
		if err != nil {
			logger.Error("Failed to initialize application", zap.Error(err))
			initErr = err
			return
		}
		router = application.Router
	})
	return router, initErr
}

// Handler is the Vercel entry point for every request.
func Handler(w http.ResponseWriter, r *http.Request) {
	engine, err := setupApp()
	if err != nil {
		http.Error(w, `{"success":false,"error":"server is not configured"}`, http.StatusInternalServerError)
		return
	}
	engine.ServeHTTP(w, r)
}
