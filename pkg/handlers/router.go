package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	config "retail-insight-api/configs"
	"retail-insight-api/pkg/services"
)

// Dependencies are the services the router exposes.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Monitoring *services.MonitoringService
	Files      *services.FileService
	Feedback   *services.FeedbackService
	Chat       *services.ChatService
	Dashboard  *services.DashboardService
	Forecast   *services.ForecastService
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	adminHandler := NewAdminHandler(d.Config, d.Logger)
	monitoringHandler := NewMonitoringHandler(d.Monitoring)
	feedbackHandler := NewFeedbackHandler(d.Files, d.Feedback)
	retailHandler := NewRetailHandler(d.Files, d.Chat, d.Dashboard, d.Forecast, d.Logger)

	r.Use(d.Monitoring.LoggingMiddleware())
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-API-KEY")
	r.Use(cors.New(corsConfig))

	r.GET("/health", adminHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(apiKeyAuth(d.Config.APIKey))
	v1.Use(adminHandler.MaintenanceGuard())
	{
		v1.GET("/hello", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Hello from Retail Insight API!"})
		})

		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}

		feedback := v1.Group("/feedback")
		{
			feedback.POST("", feedbackHandler.Upload)
			feedback.GET("", feedbackHandler.List)
			feedback.GET("/:id", feedbackHandler.Get)
			feedback.DELETE("/:id", feedbackHandler.Delete)
		}

		retail := v1.Group("/retail")
		{
			retail.POST("", retailHandler.Upload)
			retail.GET("", retailHandler.List)
			retail.GET("/:id", retailHandler.Get)
			retail.DELETE("/:id", retailHandler.Delete)
			retail.POST("/:id/chat", retailHandler.Chat)
			retail.GET("/:id/chat", retailHandler.History)
			retail.GET("/:id/dashboard", retailHandler.Dashboard)
			retail.GET("/:id/forecast", retailHandler.Forecast)
		}
	}

	return r
}

// apiKeyAuth requires the X-API-KEY header when apiKey is set.
func apiKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
