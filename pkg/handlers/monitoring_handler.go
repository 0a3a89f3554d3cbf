package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"retail-insight-api/pkg/services"
)

// logPeriods are the accepted values of the period query parameter, in hours.
var logPeriods = map[string]int{
	"1h":  1,
	"24h": 24,
	"7d":  24 * 7,
}

// MonitoringHandler serves the request log summary.
type MonitoringHandler struct {
	monitoring *services.MonitoringService
	now        func() time.Time
}

func NewMonitoringHandler(monitoring *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{monitoring: monitoring, now: time.Now}
}

// GetLogs summarizes requests over ?period= (1h, 24h or 7d; default 24h).
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	period := c.DefaultQuery("period", "24h")
	hours, ok := logPeriods[period]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "period must be one of 1h, 24h or 7d",
		})
		return
	}
	respondOK(c, http.StatusOK, h.monitoring.GetDashboardData(hours, h.now()))
}
