package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retail-insight-api/pkg/models"
	"retail-insight-api/pkg/services"
)

// RetailHandler serves retail tables: upload, chat, dashboard and forecast.
type RetailHandler struct {
	files     *services.FileService
	chat      *services.ChatService
	dashboard *services.DashboardService
	forecast  *services.ForecastService
	logger    *zap.Logger
}

// NewRetailHandler creates a RetailHandler.
func NewRetailHandler(files *services.FileService, chat *services.ChatService,
	dashboard *services.DashboardService, forecast *services.ForecastService, logger *zap.Logger) *RetailHandler {
	return &RetailHandler{
		files:     files,
		chat:      chat,
		dashboard: dashboard,
		forecast:  forecast,
		logger:    logger.Named("retail"),
	}
}

// Upload stores a CSV or XLSX table and returns its record with the schema.
func (h *RetailHandler) Upload(c *gin.Context) {
	rec, ok := uploadFile(c, func(filename string, r io.Reader) (*models.UploadedFile, error) {
		return h.files.Upload(models.FileKindRetail, filename, r)
	})
	if !ok {
		return
	}
	respondOK(c, http.StatusCreated, rec)
}

// List returns the retail files, newest first.
func (h *RetailHandler) List(c *gin.Context) {
	files, err := h.files.List(models.FileKindRetail)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, files)
}

// Get returns one retail file record.
func (h *RetailHandler) Get(c *gin.Context) {
	rec, err := h.files.Get(models.FileKindRetail, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, rec)
}

// Delete removes a retail file and its chat transcript.
func (h *RetailHandler) Delete(c *gin.Context) {
	if err := h.files.Delete(models.FileKindRetail, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File deleted"})
}

// Chat answers one question about a retail file.
func (h *RetailHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "A non-empty message is required."})
		return
	}

	resp, err := h.chat.Ask(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, resp)
}

// History returns the chat transcript of a retail file, oldest first.
func (h *RetailHandler) History(c *gin.Context) {
	turns, err := h.chat.History(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, turns)
}

// Dashboard plans and draws the charts of a retail file.
func (h *RetailHandler) Dashboard(c *gin.Context) {
	charts, err := h.dashboard.BuildForFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"charts": charts})
}

// Forecast predicts the next 12 months of sales. The sales_col, month_col
// and year_col query parameters override the detected columns.
func (h *RetailHandler) Forecast(c *gin.Context) {
	override := models.ForecastColumns{
		MonthCol: strings.TrimSpace(c.Query("month_col")),
		SalesCol: strings.TrimSpace(c.Query("sales_col")),
	}
	if year := strings.TrimSpace(c.Query("year_col")); year != "" {
		override.YearCol = &year
	}

	result, err := h.forecast.Run(c.Request.Context(), c.Param("id"), override)
	if err != nil {
		h.logger.Info("Forecast failed", zap.String("file_id", c.Param("id")), zap.Error(err))
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}
