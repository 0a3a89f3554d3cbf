package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"retail-insight-api/pkg/models"
	"retail-insight-api/pkg/services"
)

// FeedbackHandler serves customer feedback documents and their analyses.
type FeedbackHandler struct {
	files    *services.FileService
	feedback *services.FeedbackService
}

// NewFeedbackHandler creates a FeedbackHandler.
func NewFeedbackHandler(files *services.FileService, feedback *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{files: files, feedback: feedback}
}

type feedbackView struct {
	File     *models.UploadedFile   `json:"file"`
	Analysis *models.AnalysisResult `json:"analysis"`
}

// Upload stores a feedback document and analyses it once.
func (h *FeedbackHandler) Upload(c *gin.Context) {
	var analysis *models.AnalysisResult
	rec, ok := uploadFile(c, func(filename string, r io.Reader) (*models.UploadedFile, error) {
		rec, result, err := h.feedback.UploadAndAnalyze(c.Request.Context(), filename, r)
		analysis = result
		return rec, err
	})
	if !ok {
		return
	}
	respondOK(c, http.StatusCreated, feedbackView{File: rec, Analysis: analysis})
}

// List returns the feedback files, newest first.
func (h *FeedbackHandler) List(c *gin.Context) {
	files, err := h.files.List(models.FileKindFeedback)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, files)
}

// Get returns a feedback file with its analysis.
func (h *FeedbackHandler) Get(c *gin.Context) {
	rec, analysis, err := h.feedback.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, feedbackView{File: rec, Analysis: analysis})
}

// Delete removes a feedback file and its analysis.
func (h *FeedbackHandler) Delete(c *gin.Context) {
	if err := h.files.Delete(models.FileKindFeedback, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File deleted"})
}

// uploadFile reads the "file" form field and hands it to store. It writes
// the error response itself and reports whether the upload succeeded.
func uploadFile(c *gin.Context, store func(filename string, r io.Reader) (*models.UploadedFile, error)) (*models.UploadedFile, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "A file must be uploaded in the 'file' form field."})
		return nil, false
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "The uploaded file could not be opened."})
		return nil, false
	}
	defer f.Close()

	rec, err := store(fileHeader.Filename, f)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return rec, true
}
