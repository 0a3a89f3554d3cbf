package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"retail-insight-api/pkg/apperrors"
)

// errorStatus maps a service error to an HTTP status code.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindConfiguration:
		return http.StatusServiceUnavailable
	case apperrors.KindOracle:
		return http.StatusBadGateway
	case apperrors.KindParse, apperrors.KindColumnNotFound,
		apperrors.KindInsufficientData, apperrors.KindExecution:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes err in the common {"success": false, "error": ...} shape.
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)

	msg := apperrors.UserMessage(err)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		msg = "The requested file was not found."
	case errors.Is(err, apperrors.ErrUnsupportedFile):
		msg = "Unsupported file type. " + err.Error()
	case errors.Is(err, apperrors.ErrTooLarge):
		msg = "The file is too large: " + strings.TrimPrefix(err.Error(), apperrors.ErrTooLarge.Error()+": ")
	case status == http.StatusInternalServerError:
		msg = "An internal error occurred. Please try again later."
	}

	body := gin.H{"success": false, "error": msg}
	if kind := apperrors.KindOf(err); kind != "" {
		body["error_kind"] = kind
	}
	c.JSON(status, body)
}

// respondOK writes data in the common {"success": true, "data": ...} shape.
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}
