package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shipfastordie/shipboard/internal/apperror"
	"github.com/shipfastordie/shipboard/pkg/logger"
)

// ErrorResponse is the JSON shape of every error this API returns
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError maps a typed application error to an HTTP status. Raw
// causes (which may carry provider payloads or SQL) are logged, never
// sent to the client; token values appear in neither.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	errorType := "internal_error"
	message := "an internal error occurred"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message

		switch {
		case errors.Is(err, apperror.ErrMissingCode),
			errors.Is(err, apperror.ErrTokenExchange),
			errors.Is(err, apperror.ErrSchemaValidation):
			status = http.StatusBadRequest
			errorType = "bad_request"
		case errors.Is(err, apperror.ErrIdentityFetch),
			errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrProviderAPI):
			status = http.StatusBadGateway
			errorType = "provider_error"
		case errors.Is(err, apperror.ErrStore):
			status = http.StatusInternalServerError
			errorType = "store_error"
			message = "store operation failed"
		}
	}

	if status >= http.StatusInternalServerError {
		logger.WithError(err).Errorf("request failed: %s %s", c.Request.Method, c.FullPath())
	}

	c.JSON(status, ErrorResponse{
		Error:   errorType,
		Message: message,
	})
}
