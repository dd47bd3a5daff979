package respond

import (
	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/telemetry"
)

// Error codes shared by the API handlers.
const (
	CodeValidation         = "validation_error"
	CodeNotFound           = "not_found"
	CodeUnauthorized       = "unauthorized"
	CodeInFlight           = "in_flight"
	CodeRateLimited        = "rate_limited"
	CodeAugmentUnavailable = "augment_unavailable"
	CodeNotImplemented     = "not_implemented"
	CodeUpstream           = "upstream_error"
	CodeInternal           = "internal"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs the failure and aborts with a standardized error response.
// Client errors log at warn, server errors at error.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	for key, field := range map[string]string{
		"userId":     "user_id",
		"sessionId":  "session_id",
		"documentId": "document_id",
	} {
		if v := c.GetString(key); v != "" {
			fields[field] = v
		}
	}
	if status >= 500 {
		if details != nil {
			fields["details"] = details
		}
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
