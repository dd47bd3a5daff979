package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/telemetry"
)

// Context keys handlers set so the request log can carry them.
const (
	DocumentIDKey = "documentId"
	SessionIDKey  = "sessionId"
)

// quietPaths are polled and only logged when they fail.
var quietPaths = map[string]struct{}{
	"/api/v1/health": {},
	"/metrics":       {},
}

// Logging emits one structured line per request, leveled by status.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if _, quiet := quietPaths[c.Request.URL.Path]; quiet && status < http.StatusInternalServerError {
			return
		}

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      status,
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"user_id":     c.GetString(userIDKey),
			"document_id": c.GetString(DocumentIDKey),
			"session_id":  c.GetString(SessionIDKey),
			"client_ip":   c.ClientIP(),
		}
		if isGuest, ok := c.Get(isGuestKey); ok {
			fields["is_guest"] = isGuest
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}
