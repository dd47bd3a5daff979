package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 error body. http.ErrAbortHandler
// is re-raised so net/http can drop the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			telemetry.Error("panic", map[string]any{
				"request_id":  RequestIDFromContext(c),
				"session_id":  c.GetString(SessionIDKey),
				"document_id": c.GetString(DocumentIDKey),
				"error":       fmt.Sprint(rec),
				"stack":       string(debug.Stack()),
				"path":        c.Request.URL.Path,
				"method":      c.Request.Method,
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "unexpected server error", nil)
		}()
		c.Next()
	}
}
