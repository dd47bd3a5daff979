package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// openSessionsFunc counts the caller's open editing sessions.
type openSessionsFunc func(owner string) int

// registerMeRoutes attaches GET /me, which tells the front end who owns the
// documents it lists and whether drafts are still open.
func registerMeRoutes(rg *gin.RouterGroup, openSessions openSessionsFunc) {
	rg.GET("/me", func(c *gin.Context) {
		owner := middleware.UserIDFromContext(c)
		if owner == "" {
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing identity", nil)
			return
		}

		body := gin.H{
			"userId": owner,
			"guest":  middleware.IsGuest(c),
		}
		if email := middleware.UserEmailFromContext(c); email != "" {
			body["email"] = email
		}
		if name := middleware.UserNameFromContext(c); name != "" {
			body["name"] = name
		}
		if openSessions != nil {
			body["openSessions"] = openSessions(owner)
		}
		respond.OK(c, body)
	})
}
