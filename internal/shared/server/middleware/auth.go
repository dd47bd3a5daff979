package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userNameKey  = "userName"
	isGuestKey   = "isGuest"

	guestHeader = "X-Guest-Id"
	guestPrefix = "guest:"
)

// publicPaths skip identity checks.
var publicPaths = map[string]struct{}{
	"/api/v1/health": {},
	"/metrics":       {},
}

var guestIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// AuthConfig controls how the document owner is identified.
type AuthConfig struct {
	Verifier *auth.Verifier
	// AllowGuests accepts an X-Guest-Id header when no bearer token is sent.
	AllowGuests bool
}

// Auth resolves the owner of the request from a bearer token or guest header.
// Every document and editing session is scoped to that owner.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		if _, ok := publicPaths[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
			claims, ok := bearerClaims(cfg.Verifier, header)
			if !ok {
				respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
				return
			}
			c.Set(userIDKey, claims.Subject)
			if claims.Email != "" {
				c.Set(userEmailKey, claims.Email)
			}
			if claims.Name != "" {
				c.Set(userNameKey, claims.Name)
			}
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader(guestHeader))
		switch {
		case guestID == "" || !cfg.AllowGuests:
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing identity", nil)
			return
		case !guestIDPattern.MatchString(guestID):
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "invalid guest id", nil)
			return
		}
		c.Set(userIDKey, guestPrefix+guestID)
		c.Set(isGuestKey, true)
		c.Next()
	}
}

func bearerClaims(v *auth.Verifier, header string) (auth.Claims, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || v == nil {
		return auth.Claims{}, false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, false
	}
	claims, err := v.Verify(token)
	if err != nil {
		return auth.Claims{}, false
	}
	return claims, true
}

// UserIDFromContext returns the owner id set by Auth.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}

// UserEmailFromContext returns the token email, if any.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userEmailKey)
}

// UserNameFromContext returns the token display name, if any.
func UserNameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userNameKey)
}

// IsGuest reports whether the request was authenticated by guest id.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(isGuestKey)
}
