// Package auth verifies the bearer tokens that identify a document owner.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the owner identity carried by a token. Subject becomes the
// owner id the gateway scopes documents by.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

var (
	ErrMissingSecret = errors.New("JWT_SECRET is required in production")
	ErrInvalidToken  = errors.New("invalid token")
	ErrNoSubject     = errors.New("token subject is required")
)

const (
	devSecret  = "dev-secret"
	defaultTTL = 24 * time.Hour
	leeway     = 30 * time.Second
)

// Verifier signs and checks HS256 tokens with one shared secret.
type Verifier struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewVerifier builds a verifier for env. Outside production an empty secret
// falls back to a fixed development secret.
func NewVerifier(secret, env string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if env == "production" {
			return nil, ErrMissingSecret
		}
		secret = devSecret
	}
	return &Verifier{secret: []byte(secret), ttl: defaultTTL, now: time.Now}, nil
}

// Sign issues a token for claims, filling issued-at and expiry when unset.
func (v *Verifier) Sign(claims Claims) (string, error) {
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrNoSubject
	}
	now := v.now().UTC()
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(v.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify parses token and returns its claims. Any failure is ErrInvalidToken.
func (v *Verifier) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
