package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rahabenico/core/internal/pkg/jwt"
	"github.com/rahabenico/core/internal/pkg/response"
	"golang.org/x/crypto/bcrypt"
)

const ContextKeyRole = "role"

// AdminAuth returns a middleware that enforces admin authentication.
// Two credentials are accepted: a JWT issued by the login endpoint, or
// the raw admin password itself (handy for curl and cron jobs). The
// configured password may be a bcrypt hash, in which case raw
// submissions are verified against it.
func AdminAuth(adminPassword string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ValidateAdmin(adminPassword, extractToken(c)); err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyRole, "admin")
		c.Next()
	}
}

// ValidateAdmin checks a raw credential against the configured admin
// password. JWTs are tried first, then direct password comparison.
func ValidateAdmin(adminPassword, rawToken string) error {
	token := NormalizeToken(rawToken)
	if token == "" {
		return errors.New("credential is required")
	}

	if claims, err := jwt.Parse(token); err == nil && claims.Role == "admin" {
		return nil
	}

	if !CheckPassword(adminPassword, token) {
		return errors.New("invalid credential")
	}
	return nil
}

// CheckPassword compares a submitted password against the configured
// one, which may be stored as plaintext or a bcrypt hash.
func CheckPassword(configured, submitted string) bool {
	if configured == "" || submitted == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(submitted)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(submitted)) == 1
}

// IsAdmin returns true if the request carries an authenticated admin role.
func IsAdmin(c *gin.Context) bool {
	v, _ := c.Get(ContextKeyRole)
	role, _ := v.(string)
	return role == "admin"
}

func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
