// Package middleware holds gin middleware shared by route groups: the
// bearer-token auth gate and zap request logging.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/uvbuddy/uvbuddy-api/internal/auth"
)

const identityKey = "auth_identity"

// SessionVerifier is the slice of auth.TokenService the gate needs.
type SessionVerifier interface {
	VerifySession(token string) (auth.Identity, error)
}

// RequireAuth builds the auth gate. It reads the Authorization header,
// verifies the bearer credential, and attaches the decoded identity to the
// request context. Both failure branches return the fixed generic messages;
// the token value itself is never logged.
func RequireAuth(tokens SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token not provided"})
			return
		}

		parts := strings.Fields(header)
		if len(parts) < 2 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		id, err := tokens.VerifySession(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFromContext returns the identity the auth gate attached, if any.
func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
