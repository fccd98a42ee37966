package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mediareviews/internal/pkg/jwt"
	"mediareviews/internal/pkg/response"
)

const ContextKeyService = "service"

// IdentifyService records the caller when a valid service token is present
// and lets every request through. Protected routes still need ServiceAuth.
func IdentifyService(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1])); err == nil {
				c.Set(ContextKeyService, claims.Subject)
			}
		}
		c.Next()
	}
}

// ServiceAuth requires a valid service bearer token.
func ServiceAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextKeyService) != "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Header("WWW-Authenticate", "Bearer")
			response.AbortError(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.Header("WWW-Authenticate", "Bearer")
			response.AbortError(c, http.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			response.AbortError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextKeyService, claims.Subject)
		c.Next()
	}
}
