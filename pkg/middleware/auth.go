package middleware

import (
	"net/http"
	"strings"

	"akiya-share/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware requires a valid bearer token. Identity ends up in
// "user_id", "user_email", "token_id" and "token_expires".
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return authenticate(jwtService, nil, true)
}

// AuthMiddlewareWithRevocation also rejects tokens that were logged out.
func AuthMiddlewareWithRevocation(jwtService *jwt.Service, revocations RevocationChecker) gin.HandlerFunc {
	return authenticate(jwtService, revocations, true)
}

// OptionalAuthMiddleware sets identity when a valid token is present and
// lets anonymous requests through.
func OptionalAuthMiddleware(jwtService *jwt.Service, revocations RevocationChecker) gin.HandlerFunc {
	return authenticate(jwtService, revocations, false)
}

func authenticate(jwtService *jwt.Service, revocations RevocationChecker, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
				c.Abort()
				return
			}
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		if revocations != nil && claims.ID != "" {
			revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Token check failed"})
				c.Abort()
				return
			}
			if revoked {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("token_id", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_expires", claims.ExpiresAt.Time)
		}
		c.Next()
	}
}
