package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"courtops/internal/domain"
	"courtops/internal/pkg/jwt"
)

type tokenValidator interface {
	ValidateToken(tokenStr string) (*jwt.Claims, error)
}

// Auth validates the bearer token and pins the request to the token's
// club. Handlers read club_id from the context and never trust a tenant
// identifier from the request body.
func Auth(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("club_id", claims.ClubID)
		c.Set("role", claims.Role)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}

// RequireRole gates a route group to one role.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != string(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   gin.H{"code": "FORBIDDEN", "message": "insufficient role"},
			})
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "UNAUTHORIZED", "message": message},
	})
}
