package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bluemoon/internal/domain"
	"bluemoon/internal/pkg/response"
)

// RequireRole ensures that the authenticated user has the specified role.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || c.GetInt64("user_id") == 0 {
			response.AbortFail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if r, _ := role.(string); r != requiredRole {
			response.AbortFail(c, http.StatusForbidden, "Forbidden")
			return
		}

		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(string(domain.RoleAdmin))
}
