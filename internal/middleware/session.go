package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bluemoon/internal/pkg/response"
	"bluemoon/internal/pkg/session"
)

// Session attaches user_id and role when the request carries a live session
// cookie. Requests without one pass through untouched.
func Session(manager *session.Manager, cookieName string, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		claims, err := manager.Validate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrInvalidToken) && !errors.Is(err, session.ErrRevoked) {
				log.Warn("session lookup failed", zap.Error(err))
			}
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("session_id", claims.ID)
		c.Next()
	}
}

// RequireAuth rejects requests without a session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetInt64("user_id") == 0 {
			response.AbortFail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c.Next()
	}
}
