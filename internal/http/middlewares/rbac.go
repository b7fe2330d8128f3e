package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			abortError(c, http.StatusUnauthorized, "Unauthorized", "Missing identity context")
			return
		}
		if role != required {
			abortError(c, http.StatusForbidden, "Forbidden", "Admin role required")
			return
		}
		c.Next()
	}
}
