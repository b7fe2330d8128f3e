package middlewares

import (
	"net/http"
	"strings"

	"github.com/chancity/tournamenthub/internal/actorctx"
	"github.com/chancity/tournamenthub/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			abortError(c, http.StatusUnauthorized, "Unauthorized", "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortError(c, http.StatusUnauthorized, "Unauthorized", "Missing or invalid access token")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "Unauthorized", "Invalid or expired access token")
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxEmailKey, claims.Email)
		c.Set(ctxRoleKey, claims.Role)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, ctxUserIDKey)
}

func RoleFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, ctxRoleKey)
}

func stringFromContext(c *gin.Context, key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
