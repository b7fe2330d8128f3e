package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET,POST,PATCH,DELETE,OPTIONS"
	corsHeaders = "Authorization,Content-Type,X-Request-Id"
)

// CORSMiddleware echoes allowed origins. A "*" entry allows any origin
// without credentials, which is what debug mode uses.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false

	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok {
				ctx.Header("Access-Control-Allow-Origin", origin)
				ctx.Header("Access-Control-Allow-Credentials", "true")
				ctx.Header("Access-Control-Allow-Methods", corsMethods)
				ctx.Header("Access-Control-Allow-Headers", corsHeaders)
				ctx.Header("Access-Control-Max-Age", "3600")
				ctx.Header("Vary", "Origin")
			} else if wildcard {
				ctx.Header("Access-Control-Allow-Origin", "*")
				ctx.Header("Access-Control-Allow-Methods", corsMethods)
				ctx.Header("Access-Control-Allow-Headers", corsHeaders)
			}
		}

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}
