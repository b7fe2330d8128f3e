package middlewares

import (
	"time"

	"github.com/chancity/tournamenthub/internal/observability"
	"github.com/gin-gonic/gin"
)

// abortError writes the same {error, detail, timestamp} envelope the
// handlers use.
func abortError(c *gin.Context, status int, code, detail string) {
	body := gin.H{
		"error":     code,
		"detail":    detail,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if id := observability.RequestIDFrom(c.Request.Context()); id != "" {
		body["request_id"] = id
	}

	c.AbortWithStatusJSON(status, body)
}
