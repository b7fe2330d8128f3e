package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/chancity/tournamenthub/internal/actorctx"
	"github.com/chancity/tournamenthub/internal/observability"
	"github.com/gin-gonic/gin"
)

// ErrorBody is the envelope of every non-2xx API response. Detail is a
// string, or a []ValidationDetail for 422s.
type ErrorBody struct {
	Error     string      `json:"error"`
	Detail    interface{} `json:"detail"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := observability.RequestIDFrom(ctx.Request.Context()); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code string, detail interface{}) {
	ctx.AbortWithStatusJSON(status, ErrorBody{
		Error:     code,
		Detail:    detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RequestID: requestIDFrom(ctx),
	})
}

func RespondValidation(ctx *gin.Context, details []ValidationDetail) {
	RespondError(ctx, http.StatusUnprocessableEntity, "ValidationError", details)
}

func RespondBadRequest(ctx *gin.Context, detail string) {
	RespondError(ctx, http.StatusBadRequest, "BadRequest", detail)
}

func RespondUnauthorized(ctx *gin.Context, detail string) {
	RespondError(ctx, http.StatusUnauthorized, "Unauthorized", detail)
}

func RespondForbidden(ctx *gin.Context, code, detail string) {
	RespondError(ctx, http.StatusForbidden, code, detail)
}

func RespondNotFound(ctx *gin.Context, detail string) {
	RespondError(ctx, http.StatusNotFound, "NotFound", detail)
}

func RespondInternal(ctx *gin.Context, detail string) {
	RespondError(ctx, http.StatusInternalServerError, "InternalServerError", detail)
}

// actor names the admin behind a change for audit log lines.
func actor(ctx context.Context) string {
	if id, ok := actorctx.UserIDFrom(ctx); ok {
		return id
	}
	return "unknown"
}
