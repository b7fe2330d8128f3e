package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag answers 304 when the client already holds this exact
// payload.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	etag, err := buildETag(payload)
	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	ctx.Header("ETag", etag)
	ctx.Header("Cache-Control", "private, no-cache")

	if ifNoneMatchMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(status, payload)
}

func buildETag(payload interface{}) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)

	return `"` + hex.EncodeToString(sum[:16]) + `"`, nil
}

func ifNoneMatchMatches(headerValue, currentETag string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" || strings.TrimSpace(currentETag) == "" {
		return false
	}

	if headerValue == "*" {
		return true
	}

	current := normalizeETag(currentETag)

	for _, part := range strings.Split(headerValue, ",") {
		if normalizeETag(part) == current {
			return true
		}
	}

	return false
}

func normalizeETag(raw string) string {
	v := strings.TrimSpace(raw)

	// weak validators compare equal to their strong form
	return strings.TrimSpace(strings.TrimPrefix(v, "W/"))
}
