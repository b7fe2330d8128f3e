package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	apiCSP = "default-src 'none'; frame-ancestors 'none'"
	// Swagger UI page needs CDN assets + inline bootstrap script.
	docsCSP = "default-src 'self'; base-uri 'none'; frame-ancestors 'none'; object-src 'none'; connect-src 'self'; img-src 'self' data: https:; font-src 'self' https://unpkg.com data:; style-src 'self' 'unsafe-inline' https://unpkg.com; script-src 'self' 'unsafe-inline' https://unpkg.com"
	// SiteCSP is for the server-rendered site: own assets and same-origin form posts only.
	SiteCSP = "default-src 'self'; base-uri 'self'; frame-ancestors 'none'; object-src 'none'; img-src 'self' data:; style-src 'self'; script-src 'self'; form-action 'self'"
)

func setCommonHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("Referrer-Policy", "no-referrer")
	c.Header("X-XSS-Protection", "0")
}

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		setCommonHeaders(c)
		if strings.HasPrefix(c.Request.URL.Path, "/docs") {
			c.Header("Content-Security-Policy", docsCSP)
		} else {
			c.Header("Content-Security-Policy", apiCSP)
		}
		c.Next()
	}
}

func SiteSecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		setCommonHeaders(c)
		c.Header("Content-Security-Policy", SiteCSP)
		c.Next()
	}
}
