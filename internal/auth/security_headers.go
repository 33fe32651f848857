package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// cspDirectives cover the catalog pages: templates, admin.js and the
// stylesheet are all served from /static.
var cspDirectives = []string{
	"default-src 'self'",
	"script-src 'self'",
	"style-src 'self' 'unsafe-inline'",
	"img-src 'self' data:",
	"connect-src 'self'",
	"object-src 'none'",
	"base-uri 'self'",
	"frame-ancestors 'none'",
}

var staticHeaders = map[string]string{
	"X-Frame-Options":        "DENY",
	"X-Content-Type-Options": "nosniff",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
	"Permissions-Policy":     "camera=(), geolocation=(), microphone=(), payment=(), usb=()",
}

// contentSecurityPolicy allows admin forms to post back to host. 'self' alone
// breaks behind TLS-terminating proxies that rewrite the scheme.
func contentSecurityPolicy(host string) string {
	formAction := "form-action 'self'"
	if host != "" {
		formAction += " https://" + host
	}
	return strings.Join(append(cspDirectives[:len(cspDirectives):len(cspDirectives)], formAction), "; ")
}

// SecurityHeadersMiddleware adds security headers to all responses.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		for name, value := range staticHeaders {
			c.Header(name, value)
		}
		c.Header("Content-Security-Policy", contentSecurityPolicy(c.Request.Host))
		c.Next()
	}
}

// StrictTransportSecurityMiddleware adds an HSTS header on HTTPS requests.
// Only enable this when the site is served over HTTPS.
func StrictTransportSecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
