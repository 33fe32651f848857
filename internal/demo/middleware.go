// Package demo seeds a sample catalog and keeps a demo instance read-only.
package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyDemoMode stores the demo flag for templates.
const ContextKeyDemoMode = "demo_mode"

// BlockedMessage is returned for every rejected write.
const BlockedMessage = "This action is disabled in demo mode"

// allowedWritePaths stay writable so visitors can log in and out.
var allowedWritePaths = []string{
	"/admin/login",
	"/admin/logout",
}

// Middleware rejects writes while demo mode is on.
type Middleware struct {
	enabled bool
}

func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler lets safe methods through and answers every other request with 403.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled || isReadOnly(c.Request.Method) || isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}
		respondBlocked(c)
	}
}

// InjectContext exposes the demo flag to handlers and templates.
func (m *Middleware) InjectContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyDemoMode, m.enabled)
		c.Next()
	}
}

// IsDemo reports whether the request runs under demo mode.
func IsDemo(c *gin.Context) bool {
	return c.GetBool(ContextKeyDemoMode)
}

func isReadOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isAllowedPath(path string) bool {
	path = strings.TrimSuffix(path, "/")
	for _, allowed := range allowedWritePaths {
		if path == allowed {
			return true
		}
	}
	return false
}

func respondBlocked(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     BlockedMessage,
			"demo_mode": true,
		})
		return
	}
	c.String(http.StatusForbidden, BlockedMessage)
	c.Abort()
}
