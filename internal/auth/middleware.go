package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUser     = "auth_user"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone      AuthType = "none" // Authentication disabled
	AuthTypeAnonymous AuthType = "anonymous"
	AuthTypeSession   AuthType = "session"
	AuthTypeBearer    AuthType = "bearer"
)

// Login and setup pages. RequireAuth never guards these.
const (
	LoginPath  = "/admin/login"
	LogoutPath = "/admin/logout"
	SetupPath  = "/admin/setup"
)

// Middleware identifies the current user and guards protected routes.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
	}
}

// Handler resolves the current user from a bearer token or the session
// cookie. It never rejects a request; RequireAuth does.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return func(c *gin.Context) {
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if user := m.tryBearerAuth(c); user != nil {
			setUser(c, user, AuthTypeBearer)
		} else if user := m.trySessionAuth(c); user != nil {
			setUser(c, user, AuthTypeSession)
		} else {
			c.Set(ContextKeyAuthType, AuthTypeAnonymous)
		}
		c.Next()
	}
}

func (m *Middleware) tryBearerAuth(c *gin.Context) *entities.User {
	token, ok := bearerToken(c)
	if !ok {
		return nil
	}
	user, err := m.service.ValidateToken(token)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}
	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}
	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return nil
	}
	return user
}

func setUser(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyUser, user)
	c.Set(ContextKeyAuthType, authType)
}

// RequireAuth rejects anonymous requests. API clients get 401; browsers are
// sent to the login page, or to setup while no user exists.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.config.Mode == config.AuthModeNone || CurrentUser(c) != nil {
			c.Next()
			return
		}

		if isAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		target := LoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		if hasUsers, err := m.service.HasUsers(); err == nil && !hasUsers {
			target = SetupPath
		}
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// RequireWriteAccess lets every authenticated user read but only admins
// use unsafe methods.
func (m *Middleware) RequireWriteAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.config.Mode == config.AuthModeNone || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		user := CurrentUser(c)
		if user != nil && user.CanWrite() {
			c.Next()
			return
		}

		if isAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.AbortWithStatus(http.StatusForbidden)
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// isAPIRequest determines if this is an API request vs web browser request.
func isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return c.GetHeader("Authorization") != ""
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *gin.Context) *entities.User {
	v, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, _ := v.(*entities.User)
	return user
}

// GetUserID returns 0 if the request is not authenticated.
func GetUserID(c *gin.Context) uint {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}

// CanWrite reports whether the request may modify the catalog.
func CanWrite(c *gin.Context) bool {
	if GetAuthType(c) == AuthTypeNone {
		return true
	}
	user := CurrentUser(c)
	return user != nil && user.CanWrite()
}
