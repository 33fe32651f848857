package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

// Template names rendered by the controller.
const (
	LoginTemplate = "admin_login"
	SetupTemplate = "admin_setup"
)

// setupMutex serializes setup requests so two concurrent requests cannot
// both create the first admin.
var setupMutex sync.Mutex

// isLocalPath reports whether a redirect target stays on this site.
func isLocalPath(path string) bool {
	return path != "" &&
		strings.HasPrefix(path, "/") &&
		!strings.HasPrefix(path, "//") &&
		!strings.Contains(path, "://") &&
		!strings.Contains(path, "\\")
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to the admin index.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/admin/"
}

// AuthController serves the admin login, logout, setup and token endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	rateLimiter    *RateLimiter
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.GET(LoginPath, ac.LoginPage)
	router.POST(LoginPath, ac.Login)
	router.POST(LogoutPath, ac.Logout)
	router.GET(LogoutPath, ac.Logout)
	router.GET(SetupPath, ac.SetupPage)
	router.POST(SetupPath, ac.Setup)
}

func (ac *AuthController) render(c *gin.Context, status int, name string, data gin.H) {
	data["CSRFField"] = CSRFTokenField(c)
	if _, ok := data["Title"]; !ok {
		data["Title"] = "Log in"
	}
	c.HTML(status, name, data)
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	next := sanitizeRedirectPath(c.Query("next"))

	if ac.sessionManager != nil && ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, next)
		return
	}

	if hasUsers, err := ac.service.HasUsers(); err == nil && !hasUsers {
		c.Redirect(http.StatusFound, SetupPath)
		return
	}

	ac.render(c, http.StatusOK, LoginTemplate, gin.H{
		"Next":  next,
		"Error": c.Query("error"),
	})
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	data := gin.H{"Next": next, "Username": username}

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		data["Error"] = "Too many login attempts. Please try again later."
		ac.render(c, http.StatusTooManyRequests, LoginTemplate, data)
		return
	}

	user, err := ac.service.Authenticate(username, password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, username)
		log.Printf("Failed admin login for %q from %s: %v", username, clientIP, err)

		data["Error"] = "Please enter the correct username and password. Note that both fields may be case-sensitive."
		if errors.Is(err, ErrAccountLocked) {
			data["Error"] = "Account is locked. Please try again later."
		}
		ac.render(c, http.StatusUnauthorized, LoginTemplate, data)
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, username)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			log.Printf("Failed to create session for %s: %v", user.Username, err)
			data["Error"] = "Failed to create session"
			ac.render(c, http.StatusInternalServerError, LoginTemplate, data)
			return
		}
	}

	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session and redirects to the login page.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	c.Redirect(http.StatusFound, LoginPath)
}

// SetupPage renders the first-admin form while no user exists.
func (ac *AuthController) SetupPage(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		ac.render(c, http.StatusInternalServerError, SetupTemplate, gin.H{
			"Title": "Initial setup",
			"Error": "Database error. Please try again.",
		})
		return
	}
	if hasUsers {
		c.Redirect(http.StatusFound, LoginPath)
		return
	}

	ac.render(c, http.StatusOK, SetupTemplate, gin.H{"Title": "Initial setup"})
}

// Setup creates the first admin user and logs them in.
func (ac *AuthController) Setup(c *gin.Context) {
	setupMutex.Lock()
	defer setupMutex.Unlock()

	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		ac.render(c, http.StatusInternalServerError, SetupTemplate, gin.H{
			"Title": "Initial setup",
			"Error": "Database error. Please try again.",
		})
		return
	}
	if hasUsers {
		c.Redirect(http.StatusFound, LoginPath)
		return
	}

	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	data := gin.H{"Title": "Initial setup", "Username": username, "Email": email}

	if password != c.PostForm("confirm_password") {
		data["Error"] = "Passwords do not match"
		ac.render(c, http.StatusBadRequest, SetupTemplate, data)
		return
	}

	user, err := ac.service.CreateUser(username, email, password, entities.UserRoleAdmin)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			c.Redirect(http.StatusFound, LoginPath)
			return
		}
		data["Error"] = setupErrorMessage(err)
		ac.render(c, http.StatusBadRequest, SetupTemplate, data)
		return
	}
	log.Printf("Created first admin user %q", user.Username)

	if ac.sessionManager != nil {
		_ = ac.sessionManager.CreateSession(c.Request, user)
	}
	c.Redirect(http.StatusFound, "/admin/")
}

func setupErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrPasswordTooShort):
		return "Password must be at least 12 characters"
	case errors.Is(err, ErrPasswordTooLong):
		return "Password exceeds maximum length of 72 characters"
	case errors.Is(err, ErrUsernameRequired):
		return "Username is required"
	case errors.Is(err, ErrUsernameInvalid):
		return "Username must be 3-64 characters, alphanumeric with underscore/hyphen only"
	case errors.Is(err, ErrEmailRequired):
		return "Email is required"
	case errors.Is(err, ErrEmailInvalid):
		return "Invalid email format"
	case errors.Is(err, ErrPasswordRequired):
		return "Password is required"
	default:
		return "Failed to create user"
	}
}

// APITokenController issues bearer tokens for the task API.
type APITokenController struct {
	service *Service
}

// NewAPITokenController creates a new API token controller.
func NewAPITokenController(service *Service) *APITokenController {
	return &APITokenController{service: service}
}

// GenerateToken creates a new API token for the authenticated user.
func (tc *APITokenController) GenerateToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	token, err := tc.service.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

// RevokeToken revokes the API token for the authenticated user.
func (tc *APITokenController) RevokeToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := tc.service.RevokeToken(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}
