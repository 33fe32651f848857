package auth

import (
	"crypto/sha256"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

const (
	// CSRFFieldName is the hidden form field carrying the token.
	CSRFFieldName = "csrf_token"
	// CSRFTokenHeader is the header name for CSRF tokens in scripted requests.
	CSRFTokenHeader = "X-CSRF-Token"

	csrfContextKey = "csrf_token"
	csrfCookieName = "bookoutlet_csrf"
)

// CSRFKey derives the 32-byte key gorilla/csrf expects from the configured secret.
func CSRFKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// CSRFMiddleware protects unsafe methods with gorilla/csrf. Requests carrying
// a valid bearer token are exempt since they cannot be forged by a browser.
func CSRFMiddleware(key []byte, secure bool, authService *Service) gin.HandlerFunc {
	protect := csrf.Protect(
		key,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.CookieName(csrfCookieName),
		csrf.FieldName(CSRFFieldName),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if hasValidBearer(c, authService) {
			c.Next()
			return
		}

		req := c.Request
		if !secure {
			req = csrf.PlaintextHTTPRequest(req)
		}

		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(csrfContextKey, csrf.Token(r))
			c.Request = r
			c.Next()
		}))
		handler.ServeHTTP(c.Writer, req)

		// The error handler already wrote the response
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") || strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing"}`))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Forbidden</title></head>
<body>
<h1>Forbidden (403)</h1>
<p>CSRF verification failed. Request aborted.</p>
<p><a href="javascript:history.back()">Go back and try again</a></p>
</body>
</html>`))
}

func hasValidBearer(c *gin.Context, authService *Service) bool {
	token, ok := bearerToken(c)
	if !ok {
		return false
	}
	if authService == nil {
		return true
	}
	_, err := authService.ValidateToken(token)
	return err == nil
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// GetCSRFToken retrieves the CSRF token from the Gin context.
func GetCSRFToken(c *gin.Context) string {
	token, _ := c.Get(csrfContextKey)
	s, _ := token.(string)
	return s
}

// CSRFTokenField returns a hidden input with the token, or "" when CSRF is off.
func CSRFTokenField(c *gin.Context) template.HTML {
	token := GetCSRFToken(c)
	if token == "" {
		return ""
	}
	return template.HTML(`<input type="hidden" name="` + CSRFFieldName + `" value="` + template.HTMLEscapeString(token) + `">`)
}
