package auth

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/database/users"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

const testTemplates = `{{define "admin_login"}}login {{.Error}}{{end}}{{define "admin_setup"}}setup {{.Error}}{{end}}`

func setupTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()

	db := setupTestDB(t)
	sqlDB, err := db.DB.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}

	cfg := config.Auth{
		Mode:            config.AuthModeLocal,
		SessionLifetime: 24 * time.Hour,
		BcryptCost:      4,
	}

	svc := NewService(users.NewRepository(db.DB), cfg)
	sm, err := NewSessionManager(sqlDB, cfg)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	middleware := NewMiddleware(svc, sm, cfg)

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("").Parse(testTemplates)))
	router.Use(sm.SessionLoadSave())
	router.Use(middleware.Handler())

	controller := NewAuthController(svc, sm, cfg)
	controller.RegisterRoutes(router)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "public")
	})

	admin := router.Group("/admin", middleware.RequireAuth(), middleware.RequireWriteAccess())
	admin.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "hello "+CurrentUser(c).Username)
	})

	tokens := NewAPITokenController(svc)
	api := router.Group("/api", middleware.RequireAuth())
	api.POST("/token", tokens.GenerateToken)
	api.DELETE("/token", tokens.RevokeToken)
	api.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})

	return router, svc
}

func postForm(router http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func get(router http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestIntegration_PublicRoutes(t *testing.T) {
	router, _ := setupTestRouter(t)

	rr := get(router, "/")
	if rr.Code != http.StatusOK || rr.Body.String() != "public" {
		t.Errorf("Expected public page, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestIntegration_SetupFlow(t *testing.T) {
	router, svc := setupTestRouter(t)

	if rr := get(router, LoginPath); rr.Code != http.StatusFound || rr.Header().Get("Location") != SetupPath {
		t.Fatalf("Expected login to redirect to setup, got %d %s", rr.Code, rr.Header().Get("Location"))
	}

	rr := get(router, SetupPath)
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Body.String(), "setup") {
		t.Fatalf("Expected setup page, got %d %q", rr.Code, rr.Body.String())
	}

	rr = postForm(router, SetupPath, url.Values{
		"username":         {"admin"},
		"email":            {"admin@example.com"},
		"password":         {testPassword},
		"confirm_password": {"something-else-entirely"},
	})
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "Passwords do not match") {
		t.Fatalf("Expected mismatch error, got %d %q", rr.Code, rr.Body.String())
	}

	rr = postForm(router, SetupPath, url.Values{
		"username":         {"admin"},
		"email":            {"admin@example.com"},
		"password":         {testPassword},
		"confirm_password": {testPassword},
	})
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/" {
		t.Fatalf("Expected redirect to admin index, got %d %s", rr.Code, rr.Header().Get("Location"))
	}

	hasUsers, err := svc.HasUsers()
	if err != nil || !hasUsers {
		t.Fatalf("Expected first admin to exist, err=%v", err)
	}

	rr = get(router, "/admin/", sessionCookie(t, rr))
	if rr.Code != http.StatusOK || rr.Body.String() != "hello admin" {
		t.Errorf("Expected setup to log the admin in, got %d %q", rr.Code, rr.Body.String())
	}

	if rr := get(router, SetupPath); rr.Code != http.StatusFound || rr.Header().Get("Location") != LoginPath {
		t.Errorf("Setup must close once a user exists, got %d", rr.Code)
	}
}

func TestIntegration_SessionLoginLogoutFlow(t *testing.T) {
	router, svc := setupTestRouter(t)
	if _, err := svc.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	rr := get(router, "/admin/")
	if rr.Code != http.StatusFound || !strings.HasPrefix(rr.Header().Get("Location"), LoginPath+"?next=") {
		t.Fatalf("Expected redirect to login, got %d %s", rr.Code, rr.Header().Get("Location"))
	}

	rr = postForm(router, LoginPath, url.Values{"username": {"admin"}, "password": {"wrong-password-here"}})
	if rr.Code != http.StatusUnauthorized || !strings.Contains(rr.Body.String(), "correct username and password") {
		t.Fatalf("Expected login failure, got %d %q", rr.Code, rr.Body.String())
	}

	rr = postForm(router, LoginPath, url.Values{
		"username": {"admin"},
		"password": {testPassword},
		"next":     {"/admin/"},
	})
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/" {
		t.Fatalf("Expected redirect after login, got %d %s", rr.Code, rr.Header().Get("Location"))
	}
	cookie := sessionCookie(t, rr)

	rr = get(router, "/admin/", cookie)
	if rr.Code != http.StatusOK || rr.Body.String() != "hello admin" {
		t.Fatalf("Expected authenticated admin page, got %d %q", rr.Code, rr.Body.String())
	}

	if rr := get(router, LoginPath+"?next=/admin/", cookie); rr.Code != http.StatusFound {
		t.Errorf("Logged in users should skip the login form, got %d", rr.Code)
	}

	rr = postForm(router, LogoutPath, url.Values{}, cookie)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != LoginPath {
		t.Fatalf("Expected redirect to login after logout, got %d %s", rr.Code, rr.Header().Get("Location"))
	}

	if rr := get(router, "/admin/", cookie); rr.Code != http.StatusFound {
		t.Errorf("Old session must be gone after logout, got %d", rr.Code)
	}
}

func TestIntegration_LoginRejectsExternalRedirect(t *testing.T) {
	router, svc := setupTestRouter(t)
	if _, err := svc.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	rr := postForm(router, LoginPath, url.Values{
		"username": {"admin"},
		"password": {testPassword},
		"next":     {"//evil.example.com/"},
	})
	if loc := rr.Header().Get("Location"); loc != "/admin/" {
		t.Errorf("Expected redirect to /admin/, got %s", loc)
	}
}

func TestIntegration_TokenGenerateUseRevokeFlow(t *testing.T) {
	router, svc := setupTestRouter(t)
	if _, err := svc.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	rr := postForm(router, LoginPath, url.Values{"username": {"admin"}, "password": {testPassword}})
	cookie := sessionCookie(t, rr)

	rr = postForm(router, "/api/token", url.Values{}, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected token, got %d %q", rr.Code, rr.Body.String())
	}
	token := extractJSONString(t, rr.Body.String(), "token")

	whoami := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	if rr := whoami(); rr.Code != http.StatusOK || rr.Body.String() != "admin" {
		t.Fatalf("Expected bearer access, got %d %q", rr.Code, rr.Body.String())
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/token", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected revoke to succeed, got %d", rr.Code)
	}

	if rr := whoami(); rr.Code != http.StatusUnauthorized {
		t.Errorf("Revoked token must be rejected, got %d", rr.Code)
	}
}

func TestIntegration_LoginRateLimited(t *testing.T) {
	router, svc := setupTestRouter(t)
	if _, err := svc.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	var rr *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		rr = postForm(router, LoginPath, url.Values{"username": {"admin"}, "password": {"wrong-password-here"}})
	}
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 after repeated failures, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
}

func extractJSONString(t *testing.T, body, key string) string {
	t.Helper()
	marker := `"` + key + `":"`
	start := strings.Index(body, marker)
	if start < 0 {
		t.Fatalf("key %q not found in %s", key, body)
	}
	rest := body[start+len(marker):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		t.Fatalf("unterminated value for %q in %s", key, body)
	}
	return rest[:end]
}
