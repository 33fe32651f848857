package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/database"
	"github.com/mrlokans/bookoutlet/internal/database/users"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

const testPassword = "correct-horse-battery"

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewSQLiteDatabase(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func setupService(t *testing.T, cfg config.Auth) *Service {
	t.Helper()
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 4
	}
	return NewService(users.NewRepository(setupTestDB(t).DB), cfg)
}

func TestService_CreateUser(t *testing.T) {
	svc := setupService(t, config.Auth{})

	tests := []struct {
		name     string
		username string
		email    string
		password string
		role     entities.UserRole
		wantErr  error
	}{
		{"valid admin user", "admin", "admin@example.com", testPassword, entities.UserRoleAdmin, nil},
		{"valid viewer", "viewer", "viewer@example.com", testPassword, entities.UserRoleViewer, nil},
		{"missing username", "", "x@example.com", testPassword, entities.UserRoleViewer, ErrUsernameRequired},
		{"missing email", "someone", "", testPassword, entities.UserRoleViewer, ErrEmailRequired},
		{"missing password", "someone", "x@example.com", "", entities.UserRoleViewer, ErrPasswordRequired},
		{"short username", "ab", "x@example.com", testPassword, entities.UserRoleViewer, ErrUsernameInvalid},
		{"bad email", "someone", "not-an-email", testPassword, entities.UserRoleViewer, ErrEmailInvalid},
		{"unknown role", "someone", "x@example.com", testPassword, entities.UserRole("editor"), ErrInvalidRole},
		{"short password", "someone", "x@example.com", "short", entities.UserRoleViewer, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.CreateUser(tt.username, tt.email, tt.password, tt.role)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.ID == 0 {
				t.Error("expected user ID to be set")
			}
			if user.PasswordHash == tt.password {
				t.Error("password must be stored hashed")
			}
		})
	}
}

func TestService_CreateUser_Duplicate(t *testing.T) {
	svc := setupService(t, config.Auth{})

	if _, err := svc.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.CreateUser("admin", "other@example.com", testPassword, entities.UserRoleAdmin)
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestService_Authenticate(t *testing.T) {
	svc := setupService(t, config.Auth{})
	if _, err := svc.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("by username", func(t *testing.T) {
		user, err := svc.Authenticate("admin", testPassword)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.LastLoginAt == nil {
			t.Error("expected last login to be recorded")
		}
	})

	t.Run("by email", func(t *testing.T) {
		if _, err := svc.Authenticate("admin@example.com", testPassword); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Authenticate("admin", "wrong-password-123"); !errors.Is(err, ErrInvalidPassword) {
			t.Fatalf("expected ErrInvalidPassword, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := svc.Authenticate("ghost", testPassword); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestService_AccountLockout(t *testing.T) {
	svc := setupService(t, config.Auth{MaxLoginAttempts: 3, LockoutDuration: time.Hour})
	if _, err := svc.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, _ = svc.Authenticate("admin", "wrong-password-123")
	}

	if _, err := svc.Authenticate("admin", testPassword); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}

	// Lock expires
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Authenticate("admin", testPassword); err != nil {
		t.Fatalf("expected login after lockout, got %v", err)
	}
}

func TestService_TokenOperations(t *testing.T) {
	svc := setupService(t, config.Auth{TokenExpiry: time.Hour})
	user, err := svc.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := svc.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64-char token, got %d", len(token))
	}

	found, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("expected user %d, got %d", user.ID, found.ID)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
	svc.now = time.Now

	if err := svc.RevokeToken(user.ID); err != nil {
		t.Fatalf("failed to revoke token: %v", err)
	}
	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken after revoke, got %v", err)
	}

	if _, err := svc.ValidateToken(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for empty token, got %v", err)
	}

	if _, err := svc.GenerateToken(999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestService_ChangePassword(t *testing.T) {
	svc := setupService(t, config.Auth{})
	user, err := svc.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newPassword := "another-long-password"
	if err := svc.ChangePassword(user.ID, "wrong-password-123", newPassword); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, testPassword, newPassword); err != nil {
		t.Fatalf("failed to change password: %v", err)
	}
	if _, err := svc.Authenticate("admin", newPassword); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestService_HasUsers(t *testing.T) {
	svc := setupService(t, config.Auth{})

	has, err := svc.HasUsers()
	if err != nil || has {
		t.Fatalf("expected no users, got %v (%v)", has, err)
	}

	if _, err := svc.CreateUser("admin", "admin@example.com", testPassword, entities.UserRoleAdmin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	has, err = svc.HasUsers()
	if err != nil || !has {
		t.Fatalf("expected users, got %v (%v)", has, err)
	}
}

func TestParseRole(t *testing.T) {
	if role, err := ParseRole(" Viewer "); err != nil || role != entities.UserRoleViewer {
		t.Errorf("expected viewer, got %q (%v)", role, err)
	}
	if _, err := ParseRole("root"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestService_IsAuthEnabled(t *testing.T) {
	if !setupService(t, config.Auth{Mode: config.AuthModeLocal}).IsAuthEnabled() {
		t.Error("local mode should enable auth")
	}
	if setupService(t, config.Auth{Mode: config.AuthModeNone}).IsAuthEnabled() {
		t.Error("none mode should disable auth")
	}
}
