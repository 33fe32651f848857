package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidRole      = errors.New("invalid role")
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// UserStore is the persistence the service needs; users.Repository implements it.
type UserStore interface {
	Create(user *entities.User) error
	GetByID(id uint) (*entities.User, error)
	GetByLogin(login string) (*entities.User, error)
	GetByTokenHash(hash string) (*entities.User, error)
	Exists(username, email string) (bool, error)
	Update(id uint, fields map[string]any) error
	Count() (int64, error)
}

// Service handles admin authentication and user management.
type Service struct {
	users  UserStore
	config config.Auth
	now    func() time.Time
}

// NewService creates a new authentication service.
func NewService(users UserStore, cfg config.Auth) *Service {
	return &Service{
		users:  users,
		config: cfg,
		now:    time.Now,
	}
}

// ParseRole converts user input into a role.
func ParseRole(s string) (entities.UserRole, error) {
	switch role := entities.UserRole(strings.ToLower(strings.TrimSpace(s))); role {
	case entities.UserRoleAdmin, entities.UserRoleViewer:
		return role, nil
	default:
		return "", ErrInvalidRole
	}
}

// CreateUser creates a new user with password authentication.
func (s *Service) CreateUser(username, email, password string, role entities.UserRole) (*entities.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	switch {
	case username == "":
		return nil, ErrUsernameRequired
	case email == "":
		return nil, ErrEmailRequired
	case password == "":
		return nil, ErrPasswordRequired
	case !usernamePattern.MatchString(username):
		return nil, ErrUsernameInvalid
	case len(email) > 254 || !emailPattern.MatchString(email):
		return nil, ErrEmailInvalid
	}

	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate validates credentials and returns the user. Accounts are locked
// for LockoutDuration after MaxLoginAttempts consecutive failures.
func (s *Service) Authenticate(login, password string) (*entities.User, error) {
	user, err := s.users.GetByLogin(strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(user)
		return nil, err
	}

	_ = s.users.Update(user.ID, map[string]any{
		"last_login_at":      now,
		"failed_login_count": 0,
		"locked_until":       nil,
	})
	user.LastLoginAt = &now
	user.FailedLoginCount = 0
	user.LockedUntil = nil

	return user, nil
}

func (s *Service) recordFailedLogin(user *entities.User) {
	user.FailedLoginCount++
	updates := map[string]any{
		"failed_login_count": user.FailedLoginCount,
	}

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if user.FailedLoginCount >= maxAttempts {
		lockout := s.config.LockoutDuration
		if lockout <= 0 {
			lockout = 30 * time.Minute
		}
		lockedUntil := s.now().Add(lockout)
		updates["locked_until"] = lockedUntil
		updates["failed_login_count"] = 0
		user.LockedUntil = &lockedUntil
	}

	_ = s.users.Update(user.ID, updates)
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetByID(id)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ValidateToken checks a plaintext token and returns the associated user.
// Returns ErrTokenExpired if the token is past its expiry time.
func (s *Service) ValidateToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByTokenHash(HashToken(token))
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if s.config.TokenExpiry > 0 && user.TokenCreatedAt != nil {
		if s.now().Sub(*user.TokenCreatedAt) > s.config.TokenExpiry {
			return nil, ErrTokenExpired
		}
	}
	return user, nil
}

// GenerateToken creates a new API token for a user and returns the plaintext
// once. Only the hash is stored.
func (s *Service) GenerateToken(userID uint) (string, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	err = s.users.Update(userID, map[string]any{
		"token_hash":       hash,
		"token_created_at": s.now(),
	})
	if errors.Is(err, entities.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to save token: %w", err)
	}
	return plaintext, nil
}

// RevokeToken removes a user's API token.
func (s *Service) RevokeToken(userID uint) error {
	err := s.users.Update(userID, map[string]any{
		"token_hash":       "",
		"token_created_at": nil,
	})
	if err != nil && !errors.Is(err, entities.ErrNotFound) {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// ChangePassword updates a user's password after checking the old one.
func (s *Service) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if err := CheckPassword(oldPassword, user.PasswordHash); err != nil {
		return err
	}
	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.Update(userID, map[string]any{"password_hash": newHash})
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.users.Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAuthEnabled returns true if authentication is required.
func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}
