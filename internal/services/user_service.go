// Package services orchestrates the storage layer, credential handling and
// event publishing behind the HTTP handlers.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"finman/internal/core"
	"finman/internal/storage"
)

var (
	// ErrInvalidCredentials covers both unknown emails and wrong passwords,
	// so a login failure never reveals which of the two it was.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrWeakPassword = errors.New("password must be at least 8 characters")
)

// UserService handles registration and session-token authentication.
type UserService struct {
	storage    *storage.SQLiteRepository
	sessionTTL time.Duration
}

func NewUserService(storage *storage.SQLiteRepository, sessionTTL time.Duration) *UserService {
	return &UserService{
		storage:    storage,
		sessionTTL: sessionTTL,
	}
}

// Register creates a user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, name, email, password string) (core.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" {
		return core.User{}, core.ErrEmptyName
	}
	if email == "" || !strings.Contains(email, "@") {
		return core.User{}, core.ErrEmptyEmail
	}
	if len(password) < 8 {
		return core.User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.storage.CreateUser(ctx, name, email, string(hash))
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login verifies the password against the stored hash and issues a session
// token that stays valid for the configured TTL.
func (s *UserService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, hash, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return core.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		slog.WarnContext(ctx, "Login failed", "email", email)
		return core.User{}, "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.storage.CreateSession(ctx, token, user.ID, time.Now().Add(s.sessionTTL)); err != nil {
		return core.User{}, "", fmt.Errorf("create session: %w", err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return user, token, nil
}

// Authenticate resolves a bearer token to its user id.
func (s *UserService) Authenticate(ctx context.Context, token string) (int64, error) {
	userID, err := s.storage.GetSessionUser(ctx, token)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("resolve session: %w", err)
	}
	return userID, nil
}

// Logout invalidates the token. Unknown tokens are not an error.
func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.storage.DeleteSession(ctx, token)
}

// GetUser returns a user's public fields.
func (s *UserService) GetUser(ctx context.Context, id int64) (core.User, error) {
	return s.storage.GetUserByID(ctx, id)
}

// SweepSessions removes expired tokens. Meant to run periodically.
func (s *UserService) SweepSessions(ctx context.Context) {
	n, err := s.storage.DeleteExpiredSessions(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Session sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "Expired sessions removed", "count", n)
	}
}
