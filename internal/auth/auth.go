// Package auth handles user registration and login with bcrypt
// password hashing.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"ordenate/internal/log"
	"ordenate/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrWeakPassword       = errors.New("password too short")
	ErrEmptyUsername      = errors.New("username cannot be empty")
)

const minPasswordLength = 6

// CredentialStore is the slice of the storage layer auth needs.
type CredentialStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUserCredentials(ctx context.Context, username string) (int64, string, error)
	UserExists(ctx context.Context, username string) (bool, error)
}

type Service struct {
	store  CredentialStore
	logger *log.Logger
	cost   int
}

func NewService(store CredentialStore, logger *log.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.WithComponent(log.ComponentAuth),
		cost:   bcrypt.DefaultCost,
	}
}

// Register creates a user with a hashed password and an empty dataset.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, ErrEmptyUsername
	}
	if len(password) < minPasswordLength {
		return 0, ErrWeakPassword
	}

	taken, err := s.store.UserExists(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return 0, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.store.CreateUser(ctx, username, string(hash))
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", log.FieldUser, username)
	return id, nil
}

// Login verifies a username and password and returns the user id. A
// missing user and a wrong password produce the same error so the
// response never reveals which usernames exist.
func (s *Service) Login(ctx context.Context, username, password string) (int64, error) {
	id, hash, err := s.store.GetUserCredentials(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrUserNotFound) {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("get credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "failed login attempt", log.FieldUser, username)
		return 0, ErrInvalidCredentials
	}

	s.logger.InfoContext(ctx, "user logged in", log.FieldUser, username)
	return id, nil
}
