package auth

import (
	"context"
	"errors"
	"testing"

	"ordenate/internal/log"
	"ordenate/internal/storage/memory"
)

func newTestService() *Service {
	return NewService(memory.NewStore(), log.New(log.DefaultConfig()))
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	id, err := s.Register(ctx, "maria", "secreto123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	gotID, err := s.Login(ctx, "maria", "secreto123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if gotID != id {
		t.Errorf("Login() id = %d, want %d", gotID, id)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"empty username", "   ", "secreto123", ErrEmptyUsername},
		{"short password", "maria", "abc", ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Register(ctx, tt.username, tt.password); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, err := s.Register(ctx, "maria", "secreto123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := s.Register(ctx, "maria", "otroclave"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate Register() error = %v, want ErrUsernameTaken", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, err := s.Register(ctx, "maria", "secreto123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := s.Login(ctx, "maria", "equivocada"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: error = %v, want ErrInvalidCredentials", err)
	}
	// Unknown users fail the same way as wrong passwords.
	if _, err := s.Login(ctx, "nadie", "secreto123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: error = %v, want ErrInvalidCredentials", err)
	}
}
