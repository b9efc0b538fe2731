package services

import (
	"context"
	"errors"
	"testing"

	"finman/internal/core"
	"finman/internal/storage"
)

func TestRegisterValidation(t *testing.T) {
	users, _ := testServices(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"empty name", "", "ada@example.com", "correct horse", core.ErrEmptyName},
		{"empty email", "Ada", "", "correct horse", core.ErrEmptyEmail},
		{"email without at sign", "Ada", "ada.example.com", "correct horse", core.ErrEmptyEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := users.Register(ctx, tc.userName, tc.email, tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}

	if _, err := users.Register(ctx, "Ada", "ada@example.com", "short"); err == nil {
		t.Fatal("short password accepted")
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	users, _ := testServices(t)

	u, err := users.Register(context.Background(), "Ada", "  Ada@Example.COM ", "correct horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("email %q", u.Email)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users, _ := testServices(t)
	registeredUser(t, users, "ada@example.com")

	_, err := users.Register(context.Background(), "Other", "ada@example.com", "correct horse")
	if !errors.Is(err, storage.ErrDuplicateEmail) {
		t.Fatalf("got %v, want ErrDuplicateEmail", err)
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	users, _ := testServices(t)
	registered := registeredUser(t, users, "ada@example.com")
	ctx := context.Background()

	user, token, err := users.Login(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID || token == "" {
		t.Fatalf("got user %d token %q", user.ID, token)
	}

	userID, err := users.Authenticate(ctx, token)
	if err != nil || userID != registered.ID {
		t.Fatalf("authenticate got %d/%v", userID, err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	users, _ := testServices(t)
	registeredUser(t, users, "ada@example.com")
	ctx := context.Background()

	if _, _, err := users.Login(ctx, "ada@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password got %v", err)
	}
	if _, _, err := users.Login(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email got %v", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	users, _ := testServices(t)
	registeredUser(t, users, "ada@example.com")
	ctx := context.Background()

	_, token, err := users.Login(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := users.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := users.Authenticate(ctx, token); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("token still valid after logout: %v", err)
	}

	// Logging out twice is fine.
	if err := users.Logout(ctx, token); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestAuthenticateUnknownToken(t *testing.T) {
	users, _ := testServices(t)
	if _, err := users.Authenticate(context.Background(), "no-such-token"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}
