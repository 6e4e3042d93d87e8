package users_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/trendforge/backend/internal/database"
	"github.com/trendforge/backend/internal/users"
)

func newUserService(t *testing.T) *users.Service {
	t.Helper()

	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()), nil)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	service, err := users.NewService(users.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("user service: %v", err)
	}
	return service
}

func TestRegisterAndAuthenticate(t *testing.T) {
	service := newUserService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, users.RegisterInput{
		Name:     "Ada",
		Email:    "Ada@Example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected an id")
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "correct horse" || user.PasswordHash == "" {
		t.Fatalf("password must be stored hashed")
	}

	authenticated, err := service.Authenticate(ctx, "ADA@example.COM", "correct horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authenticated.ID != user.ID {
		t.Fatalf("expected user %q, got %q", user.ID, authenticated.ID)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service := newUserService(t)
	ctx := context.Background()

	input := users.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret"}
	if _, err := service.Register(ctx, input); err != nil {
		t.Fatalf("first register: %v", err)
	}

	input.Name = "Other Ada"
	input.Email = "  ADA@example.com "
	_, err := service.Register(ctx, input)
	if !errors.Is(err, users.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	service := newUserService(t)
	ctx := context.Background()

	cases := []users.RegisterInput{
		{Name: "", Email: "ada@example.com", Password: "secret"},
		{Name: "Ada", Email: "  ", Password: "secret"},
		{Name: "Ada", Email: "ada@example.com", Password: ""},
	}
	for _, input := range cases {
		if _, err := service.Register(ctx, input); !errors.Is(err, users.ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", input, err)
		}
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	service := newUserService(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, users.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "ada@example.com", password: "not secret"},
		{name: "unknown email", email: "nobody@example.com", password: "secret"},
		{name: "empty password", email: "ada@example.com", password: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Authenticate(ctx, tc.email, tc.password); !errors.Is(err, users.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestSummaryOmitsCredentials(t *testing.T) {
	service := newUserService(t)

	user, err := service.Register(context.Background(), users.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	summary := user.Summary()
	if summary.ID != user.ID || summary.Name != user.Name || summary.Email != user.Email {
		t.Fatalf("summary fields do not match user: %+v", summary)
	}
}
