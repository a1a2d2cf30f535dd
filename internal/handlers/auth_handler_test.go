package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/services"
)

type stubAuthService struct {
	registerCalls int
	lastRegister  services.RegisterInput
	lastEmail     string
	lastMeta      models.RequestMeta
	loginErr      error
}

func (s *stubAuthService) Register(_ context.Context, input services.RegisterInput, meta models.RequestMeta) (*models.UserDetail, error) {
	s.registerCalls++
	s.lastRegister = input
	s.lastMeta = meta
	return &models.UserDetail{User: models.User{ID: 9, Email: input.Email, TenantID: input.TenantID, IsActive: true}}, nil
}

func (s *stubAuthService) Login(_ context.Context, email, _ string, _ models.RequestMeta) (*services.LoginResult, error) {
	s.lastEmail = email
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &services.LoginResult{AccessToken: "token", TokenType: "bearer"}, nil
}

func newAuthApp(service *stubAuthService) *fiber.App {
	app := newTestApp(nil)
	handler := NewAuthHandler(service)
	app.Post("/register", handler.Register)
	app.Post("/login", handler.Login)
	return app
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	service := &stubAuthService{}
	app := newAuthApp(service)

	status, env := send(t, app, http.MethodPost, "/register", map[string]any{
		"email":    "not-an-email",
		"password": "short",
	})

	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}
	if env.Success || env.Message != "Validation error" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	names := fieldNames(t, env)
	for _, want := range []string{"email", "password", "tenant_id"} {
		if !hasField(names, want) {
			t.Fatalf("expected %s in errors, got %v", want, names)
		}
	}
	if service.registerCalls != 0 {
		t.Fatalf("service must not be called on invalid input")
	}
}

func TestRegisterRejectsMalformedBody(t *testing.T) {
	app := newAuthApp(&stubAuthService{})

	status, env := send(t, app, http.MethodPost, "/register", "{not json")
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}
	if env.Message != "Invalid request body" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	service := &stubAuthService{}
	app := newAuthApp(service)

	status, env := send(t, app, http.MethodPost, "/register", map[string]any{
		"email":     "  runner@example.com ",
		"password":  "long-enough-password",
		"tenant_id": 2,
		"is_admin":  true,
	})

	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if !env.Success || env.Message != "User registered successfully" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if service.lastRegister.Email != "runner@example.com" || service.lastRegister.TenantID != 2 {
		t.Fatalf("unexpected input: %+v", service.lastRegister)
	}
}

func TestLoginPassesServiceErrorsThrough(t *testing.T) {
	service := &stubAuthService{loginErr: apperr.Unauthenticated("Incorrect email or password")}
	app := newAuthApp(service)

	status, env := send(t, app, http.MethodPost, "/login", map[string]any{
		"email":    "runner@example.com",
		"password": "whatever",
	})

	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if env.Message != "Incorrect email or password" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}
