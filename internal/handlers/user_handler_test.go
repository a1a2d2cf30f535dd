package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"github.com/saeid-a/FitTrackBack/internal/services"
)

type stubUserService struct {
	lastProfile       models.ProfilePatch
	lastNotifications models.NotificationPatch
	lastConsent       services.ConsentInput
	lastConsentType   string
	calls             int
}

func (s *stubUserService) Me(_ context.Context, actor *models.User) (*models.UserDetail, error) {
	return &models.UserDetail{User: *actor}, nil
}

func (s *stubUserService) UpdateProfile(_ context.Context, actor *models.User, patch models.ProfilePatch, _ models.RequestMeta) (*models.UserProfile, error) {
	s.calls++
	s.lastProfile = patch
	return &models.UserProfile{UserID: actor.ID}, nil
}

func (s *stubUserService) Notifications(_ context.Context, actor *models.User) (*models.NotificationPreference, error) {
	return &models.NotificationPreference{UserID: actor.ID}, nil
}

func (s *stubUserService) UpdateNotifications(_ context.Context, actor *models.User, patch models.NotificationPatch, _ models.RequestMeta) (*models.NotificationPreference, error) {
	s.calls++
	s.lastNotifications = patch
	return &models.NotificationPreference{UserID: actor.ID}, nil
}

func (s *stubUserService) RecordConsent(_ context.Context, actor *models.User, input services.ConsentInput, _ models.RequestMeta) (*models.UserConsent, error) {
	s.calls++
	s.lastConsent = input
	return &models.UserConsent{UserID: actor.ID, ConsentType: input.ConsentType, Granted: input.Granted}, nil
}

func (s *stubUserService) ListConsents(_ context.Context, _ *models.User, consentType string, page repository.PageRequest) (models.Page[models.UserConsent], error) {
	s.calls++
	s.lastConsentType = consentType
	return models.Page[models.UserConsent]{PaginationMeta: models.PaginationMeta{Page: page.Page, PageSize: page.PageSize}}, nil
}

func newUserApp(service *stubUserService) *fiber.App {
	app := newTestApp(member(3))
	handler := NewUserHandler(service, ResourcePaging(100))
	app.Get("/me", handler.Me)
	app.Put("/me/profile", handler.UpdateProfile)
	app.Put("/me/notifications", handler.UpdateNotifications)
	app.Post("/me/consents", handler.RecordConsent)
	app.Get("/me/consents", handler.ListConsents)
	return app
}

func TestUpdateProfileValidation(t *testing.T) {
	service := &stubUserService{}
	app := newUserApp(service)

	status, env := send(t, app, http.MethodPut, "/me/profile", `{"height_cm": 0, "gender": "robot", "timezone": null, "date_of_birth": "1990-02-30"}`)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}
	names := fieldNames(t, env)
	for _, want := range []string{"date_of_birth", "gender", "height_cm", "timezone"} {
		if !hasField(names, want) {
			t.Fatalf("expected %s in errors, got %v", want, names)
		}
	}
	if service.calls != 0 {
		t.Fatalf("service must not be called")
	}

	status, _ = send(t, app, http.MethodPut, "/me/profile", `{"full_name": null, "height_cm": 182.5, "preferences": {"theme": "dark"}}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !service.lastProfile.FullName.Null || service.lastProfile.HeightCM.Value != 182.5 {
		t.Fatalf("unexpected patch %+v", service.lastProfile)
	}
	if service.lastProfile.UnitPreference.Set {
		t.Fatalf("absent fields must stay unset")
	}
}

func TestUpdateNotificationsQuietHours(t *testing.T) {
	service := &stubUserService{}
	app := newUserApp(service)

	status, env := send(t, app, http.MethodPut, "/me/notifications", `{"quiet_hours_start": "25:00", "email_enabled": null}`)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}
	names := fieldNames(t, env)
	if !hasField(names, "quiet_hours_start") || !hasField(names, "email_enabled") {
		t.Fatalf("unexpected errors %v", names)
	}

	status, _ = send(t, app, http.MethodPut, "/me/notifications", `{"quiet_hours_start": "22:30", "quiet_hours_end": null, "push_enabled": false}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if service.lastNotifications.QuietHoursStart.Value != "22:30" || !service.lastNotifications.QuietHoursEnd.Null {
		t.Fatalf("unexpected patch %+v", service.lastNotifications)
	}
}

func TestRecordConsent(t *testing.T) {
	service := &stubUserService{}
	app := newUserApp(service)

	status, env := send(t, app, http.MethodPost, "/me/consents", map[string]any{"consent_type": models.ConsentMarketing, "version": "v1"})
	if status != http.StatusUnprocessableEntity || !hasField(fieldNames(t, env), "granted") {
		t.Fatalf("expected granted to be required, got %d %+v", status, env)
	}

	status, env = send(t, app, http.MethodPost, "/me/consents", map[string]any{
		"consent_type": models.ConsentMarketing,
		"granted":      false,
		"version":      "v1",
	})
	if status != http.StatusCreated || env.Message != "Consent recorded successfully" {
		t.Fatalf("expected 201, got %d %q", status, env.Message)
	}
	if service.lastConsent.Granted || service.lastConsent.ConsentType != models.ConsentMarketing {
		t.Fatalf("unexpected input %+v", service.lastConsent)
	}
}

func TestListConsentsFiltersByType(t *testing.T) {
	service := &stubUserService{}
	app := newUserApp(service)

	status, _ := send(t, app, http.MethodGet, "/me/consents?consent_type=newsletter", nil)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}

	status, _ = send(t, app, http.MethodGet, "/me/consents?consent_type="+models.ConsentAnalytics, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if service.lastConsentType != models.ConsentAnalytics {
		t.Fatalf("unexpected consent type %q", service.lastConsentType)
	}
}
