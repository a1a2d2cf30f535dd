package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
)

type stubAdminService struct {
	lastFilter repository.UserListFilter
	lastPage   repository.PageRequest
	activated  []int64
	calls      int
}

func (s *stubAdminService) ListUsers(_ context.Context, _ *models.User, filter repository.UserListFilter, page repository.PageRequest) (models.Page[models.User], error) {
	s.calls++
	s.lastFilter = filter
	s.lastPage = page
	return models.Page[models.User]{PaginationMeta: models.PaginationMeta{Page: page.Page, PageSize: page.PageSize}}, nil
}

func (s *stubAdminService) GetUser(_ context.Context, _ *models.User, userID int64) (*models.UserDetail, error) {
	return &models.UserDetail{User: models.User{ID: userID}}, nil
}

func (s *stubAdminService) Activate(_ context.Context, _ *models.User, userID int64, _ models.RequestMeta) (*models.User, error) {
	s.activated = append(s.activated, userID)
	return &models.User{ID: userID, IsActive: true}, nil
}

func (s *stubAdminService) Deactivate(_ context.Context, _ *models.User, userID int64, _ models.RequestMeta) (*models.User, error) {
	return &models.User{ID: userID}, nil
}

func (s *stubAdminService) DeleteUser(context.Context, *models.User, int64, models.RequestMeta) error {
	return nil
}

func (s *stubAdminService) Stats(context.Context, *models.User) (*models.UserStats, error) {
	return &models.UserStats{TotalUsers: 3}, nil
}

type stubAuditReader struct {
	lastFilter repository.AuditListFilter
}

func (s *stubAuditReader) List(_ context.Context, filter repository.AuditListFilter, page repository.PageRequest) (models.Page[models.AuditLog], error) {
	s.lastFilter = filter
	return models.Page[models.AuditLog]{PaginationMeta: models.PaginationMeta{Page: page.Page, PageSize: page.PageSize}}, nil
}

func newAdminApp(service *stubAdminService, audit *stubAuditReader) *fiber.App {
	app := newTestApp(admin(1))
	handler := NewAdminHandler(service, audit, Paging{Default: 20, Max: 100})
	app.Get("/users", handler.ListUsers)
	app.Get("/users/stats/summary", handler.Stats)
	app.Get("/users/:id", handler.GetUser)
	app.Patch("/users/:id/activate", handler.Activate)
	app.Patch("/users/:id/deactivate", handler.Deactivate)
	app.Get("/audit-logs", handler.AuditLogs)
	return app
}

func TestListUsersParsesFilters(t *testing.T) {
	service := &stubAdminService{}
	app := newAdminApp(service, &stubAuditReader{})

	status, env := send(t, app, http.MethodGet, "/users?tenant_id=2&is_active=false&is_admin=true&search=ann", nil)
	if status != http.StatusOK || env.Message != "Users retrieved successfully" {
		t.Fatalf("expected 200, got %d %q", status, env.Message)
	}
	f := service.lastFilter
	if f.TenantID == nil || *f.TenantID != 2 {
		t.Fatalf("unexpected tenant filter %+v", f.TenantID)
	}
	if f.IsActive == nil || *f.IsActive || f.IsAdmin == nil || !*f.IsAdmin {
		t.Fatalf("unexpected flag filters %+v", f)
	}
	if f.Search != "ann" {
		t.Fatalf("unexpected search %q", f.Search)
	}
	if service.lastPage.PageSize != 20 {
		t.Fatalf("expected admin default page size 20, got %d", service.lastPage.PageSize)
	}
}

func TestListUsersRejectsBadFilters(t *testing.T) {
	for _, query := range []string{"is_active=maybe", "tenant_id=-1", "page_size=500"} {
		t.Run(query, func(t *testing.T) {
			service := &stubAdminService{}
			app := newAdminApp(service, &stubAuditReader{})

			status, _ := send(t, app, http.MethodGet, "/users?"+query, nil)
			if status != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", status)
			}
			if service.calls != 0 {
				t.Fatalf("service must not be called")
			}
		})
	}
}

func TestStatsRouteIsNotShadowedByUserID(t *testing.T) {
	app := newAdminApp(&stubAdminService{}, &stubAuditReader{})

	status, env := send(t, app, http.MethodGet, "/users/stats/summary", nil)
	if status != http.StatusOK || env.Message != "User statistics retrieved successfully" {
		t.Fatalf("expected stats, got %d %q", status, env.Message)
	}
}

func TestActivateUser(t *testing.T) {
	service := &stubAdminService{}
	app := newAdminApp(service, &stubAuditReader{})

	status, env := send(t, app, http.MethodPatch, "/users/12/activate", nil)
	if status != http.StatusOK || env.Message != "User activated successfully" {
		t.Fatalf("expected 200, got %d %q", status, env.Message)
	}
	if len(service.activated) != 1 || service.activated[0] != 12 {
		t.Fatalf("unexpected activations %v", service.activated)
	}

	status, env = send(t, app, http.MethodPatch, "/users/12/deactivate", nil)
	if status != http.StatusOK || env.Message != "User deactivated successfully" {
		t.Fatalf("expected 200, got %d %q", status, env.Message)
	}
}

func TestAuditLogFilters(t *testing.T) {
	audit := &stubAuditReader{}
	app := newAdminApp(&stubAdminService{}, audit)

	status, _ := send(t, app, http.MethodGet, "/audit-logs?user_id=5&action_type=login&entity_type=user&from_date=2026-02-01", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	f := audit.lastFilter
	if f.UserID == nil || *f.UserID != 5 || f.ActionType != "login" || f.EntityType != "user" {
		t.Fatalf("unexpected filter %+v", f)
	}
	if f.From == nil || f.To != nil {
		t.Fatalf("unexpected date bounds from=%v to=%v", f.From, f.To)
	}

	status, _ = send(t, app, http.MethodGet, "/audit-logs?to_date=yesterday", nil)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}
}
