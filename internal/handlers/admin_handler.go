package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"github.com/saeid-a/FitTrackBack/internal/response"
)

type adminService interface {
	ListUsers(ctx context.Context, actor *models.User, filter repository.UserListFilter, page repository.PageRequest) (models.Page[models.User], error)
	GetUser(ctx context.Context, actor *models.User, userID int64) (*models.UserDetail, error)
	Activate(ctx context.Context, actor *models.User, userID int64, meta models.RequestMeta) (*models.User, error)
	Deactivate(ctx context.Context, actor *models.User, userID int64, meta models.RequestMeta) (*models.User, error)
	DeleteUser(ctx context.Context, actor *models.User, userID int64, meta models.RequestMeta) error
	Stats(ctx context.Context, actor *models.User) (*models.UserStats, error)
}

type auditReader interface {
	List(ctx context.Context, filter repository.AuditListFilter, page repository.PageRequest) (models.Page[models.AuditLog], error)
}

type AdminHandler struct {
	admin  adminService
	audit  auditReader
	paging Paging
}

func NewAdminHandler(admin adminService, audit auditReader, paging Paging) *AdminHandler {
	return &AdminHandler{admin: admin, audit: audit, paging: paging}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	page, err := h.paging.parse(c)
	if err != nil {
		return response.Error(c, err)
	}
	tenantID, tenantErr := queryInt64(c, "tenant_id")
	isActive, activeErr := queryBool(c, "is_active")
	isAdmin, adminErr := queryBool(c, "is_admin")
	if err := firstErr(tenantErr, activeErr, adminErr); err != nil {
		return response.Error(c, err)
	}

	result, err := h.admin.ListUsers(c.UserContext(), actor, repository.UserListFilter{
		TenantID: tenantID,
		IsActive: isActive,
		IsAdmin:  isAdmin,
		Search:   strings.TrimSpace(c.Query("search")),
	}, page)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, result, "Users retrieved successfully")
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	userID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	detail, err := h.admin.GetUser(c.UserContext(), actor, userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, detail, "User retrieved successfully")
}

func (h *AdminHandler) Activate(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

func (h *AdminHandler) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *AdminHandler) setActive(c *fiber.Ctx, active bool) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	userID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	var (
		user *models.User
		msg  string
	)
	if active {
		user, err = h.admin.Activate(c.UserContext(), actor, userID, requestMeta(c))
		msg = "User activated successfully"
	} else {
		user, err = h.admin.Deactivate(c.UserContext(), actor, userID, requestMeta(c))
		msg = "User deactivated successfully"
	}
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, user, msg)
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	userID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.admin.DeleteUser(c.UserContext(), actor, userID, requestMeta(c)); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, nil, "User deleted successfully")
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	stats, err := h.admin.Stats(c.UserContext(), actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, stats, "User statistics retrieved successfully")
}

func (h *AdminHandler) AuditLogs(c *fiber.Ctx) error {
	page, err := h.paging.parse(c)
	if err != nil {
		return response.Error(c, err)
	}
	userID, userErr := queryInt64(c, "user_id")
	from, fromErr := queryTime(c, "from_date", false)
	to, toErr := queryTime(c, "to_date", true)
	if err := firstErr(userErr, fromErr, toErr); err != nil {
		return response.Error(c, err)
	}

	result, err := h.audit.List(c.UserContext(), repository.AuditListFilter{
		UserID:     userID,
		ActionType: strings.TrimSpace(c.Query("action_type")),
		EntityType: strings.TrimSpace(c.Query("entity_type")),
		From:       from,
		To:         to,
	}, page)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, result, "Audit logs retrieved successfully")
}
