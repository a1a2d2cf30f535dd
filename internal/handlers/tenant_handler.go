package handlers

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"github.com/saeid-a/FitTrackBack/internal/response"
)

type tenantService interface {
	Get(ctx context.Context, id int64) (*models.Tenant, error)
	GetConfig(ctx context.Context, tenantID int64) (*models.TenantConfig, error)
	List(ctx context.Context, filter repository.TenantListFilter, page repository.PageRequest) (models.Page[models.Tenant], error)
	Create(ctx context.Context, actor *models.User, name, tenantType string, meta models.RequestMeta) (*models.TenantDetail, error)
	UpdateConfig(ctx context.Context, actor *models.User, tenantID int64, patch models.TenantConfigPatch, meta models.RequestMeta) (*models.TenantConfig, error)
}

// TenantHandler serves the admin-only tenant endpoints. The routes gate it
// with AdminRequired.
type TenantHandler struct {
	service tenantService
	paging  Paging
}

func NewTenantHandler(service tenantService, paging Paging) *TenantHandler {
	return &TenantHandler{service: service, paging: paging}
}

type tenantRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (r tenantRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Type, validation.Required, in(models.TenantTypes)),
	)
}

func (h *TenantHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req tenantRequest
	if err := parseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validationFailed(req.Validate()); err != nil {
		return response.Error(c, err)
	}

	detail, err := h.service.Create(c.UserContext(), actor, req.Name, req.Type, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, detail, "Tenant created successfully")
}

func (h *TenantHandler) List(c *fiber.Ctx) error {
	page, err := h.paging.parse(c)
	if err != nil {
		return response.Error(c, err)
	}
	filter := repository.TenantListFilter{
		Type:   c.Query("type"),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if err := validationFailed(validation.Errors{
		"type": validation.Validate(filter.Type, in(models.TenantTypes)),
	}.Filter()); err != nil {
		return response.Error(c, err)
	}

	result, err := h.service.List(c.UserContext(), filter, page)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, result, "Tenants retrieved successfully")
}

func (h *TenantHandler) Get(c *fiber.Ctx) error {
	tenantID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	tenant, err := h.service.Get(c.UserContext(), tenantID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, tenant, "Tenant retrieved successfully")
}

func (h *TenantHandler) GetConfig(c *fiber.Ctx) error {
	tenantID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	cfg, err := h.service.GetConfig(c.UserContext(), tenantID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, cfg, "Tenant configuration retrieved successfully")
}

func (h *TenantHandler) UpdateConfig(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	tenantID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var patch models.TenantConfigPatch
	if err := parseBody(c, &patch); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(validation.Errors{
		"branding":      patchValue(patch.Branding),
		"feature_flags": patchValue(patch.FeatureFlags),
		"user_policies": patchValue(patch.UserPolicies),
	}.Filter()); err != nil {
		return response.Error(c, err)
	}

	cfg, err := h.service.UpdateConfig(c.UserContext(), actor, tenantID, patch, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, cfg, "Tenant configuration updated successfully")
}
