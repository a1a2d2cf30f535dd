package handlers

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/response"
	"github.com/saeid-a/FitTrackBack/internal/services"
)

type authService interface {
	Register(ctx context.Context, input services.RegisterInput, meta models.RequestMeta) (*models.UserDetail, error)
	Login(ctx context.Context, email, password string, meta models.RequestMeta) (*services.LoginResult, error)
}

type AuthHandler struct {
	service authService
}

func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID int64  `json:"tenant_id"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 255), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(&r.TenantID, validation.Required, validation.Min(int64(1))),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validationFailed(req.Validate()); err != nil {
		return response.Error(c, err)
	}

	detail, err := h.service.Register(c.UserContext(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		TenantID: req.TenantID,
	}, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, detail, "User registered successfully")
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validationFailed(req.Validate()); err != nil {
		return response.Error(c, err)
	}

	result, err := h.service.Login(c.UserContext(), req.Email, req.Password, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, result, "Login successful")
}
