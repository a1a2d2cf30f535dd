package handlers

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"github.com/saeid-a/FitTrackBack/internal/response"
	"github.com/saeid-a/FitTrackBack/internal/services"
)

type measurementService interface {
	Record(ctx context.Context, actor *models.User, input services.MeasurementInput, meta models.RequestMeta) (*models.BodyMeasurement, error)
	List(ctx context.Context, actor *models.User, filter repository.MeasurementListFilter, page repository.PageRequest) (models.Page[models.BodyMeasurement], error)
	Get(ctx context.Context, actor *models.User, id int64) (*models.BodyMeasurement, error)
	Update(ctx context.Context, actor *models.User, id int64, patch models.MeasurementPatch, meta models.RequestMeta) (*models.BodyMeasurement, error)
	Delete(ctx context.Context, actor *models.User, id int64, meta models.RequestMeta) error
}

type MeasurementHandler struct {
	service measurementService
	paging  Paging
}

func NewMeasurementHandler(service measurementService, paging Paging) *MeasurementHandler {
	return &MeasurementHandler{service: service, paging: paging}
}

type measurementRequest struct {
	UserID     *int64     `json:"user_id"`
	MetricType string     `json:"metric_type"`
	Value      *float64   `json:"value"`
	Unit       string     `json:"unit"`
	MeasuredAt *time.Time `json:"measured_at"`
	Notes      *string    `json:"notes"`
}

func (r measurementRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MetricType, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Value, validation.NotNil),
		validation.Field(&r.Unit, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Notes, validation.Length(0, 2000)),
	)
}

func (h *MeasurementHandler) Record(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req measurementRequest
	if err := parseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(req.Validate()); err != nil {
		return response.Error(c, err)
	}

	measurement, err := h.service.Record(c.UserContext(), actor, services.MeasurementInput{
		UserID:     req.UserID,
		MetricType: strings.TrimSpace(req.MetricType),
		Value:      *req.Value,
		Unit:       strings.TrimSpace(req.Unit),
		MeasuredAt: req.MeasuredAt,
		Notes:      req.Notes,
	}, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, measurement, "Measurement recorded successfully")
}

func (h *MeasurementHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	page, err := h.paging.parse(c)
	if err != nil {
		return response.Error(c, err)
	}
	from, fromErr := queryTime(c, "from_date", false)
	to, toErr := queryTime(c, "to_date", true)
	if err := firstErr(fromErr, toErr); err != nil {
		return response.Error(c, err)
	}

	result, err := h.service.List(c.UserContext(), actor, repository.MeasurementListFilter{
		MetricType: strings.TrimSpace(c.Query("metric_type")),
		From:       from,
		To:         to,
	}, page)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, result, "Measurements retrieved successfully")
}

func (h *MeasurementHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	measurement, err := h.service.Get(c.UserContext(), actor, id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, measurement, "Measurement retrieved successfully")
}

func (h *MeasurementHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var patch models.MeasurementPatch
	if err := parseBody(c, &patch); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(validation.Errors{
		"value": patchValue(patch.Value),
		"notes": nullablePatchValue(patch.Notes, validation.Length(0, 2000)),
	}.Filter()); err != nil {
		return response.Error(c, err)
	}

	measurement, err := h.service.Update(c.UserContext(), actor, id, patch, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, measurement, "Measurement updated successfully")
}

func (h *MeasurementHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.service.Delete(c.UserContext(), actor, id, requestMeta(c)); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, nil, "Measurement deleted successfully")
}
