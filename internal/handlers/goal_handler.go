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

type goalService interface {
	Create(ctx context.Context, actor *models.User, input services.GoalInput, meta models.RequestMeta) (*models.Goal, error)
	List(ctx context.Context, actor *models.User, filter repository.GoalListFilter, page repository.PageRequest) (models.Page[models.Goal], error)
	Get(ctx context.Context, actor *models.User, goalID int64) (*models.GoalDetail, error)
	Update(ctx context.Context, actor *models.User, goalID int64, patch models.GoalPatch, meta models.RequestMeta) (*models.Goal, error)
	Delete(ctx context.Context, actor *models.User, goalID int64, meta models.RequestMeta) error
	AddMilestone(ctx context.Context, actor *models.User, goalID int64, milestone models.GoalMilestone, meta models.RequestMeta) (*models.GoalMilestone, error)
	UpdateMilestone(ctx context.Context, actor *models.User, goalID, milestoneID int64, patch models.MilestonePatch, meta models.RequestMeta) (*models.GoalMilestone, error)
}

type GoalHandler struct {
	service goalService
	paging  Paging
}

func NewGoalHandler(service goalService, paging Paging) *GoalHandler {
	return &GoalHandler{service: service, paging: paging}
}

type goalRequest struct {
	UserID        *int64   `json:"user_id"`
	GoalName      string   `json:"goal_name"`
	MetricType    string   `json:"metric_type"`
	TargetValue   *float64 `json:"target_value"`
	BaselineValue *float64 `json:"baseline_value"`
	Unit          string   `json:"unit"`
	StartDate     string   `json:"start_date"`
	EndDate       *string  `json:"end_date"`
	Status        string   `json:"status"`
}

func (r goalRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.GoalName, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.MetricType, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.TargetValue, validation.NotNil),
		validation.Field(&r.Unit, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.StartDate, validation.Required, validation.Date(dateLayout)),
		validation.Field(&r.EndDate, validation.Date(dateLayout)),
		validation.Field(&r.Status, in(models.GoalStatuses)),
	)
}

func validateGoalPatch(p models.GoalPatch) error {
	return validation.Errors{
		"goal_name":      patchValue(p.GoalName, validation.Required, validation.Length(1, 255)),
		"metric_type":    patchValue(p.MetricType, validation.Required, validation.Length(1, 100)),
		"target_value":   patchValue(p.TargetValue),
		"baseline_value": nullablePatchValue(p.BaselineValue),
		"unit":           patchValue(p.Unit, validation.Required, validation.Length(1, 50)),
		"start_date":     patchValue(p.StartDate, validation.Required, validation.Date(dateLayout)),
		"end_date":       nullablePatchValue(p.EndDate, validation.Date(dateLayout)),
		"status":         patchValue(p.Status, validation.Required, in(models.GoalStatuses)),
	}.Filter()
}

type milestoneRequest struct {
	MilestoneName  string   `json:"milestone_name"`
	MilestoneValue *float64 `json:"milestone_value"`
	TargetDate     *string  `json:"target_date"`
	Achieved       bool     `json:"achieved"`
}

func (r milestoneRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MilestoneName, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.MilestoneValue, validation.NotNil),
		validation.Field(&r.TargetDate, validation.Date(dateLayout)),
	)
}

func validateMilestonePatch(p models.MilestonePatch) error {
	return validation.Errors{
		"milestone_name":  patchValue(p.MilestoneName, validation.Required, validation.Length(1, 255)),
		"milestone_value": patchValue(p.MilestoneValue),
		"target_date":     nullablePatchValue(p.TargetDate, validation.Date(dateLayout)),
		"achieved":        patchValue(p.Achieved),
	}.Filter()
}

// parseDate is only called on values that already passed validation.Date.
func parseDate(value *string) *time.Time {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil
	}
	return &t
}

func (h *GoalHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req goalRequest
	if err := parseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(req.Validate()); err != nil {
		return response.Error(c, err)
	}

	goal, err := h.service.Create(c.UserContext(), actor, services.GoalInput{
		UserID:        req.UserID,
		GoalName:      strings.TrimSpace(req.GoalName),
		MetricType:    strings.TrimSpace(req.MetricType),
		TargetValue:   *req.TargetValue,
		BaselineValue: req.BaselineValue,
		Unit:          strings.TrimSpace(req.Unit),
		StartDate:     *parseDate(&req.StartDate),
		EndDate:       parseDate(req.EndDate),
		Status:        req.Status,
	}, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, goal, "Goal created successfully")
}

func (h *GoalHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	page, err := h.paging.parse(c)
	if err != nil {
		return response.Error(c, err)
	}
	filter := repository.GoalListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if err := validationFailed(validation.Errors{
		"status": validation.Validate(filter.Status, in(models.GoalStatuses)),
	}.Filter()); err != nil {
		return response.Error(c, err)
	}

	result, err := h.service.List(c.UserContext(), actor, filter, page)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, result, "Goals retrieved successfully")
}

func (h *GoalHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	goalID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	detail, err := h.service.Get(c.UserContext(), actor, goalID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, detail, "Goal retrieved successfully")
}

func (h *GoalHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	goalID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var patch models.GoalPatch
	if err := parseBody(c, &patch); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(validateGoalPatch(patch)); err != nil {
		return response.Error(c, err)
	}

	goal, err := h.service.Update(c.UserContext(), actor, goalID, patch, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, goal, "Goal updated successfully")
}

func (h *GoalHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	goalID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.service.Delete(c.UserContext(), actor, goalID, requestMeta(c)); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, nil, "Goal deleted successfully")
}

func (h *GoalHandler) AddMilestone(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	goalID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var req milestoneRequest
	if err := parseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(req.Validate()); err != nil {
		return response.Error(c, err)
	}

	milestone, err := h.service.AddMilestone(c.UserContext(), actor, goalID, models.GoalMilestone{
		MilestoneName:  strings.TrimSpace(req.MilestoneName),
		MilestoneValue: *req.MilestoneValue,
		TargetDate:     parseDate(req.TargetDate),
		Achieved:       req.Achieved,
	}, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, milestone, "Milestone added successfully")
}

func (h *GoalHandler) UpdateMilestone(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	goalID, idErr := paramID(c, "id")
	milestoneID, childErr := paramID(c, "milestoneId")
	if err := firstErr(idErr, childErr); err != nil {
		return response.Error(c, err)
	}
	var patch models.MilestonePatch
	if err := parseBody(c, &patch); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(validateMilestonePatch(patch)); err != nil {
		return response.Error(c, err)
	}

	milestone, err := h.service.UpdateMilestone(c.UserContext(), actor, goalID, milestoneID, patch, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, milestone, "Milestone updated successfully")
}
