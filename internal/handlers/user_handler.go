package handlers

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"github.com/saeid-a/FitTrackBack/internal/response"
	"github.com/saeid-a/FitTrackBack/internal/services"
)

type userService interface {
	Me(ctx context.Context, actor *models.User) (*models.UserDetail, error)
	UpdateProfile(ctx context.Context, actor *models.User, patch models.ProfilePatch, meta models.RequestMeta) (*models.UserProfile, error)
	Notifications(ctx context.Context, actor *models.User) (*models.NotificationPreference, error)
	UpdateNotifications(ctx context.Context, actor *models.User, patch models.NotificationPatch, meta models.RequestMeta) (*models.NotificationPreference, error)
	RecordConsent(ctx context.Context, actor *models.User, input services.ConsentInput, meta models.RequestMeta) (*models.UserConsent, error)
	ListConsents(ctx context.Context, actor *models.User, consentType string, page repository.PageRequest) (models.Page[models.UserConsent], error)
}

type UserHandler struct {
	service userService
	paging  Paging
}

func NewUserHandler(service userService, paging Paging) *UserHandler {
	return &UserHandler{service: service, paging: paging}
}

func validateProfilePatch(p models.ProfilePatch) error {
	return validation.Errors{
		"full_name":       nullablePatchValue(p.FullName, validation.Length(1, 255)),
		"date_of_birth":   nullablePatchValue(p.DateOfBirth, validation.Date(dateLayout)),
		"gender":          nullablePatchValue(p.Gender, in(models.Genders)),
		"height_cm":       nullablePatchValue(p.HeightCM, positiveUpTo(300)),
		"unit_preference": patchValue(p.UnitPreference, in(models.UnitPreferences)),
		"timezone":        patchValue(p.Timezone, validation.Required, validation.Length(1, 64)),
		"language":        patchValue(p.Language, validation.Required, validation.Length(2, 10)),
	}.Filter()
}

func validateNotificationPatch(p models.NotificationPatch) error {
	clock := validation.Match(clockPattern).Error("must be a time of day (HH:MM)")
	return validation.Errors{
		"email_enabled":     patchValue(p.EmailEnabled),
		"push_enabled":      patchValue(p.PushEnabled),
		"workout_reminders": patchValue(p.WorkoutReminders),
		"goal_milestones":   patchValue(p.GoalMilestones),
		"streak_alerts":     patchValue(p.StreakAlerts),
		"quiet_hours_start": nullablePatchValue(p.QuietHoursStart, clock),
		"quiet_hours_end":   nullablePatchValue(p.QuietHoursEnd, clock),
	}.Filter()
}

type consentRequest struct {
	ConsentType string `json:"consent_type"`
	Granted     *bool  `json:"granted"`
	Version     string `json:"version"`
}

func (r consentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ConsentType, validation.Required, in(models.ConsentTypes)),
		validation.Field(&r.Granted, validation.NotNil),
		validation.Field(&r.Version, validation.Required, validation.Length(1, 50)),
	)
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	detail, err := h.service.Me(c.UserContext(), actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, detail, "User profile retrieved successfully")
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	var patch models.ProfilePatch
	if err := parseBody(c, &patch); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(validateProfilePatch(patch)); err != nil {
		return response.Error(c, err)
	}

	profile, err := h.service.UpdateProfile(c.UserContext(), actor, patch, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, profile, "Profile updated successfully")
}

func (h *UserHandler) Notifications(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	prefs, err := h.service.Notifications(c.UserContext(), actor)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, prefs, "Notification preferences retrieved successfully")
}

func (h *UserHandler) UpdateNotifications(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	var patch models.NotificationPatch
	if err := parseBody(c, &patch); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(validateNotificationPatch(patch)); err != nil {
		return response.Error(c, err)
	}

	prefs, err := h.service.UpdateNotifications(c.UserContext(), actor, patch, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, prefs, "Notification preferences updated successfully")
}

func (h *UserHandler) RecordConsent(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req consentRequest
	if err := parseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(req.Validate()); err != nil {
		return response.Error(c, err)
	}

	consent, err := h.service.RecordConsent(c.UserContext(), actor, services.ConsentInput{
		ConsentType: req.ConsentType,
		Granted:     *req.Granted,
		Version:     req.Version,
	}, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, consent, "Consent recorded successfully")
}

func (h *UserHandler) ListConsents(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	page, err := h.paging.parse(c)
	if err != nil {
		return response.Error(c, err)
	}
	consentType := c.Query("consent_type")
	if consentType != "" {
		if err := validation.Validate(consentType, in(models.ConsentTypes)); err != nil {
			return response.Error(c, apperr.Validation(validationMessage, apperr.FieldError{Field: "consent_type", Message: err.Error()}))
		}
	}

	result, err := h.service.ListConsents(c.UserContext(), actor, consentType, page)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, result, "Consents retrieved successfully")
}
