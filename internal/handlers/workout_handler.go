package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"github.com/saeid-a/FitTrackBack/internal/response"
	"github.com/saeid-a/FitTrackBack/internal/services"
)

type workoutService interface {
	Create(ctx context.Context, actor *models.User, input services.WorkoutInput, meta models.RequestMeta) (*models.Workout, error)
	List(ctx context.Context, actor *models.User, filter repository.WorkoutListFilter, page repository.PageRequest) (models.Page[models.Workout], error)
	Get(ctx context.Context, actor *models.User, workoutID int64) (*models.WorkoutDetail, error)
	Update(ctx context.Context, actor *models.User, workoutID int64, patch models.WorkoutPatch, meta models.RequestMeta) (*models.Workout, error)
	Delete(ctx context.Context, actor *models.User, workoutID int64, meta models.RequestMeta) error
	AddStrengthExercise(ctx context.Context, actor *models.User, workoutID int64, exercise models.StrengthExercise, meta models.RequestMeta) (*models.StrengthExercise, error)
	AddCardioActivity(ctx context.Context, actor *models.User, workoutID int64, activity models.CardioActivity, meta models.RequestMeta) (*models.CardioActivity, error)
	DeleteStrengthExercise(ctx context.Context, actor *models.User, workoutID, exerciseID int64, meta models.RequestMeta) error
	DeleteCardioActivity(ctx context.Context, actor *models.User, workoutID, activityID int64, meta models.RequestMeta) error
	UploadMedia(ctx context.Context, actor *models.User, workoutID int64, upload services.MediaUpload, meta models.RequestMeta) (*models.WorkoutMedia, error)
}

type WorkoutHandler struct {
	service      workoutService
	paging       Paging
	maxUpload    int64
	allowedTypes map[string]string
}

// NewWorkoutHandler takes the upload limit in bytes and the accepted media
// content types mapped to their media_type.
func NewWorkoutHandler(service workoutService, paging Paging, maxUpload int64, allowedTypes map[string]string) *WorkoutHandler {
	return &WorkoutHandler{service: service, paging: paging, maxUpload: maxUpload, allowedTypes: allowedTypes}
}

var tagsRule = validation.By(func(value interface{}) error {
	tags, _ := value.([]string)
	for _, tag := range tags {
		if n := len(strings.TrimSpace(tag)); n == 0 || n > 50 {
			return errors.New("each tag must be 1 to 50 characters")
		}
	}
	return nil
})

type workoutRequest struct {
	UserID          *int64    `json:"user_id"`
	WorkoutDatetime time.Time `json:"workout_datetime"`
	WorkoutType     string    `json:"workout_type"`
	DurationMinutes *int      `json:"duration_minutes"`
	Notes           *string   `json:"notes"`
	Tags            []string  `json:"tags"`
	Status          string    `json:"status"`
}

func (r workoutRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.WorkoutDatetime, validation.Required),
		validation.Field(&r.WorkoutType, validation.Required, in(models.WorkoutTypes)),
		validation.Field(&r.DurationMinutes, validation.Min(0)),
		validation.Field(&r.Tags, tagsRule),
		validation.Field(&r.Status, in(models.WorkoutStatuses)),
	)
}

func validateWorkoutPatch(p models.WorkoutPatch) error {
	return validation.Errors{
		"workout_datetime": patchValue(p.WorkoutDatetime, validation.Required),
		"workout_type":     patchValue(p.WorkoutType, validation.Required, in(models.WorkoutTypes)),
		"duration_minutes": nullablePatchValue(p.DurationMinutes, validation.Min(0)),
		"tags":             nullablePatchValue(p.Tags, tagsRule),
		"status":           patchValue(p.Status, validation.Required, in(models.WorkoutStatuses)),
	}.Filter()
}

type strengthRequest struct {
	ExerciseName string   `json:"exercise_name"`
	Sets         *int     `json:"sets"`
	Reps         *int     `json:"reps"`
	WeightKG     *float64 `json:"weight_kg"`
	RPE          *int     `json:"rpe"`
	Notes        *string  `json:"notes"`
	OrderIndex   int      `json:"order_index"`
}

func (r strengthRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ExerciseName, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Sets, validation.Min(0)),
		validation.Field(&r.Reps, validation.Min(0)),
		validation.Field(&r.WeightKG, validation.Min(0.0)),
		validation.Field(&r.RPE, intBetween(1, 10)),
		validation.Field(&r.OrderIndex, validation.Min(0)),
	)
}

type cardioRequest struct {
	ActivityType    string   `json:"activity_type"`
	DistanceKM      *float64 `json:"distance_km"`
	DurationMinutes *int     `json:"duration_minutes"`
	AvgPaceMinPerKM *float64 `json:"avg_pace_min_per_km"`
	AvgHeartRate    *int     `json:"avg_heart_rate"`
	MaxHeartRate    *int     `json:"max_heart_rate"`
	CaloriesBurned  *int     `json:"calories_burned"`
	Notes           *string  `json:"notes"`
}

func (r cardioRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ActivityType, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.DistanceKM, validation.Min(0.0)),
		validation.Field(&r.DurationMinutes, validation.Min(0)),
		validation.Field(&r.AvgPaceMinPerKM, validation.Min(0.0)),
		validation.Field(&r.AvgHeartRate, intBetween(0, 250)),
		validation.Field(&r.MaxHeartRate, intBetween(0, 250)),
		validation.Field(&r.CaloriesBurned, validation.Min(0)),
	)
}

func (h *WorkoutHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req workoutRequest
	if err := parseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(req.Validate()); err != nil {
		return response.Error(c, err)
	}

	workout, err := h.service.Create(c.UserContext(), actor, services.WorkoutInput{
		UserID:          req.UserID,
		WorkoutDatetime: req.WorkoutDatetime,
		WorkoutType:     req.WorkoutType,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Tags:            req.Tags,
		Status:          req.Status,
	}, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, workout, "Workout created successfully")
}

func (h *WorkoutHandler) List(c *fiber.Ctx) error {
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

	filter := repository.WorkoutListFilter{
		WorkoutType: c.Query("workout_type"),
		Status:      c.Query("status"),
		Tag:         c.Query("tag"),
		From:        from,
		To:          to,
	}
	if err := validationFailed(validation.Errors{
		"workout_type": validation.Validate(filter.WorkoutType, in(models.WorkoutTypes)),
		"status":       validation.Validate(filter.Status, in(models.WorkoutStatuses)),
	}.Filter()); err != nil {
		return response.Error(c, err)
	}

	result, err := h.service.List(c.UserContext(), actor, filter, page)
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, result, "Workouts retrieved successfully")
}

func (h *WorkoutHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	workoutID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	detail, err := h.service.Get(c.UserContext(), actor, workoutID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, detail, "Workout retrieved successfully")
}

func (h *WorkoutHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	workoutID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var patch models.WorkoutPatch
	if err := parseBody(c, &patch); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(validateWorkoutPatch(patch)); err != nil {
		return response.Error(c, err)
	}

	workout, err := h.service.Update(c.UserContext(), actor, workoutID, patch, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, workout, "Workout updated successfully")
}

func (h *WorkoutHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	workoutID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.service.Delete(c.UserContext(), actor, workoutID, requestMeta(c)); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, nil, "Workout deleted successfully")
}

func (h *WorkoutHandler) AddStrengthExercise(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	workoutID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var req strengthRequest
	if err := parseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(req.Validate()); err != nil {
		return response.Error(c, err)
	}

	exercise, err := h.service.AddStrengthExercise(c.UserContext(), actor, workoutID, models.StrengthExercise{
		ExerciseName: strings.TrimSpace(req.ExerciseName),
		Sets:         req.Sets,
		Reps:         req.Reps,
		WeightKG:     req.WeightKG,
		RPE:          req.RPE,
		Notes:        req.Notes,
		OrderIndex:   req.OrderIndex,
	}, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, exercise, "Strength exercise added successfully")
}

func (h *WorkoutHandler) AddCardioActivity(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	workoutID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var req cardioRequest
	if err := parseBody(c, &req); err != nil {
		return response.Error(c, err)
	}
	if err := validationFailed(req.Validate()); err != nil {
		return response.Error(c, err)
	}

	activity, err := h.service.AddCardioActivity(c.UserContext(), actor, workoutID, models.CardioActivity{
		ActivityType:    strings.TrimSpace(req.ActivityType),
		DistanceKM:      req.DistanceKM,
		DurationMinutes: req.DurationMinutes,
		AvgPaceMinPerKM: req.AvgPaceMinPerKM,
		AvgHeartRate:    req.AvgHeartRate,
		MaxHeartRate:    req.MaxHeartRate,
		CaloriesBurned:  req.CaloriesBurned,
		Notes:           req.Notes,
	}, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, activity, "Cardio activity added successfully")
}

func (h *WorkoutHandler) DeleteStrengthExercise(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	workoutID, idErr := paramID(c, "id")
	exerciseID, childErr := paramID(c, "exerciseId")
	if err := firstErr(idErr, childErr); err != nil {
		return response.Error(c, err)
	}

	if err := h.service.DeleteStrengthExercise(c.UserContext(), actor, workoutID, exerciseID, requestMeta(c)); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, nil, "Strength exercise deleted successfully")
}

func (h *WorkoutHandler) DeleteCardioActivity(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	workoutID, idErr := paramID(c, "id")
	activityID, childErr := paramID(c, "activityId")
	if err := firstErr(idErr, childErr); err != nil {
		return response.Error(c, err)
	}

	if err := h.service.DeleteCardioActivity(c.UserContext(), actor, workoutID, activityID, requestMeta(c)); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, nil, "Cardio activity deleted successfully")
}

// UploadMedia expects a multipart "file" field.
func (h *WorkoutHandler) UploadMedia(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}
	workoutID, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, apperr.Validation(validationMessage, apperr.FieldError{Field: "file", Message: "is required"}))
	}
	mediaType, err := h.checkUpload(header)
	if err != nil {
		return response.Error(c, err)
	}

	file, err := header.Open()
	if err != nil {
		return response.Error(c, apperr.Validation("Could not read uploaded file"))
	}
	defer file.Close()

	media, err := h.service.UploadMedia(c.UserContext(), actor, workoutID, services.MediaUpload{
		Body:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		MediaType:   mediaType,
		Size:        header.Size,
	}, requestMeta(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, media, "Media uploaded successfully")
}

func (h *WorkoutHandler) checkUpload(header *multipart.FileHeader) (string, error) {
	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get(fiber.HeaderContentType)))
	mediaType, ok := h.allowedTypes[contentType]
	if !ok {
		return "", apperr.Validation(validationMessage, apperr.FieldError{Field: "file", Message: "unsupported content type " + contentType})
	}
	if header.Size <= 0 {
		return "", apperr.Validation(validationMessage, apperr.FieldError{Field: "file", Message: "is empty"})
	}
	if h.maxUpload > 0 && header.Size > h.maxUpload {
		return "", apperr.Validation(validationMessage, apperr.FieldError{Field: "file", Message: "exceeds the upload size limit"})
	}
	return mediaType, nil
}
