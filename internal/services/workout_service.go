package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/logger"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
)

const (
	workoutNotFound = "Workout not found"
	storageMissing  = "Storage service is not configured"
)

type workoutStore interface {
	GetByID(ctx context.Context, id int64) (*models.Workout, error)
	List(ctx context.Context, filter repository.WorkoutListFilter, page repository.PageRequest) (models.Page[models.Workout], error)
	ListStrengthExercises(ctx context.Context, workoutID int64) ([]models.StrengthExercise, error)
	ListCardioActivities(ctx context.Context, workoutID int64) ([]models.CardioActivity, error)
	ListMedia(ctx context.Context, workoutID int64) ([]models.WorkoutMedia, error)
}

type WorkoutService struct {
	db       txBeginner
	workouts workoutStore
	storage  MediaStorage
	audit    *AuditService
}

// NewWorkoutService accepts a nil storage; media uploads then fail as unavailable.
func NewWorkoutService(db txBeginner, workouts workoutStore, storage MediaStorage, audit *AuditService) *WorkoutService {
	return &WorkoutService{db: db, workouts: workouts, storage: storage, audit: audit}
}

type WorkoutInput struct {
	UserID          *int64
	WorkoutDatetime time.Time
	WorkoutType     string
	DurationMinutes *int
	Notes           *string
	Tags            []string
	Status          string
}

type MediaUpload struct {
	Body        io.Reader
	Filename    string
	ContentType string
	MediaType   string
	Size        int64
}

// owned loads the workout and checks that actor owns it.
func (s *WorkoutService) owned(ctx context.Context, actor *models.User, workoutID int64) (*models.Workout, error) {
	workout, err := s.workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, translate(ctx, err, workoutNotFound)
	}
	if err := requireOwner(actor, workout.UserID); err != nil {
		return nil, err
	}
	return workout, nil
}

func (s *WorkoutService) Create(
	ctx context.Context,
	actor *models.User,
	input WorkoutInput,
	meta models.RequestMeta,
) (*models.Workout, error) {
	if input.UserID != nil && *input.UserID != actor.ID {
		return nil, apperr.Forbidden("Cannot create workout for other users")
	}
	if input.Status == "" {
		input.Status = models.WorkoutStatusCompleted
	}

	workout := models.Workout{
		UserID:          actor.ID,
		WorkoutDatetime: input.WorkoutDatetime.UTC(),
		WorkoutType:     input.WorkoutType,
		DurationMinutes: input.DurationMinutes,
		Notes:           input.Notes,
		Tags:            input.Tags,
		Status:          input.Status,
	}

	var (
		created *models.Workout
		entry   *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		created, err = repository.NewWorkoutRepository(tx).Create(ctx, workout)
		if err != nil {
			return err
		}
		event := actorEvent(actor, models.AuditActionCreate, "workout", created.ID, meta)
		event.New = created
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, workoutNotFound)
	}

	s.audit.Publish(ctx, entry)
	return created, nil
}

// List never crosses users: the filter is pinned to the actor.
func (s *WorkoutService) List(
	ctx context.Context,
	actor *models.User,
	filter repository.WorkoutListFilter,
	page repository.PageRequest,
) (models.Page[models.Workout], error) {
	filter.UserID = actor.ID
	result, err := s.workouts.List(ctx, filter, page)
	if err != nil {
		return models.Page[models.Workout]{}, translate(ctx, err, workoutNotFound)
	}
	return result, nil
}

func (s *WorkoutService) Get(ctx context.Context, actor *models.User, workoutID int64) (*models.WorkoutDetail, error) {
	workout, err := s.owned(ctx, actor, workoutID)
	if err != nil {
		return nil, err
	}

	detail := &models.WorkoutDetail{Workout: *workout}
	if detail.StrengthExercises, err = s.workouts.ListStrengthExercises(ctx, workoutID); err != nil {
		return nil, translate(ctx, err, workoutNotFound)
	}
	if detail.CardioActivities, err = s.workouts.ListCardioActivities(ctx, workoutID); err != nil {
		return nil, translate(ctx, err, workoutNotFound)
	}
	if detail.Media, err = s.workouts.ListMedia(ctx, workoutID); err != nil {
		return nil, translate(ctx, err, workoutNotFound)
	}
	return detail, nil
}

func (s *WorkoutService) Update(
	ctx context.Context,
	actor *models.User,
	workoutID int64,
	patch models.WorkoutPatch,
	meta models.RequestMeta,
) (*models.Workout, error) {
	before, err := s.owned(ctx, actor, workoutID)
	if err != nil {
		return nil, err
	}

	var (
		updated *models.Workout
		entry   *models.AuditLog
	)
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		updated, err = repository.NewWorkoutRepository(tx).Update(ctx, workoutID, patch)
		if err != nil {
			return err
		}
		event := actorEvent(actor, models.AuditActionUpdate, "workout", workoutID, meta)
		event.Old = before
		event.New = updated
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, workoutNotFound)
	}

	s.audit.Publish(ctx, entry)
	return updated, nil
}

// Delete removes the workout and its children in one transaction, then
// drops stored media objects on a best-effort basis.
func (s *WorkoutService) Delete(ctx context.Context, actor *models.User, workoutID int64, meta models.RequestMeta) error {
	before, err := s.owned(ctx, actor, workoutID)
	if err != nil {
		return err
	}

	var (
		mediaURLs []string
		entry     *models.AuditLog
	)
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		if mediaURLs, err = repository.WorkoutMediaURLs(ctx, tx, actor.ID, workoutID); err != nil {
			return err
		}
		deleted, err := repository.DeleteWorkoutCascade(ctx, tx, workoutID)
		if err != nil {
			return err
		}
		if !deleted {
			return apperr.NotFound(workoutNotFound)
		}
		event := actorEvent(actor, models.AuditActionDelete, "workout", workoutID, meta)
		event.Old = before
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return translate(ctx, err, workoutNotFound)
	}

	s.removeObjects(ctx, mediaURLs)
	s.audit.Publish(ctx, entry)
	return nil
}

func (s *WorkoutService) removeObjects(ctx context.Context, urls []string) {
	if s.storage == nil {
		return
	}
	for _, url := range urls {
		if err := s.storage.Delete(ctx, url); err != nil {
			logger.From(ctx).Warn("media cleanup failed", logger.Err(err))
		}
	}
}

func (s *WorkoutService) AddStrengthExercise(
	ctx context.Context,
	actor *models.User,
	workoutID int64,
	exercise models.StrengthExercise,
	meta models.RequestMeta,
) (*models.StrengthExercise, error) {
	if _, err := s.owned(ctx, actor, workoutID); err != nil {
		return nil, err
	}
	exercise.WorkoutID = workoutID

	var (
		created *models.StrengthExercise
		entry   *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		repo := repository.NewWorkoutRepository(tx)
		if exercise.OrderIndex <= 0 {
			next, err := repo.NextOrderIndex(ctx, workoutID)
			if err != nil {
				return err
			}
			exercise.OrderIndex = next
		}
		var err error
		created, err = repo.AddStrengthExercise(ctx, exercise)
		if err != nil {
			return err
		}
		event := actorEvent(actor, models.AuditActionCreate, "strength_exercise", created.ID, meta)
		event.New = created
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, workoutNotFound)
	}

	s.audit.Publish(ctx, entry)
	return created, nil
}

func (s *WorkoutService) AddCardioActivity(
	ctx context.Context,
	actor *models.User,
	workoutID int64,
	activity models.CardioActivity,
	meta models.RequestMeta,
) (*models.CardioActivity, error) {
	if _, err := s.owned(ctx, actor, workoutID); err != nil {
		return nil, err
	}
	activity.WorkoutID = workoutID

	var (
		created *models.CardioActivity
		entry   *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		created, err = repository.NewWorkoutRepository(tx).AddCardioActivity(ctx, activity)
		if err != nil {
			return err
		}
		event := actorEvent(actor, models.AuditActionCreate, "cardio_activity", created.ID, meta)
		event.New = created
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, workoutNotFound)
	}

	s.audit.Publish(ctx, entry)
	return created, nil
}

func (s *WorkoutService) DeleteStrengthExercise(
	ctx context.Context,
	actor *models.User,
	workoutID, exerciseID int64,
	meta models.RequestMeta,
) error {
	return s.deleteChild(ctx, actor, workoutID, exerciseID, "strength_exercise", "Strength exercise not found", meta,
		func(repo *repository.WorkoutRepository) (bool, error) {
			return repo.DeleteStrengthExercise(ctx, workoutID, exerciseID)
		})
}

func (s *WorkoutService) DeleteCardioActivity(
	ctx context.Context,
	actor *models.User,
	workoutID, activityID int64,
	meta models.RequestMeta,
) error {
	return s.deleteChild(ctx, actor, workoutID, activityID, "cardio_activity", "Cardio activity not found", meta,
		func(repo *repository.WorkoutRepository) (bool, error) {
			return repo.DeleteCardioActivity(ctx, workoutID, activityID)
		})
}

func (s *WorkoutService) deleteChild(
	ctx context.Context,
	actor *models.User,
	workoutID, childID int64,
	entityType, notFound string,
	meta models.RequestMeta,
	remove func(*repository.WorkoutRepository) (bool, error),
) error {
	if _, err := s.owned(ctx, actor, workoutID); err != nil {
		return err
	}

	var entry *models.AuditLog
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		deleted, err := remove(repository.NewWorkoutRepository(tx))
		if err != nil {
			return err
		}
		if !deleted {
			return apperr.NotFound(notFound)
		}
		entry, err = s.audit.Record(ctx, tx, actorEvent(actor, models.AuditActionDelete, entityType, childID, meta))
		return err
	})
	if err != nil {
		return translate(ctx, err, notFound)
	}

	s.audit.Publish(ctx, entry)
	return nil
}

// UploadMedia stores the object first and removes it again if the
// reference row cannot be written.
func (s *WorkoutService) UploadMedia(
	ctx context.Context,
	actor *models.User,
	workoutID int64,
	upload MediaUpload,
	meta models.RequestMeta,
) (*models.WorkoutMedia, error) {
	if s.storage == nil {
		return nil, apperr.New(apperr.ErrUnavailable, storageMissing)
	}
	if _, err := s.owned(ctx, actor, workoutID); err != nil {
		return nil, err
	}

	objectPath := mediaObjectPath(actor.ID, workoutID, upload.Filename)
	fileURL, err := s.storage.Upload(ctx, upload.Body, objectPath, upload.ContentType)
	if err != nil {
		logger.From(ctx).Error("media upload failed", logger.EntityID(workoutID), logger.Err(err))
		return nil, apperr.New(apperr.ErrUnavailable, "Failed to upload media")
	}

	size := upload.Size
	var (
		created *models.WorkoutMedia
		entry   *models.AuditLog
	)
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		created, err = repository.NewWorkoutRepository(tx).AddMedia(ctx, models.WorkoutMedia{
			WorkoutID:     workoutID,
			MediaType:     upload.MediaType,
			BlobURL:       fileURL,
			FileSizeBytes: &size,
		})
		if err != nil {
			return err
		}
		event := actorEvent(actor, models.AuditActionCreate, "workout_media", created.ID, meta)
		event.New = created
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		s.removeObjects(ctx, []string{fileURL})
		return nil, translate(ctx, err, workoutNotFound)
	}

	s.audit.Publish(ctx, entry)
	return created, nil
}

func mediaObjectPath(userID, workoutID int64, filename string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("users/%d/workouts/%d/%s%s", userID, workoutID, uuid.NewString(), ext)
}
