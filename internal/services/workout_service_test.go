package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWorkoutStore struct {
	workouts   map[int64]*models.Workout
	lastFilter repository.WorkoutListFilter
	lastPage   repository.PageRequest
}

func (s *stubWorkoutStore) GetByID(_ context.Context, id int64) (*models.Workout, error) {
	if w, ok := s.workouts[id]; ok {
		return w, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubWorkoutStore) List(_ context.Context, filter repository.WorkoutListFilter, page repository.PageRequest) (models.Page[models.Workout], error) {
	s.lastFilter = filter
	s.lastPage = page
	return repository.NewPage([]models.Workout{}, page, 0), nil
}

func (s *stubWorkoutStore) ListStrengthExercises(_ context.Context, workoutID int64) ([]models.StrengthExercise, error) {
	return []models.StrengthExercise{{ID: 1, WorkoutID: workoutID, ExerciseName: "Bench"}}, nil
}

func (s *stubWorkoutStore) ListCardioActivities(context.Context, int64) ([]models.CardioActivity, error) {
	return []models.CardioActivity{}, nil
}

func (s *stubWorkoutStore) ListMedia(context.Context, int64) ([]models.WorkoutMedia, error) {
	return []models.WorkoutMedia{}, nil
}

func newWorkoutFixture(t *testing.T) (*WorkoutService, *stubWorkoutStore) {
	store := &stubWorkoutStore{workouts: map[int64]*models.Workout{
		10: {ID: 10, UserID: 1, WorkoutType: models.WorkoutTypeStrength, Status: models.WorkoutStatusCompleted},
		20: {ID: 20, UserID: 2, WorkoutType: models.WorkoutTypeCardio, Status: models.WorkoutStatusPlanned},
	}}
	return NewWorkoutService(refusingDB{t}, store, nil, NewAuditService(nil, nil, nil)), store
}

func TestWorkoutGetReturnsOwnedDetail(t *testing.T) {
	svc, _ := newWorkoutFixture(t)

	detail, err := svc.Get(context.Background(), member(1), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), detail.ID)
	require.Len(t, detail.StrengthExercises, 1)
	assert.NotNil(t, detail.CardioActivities)
	assert.NotNil(t, detail.Media)
}

func TestWorkoutOwnershipIsEnforced(t *testing.T) {
	svc, _ := newWorkoutFixture(t)
	ctx := context.Background()
	meta := models.RequestMeta{}

	_, err := svc.Get(ctx, member(1), 20)
	requireStatus(t, err, http.StatusForbidden)
	assert.Equal(t, "Access denied", apperr.Message(err))

	// admins get no exemption on another user's workouts
	_, err = svc.Get(ctx, admin(1), 20)
	requireStatus(t, err, http.StatusForbidden)

	_, err = svc.Update(ctx, member(1), 20, models.WorkoutPatch{Status: models.Some("skipped")}, meta)
	requireStatus(t, err, http.StatusForbidden)

	requireStatus(t, svc.Delete(ctx, member(1), 20, meta), http.StatusForbidden)
	requireStatus(t, svc.DeleteStrengthExercise(ctx, member(1), 20, 1, meta), http.StatusForbidden)

	_, err = svc.AddCardioActivity(ctx, member(1), 20, models.CardioActivity{ActivityType: "run"}, meta)
	requireStatus(t, err, http.StatusForbidden)

	_, err = svc.Get(ctx, member(1), 999)
	requireStatus(t, err, http.StatusNotFound)
	assert.Equal(t, "Workout not found", apperr.Message(err))
}

func TestWorkoutCreateForAnotherUserIsForbidden(t *testing.T) {
	svc, _ := newWorkoutFixture(t)
	other := int64(2)

	_, err := svc.Create(context.Background(), member(1), WorkoutInput{
		UserID:          &other,
		WorkoutDatetime: time.Now(),
		WorkoutType:     models.WorkoutTypeStrength,
	}, models.RequestMeta{})
	requireStatus(t, err, http.StatusForbidden)
}

func TestWorkoutListIsPinnedToActor(t *testing.T) {
	svc, store := newWorkoutFixture(t)

	_, err := svc.List(context.Background(), member(1), repository.WorkoutListFilter{UserID: 2, Tag: "legs"}, repository.PageRequest{Page: 2, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), store.lastFilter.UserID)
	assert.Equal(t, "legs", store.lastFilter.Tag)
	assert.Equal(t, 5, store.lastPage.Skip())
}

func TestUploadMediaWithoutStorageIsUnavailable(t *testing.T) {
	svc, _ := newWorkoutFixture(t)

	_, err := svc.UploadMedia(context.Background(), member(1), 10, MediaUpload{
		Body:        strings.NewReader("x"),
		Filename:    "a.png",
		ContentType: "image/png",
		MediaType:   models.MediaTypeImage,
	}, models.RequestMeta{})
	requireStatus(t, err, http.StatusServiceUnavailable)
}

func TestMediaObjectPath(t *testing.T) {
	p := mediaObjectPath(3, 9, " Photo.JPG ")
	assert.True(t, strings.HasPrefix(p, "users/3/workouts/9/"))
	assert.True(t, strings.HasSuffix(p, ".jpg"))

	assert.True(t, strings.HasSuffix(mediaObjectPath(3, 9, "noext"), ".bin"))
	assert.NotEqual(t, mediaObjectPath(3, 9, "a.png"), mediaObjectPath(3, 9, "a.png"))
}
