package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const (
	workoutColumns  = `id, user_id, workout_datetime, workout_type, duration_minutes, notes, tags, status, created_at, updated_at`
	strengthColumns = `id, workout_id, exercise_name, sets, reps, weight_kg, rpe, notes, order_index, created_at`
	cardioColumns   = `id, workout_id, activity_type, distance_km, duration_minutes, avg_pace_min_per_km, avg_heart_rate, max_heart_rate, calories_burned, notes, created_at`
	mediaColumns    = `id, workout_id, media_type, blob_url, thumbnail_url, file_size_bytes, created_at`
)

type WorkoutListFilter struct {
	UserID      int64
	WorkoutType string
	Status      string
	Tag         string
	From        *time.Time
	To          *time.Time
}

type WorkoutRepository struct {
	db DBTX
}

func NewWorkoutRepository(db DBTX) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

func scanWorkout(row pgx.Row) (models.Workout, error) {
	var workout models.Workout
	err := row.Scan(
		&workout.ID,
		&workout.UserID,
		&workout.WorkoutDatetime,
		&workout.WorkoutType,
		&workout.DurationMinutes,
		&workout.Notes,
		&workout.Tags,
		&workout.Status,
		&workout.CreatedAt,
		&workout.UpdatedAt,
	)
	if workout.Tags == nil {
		workout.Tags = []string{}
	}
	return workout, err
}

func (r *WorkoutRepository) Create(ctx context.Context, workout models.Workout) (*models.Workout, error) {
	if workout.Tags == nil {
		workout.Tags = []string{}
	}
	query := `
		INSERT INTO workouts (user_id, workout_datetime, workout_type, duration_minutes, notes, tags, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + workoutColumns
	created, err := scanWorkout(r.db.QueryRow(ctx, query,
		workout.UserID,
		workout.WorkoutDatetime,
		workout.WorkoutType,
		workout.DurationMinutes,
		workout.Notes,
		workout.Tags,
		workout.Status,
	))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *WorkoutRepository) GetByID(ctx context.Context, id int64) (*models.Workout, error) {
	workout, err := scanWorkout(r.db.QueryRow(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &workout, nil
}

func (r *WorkoutRepository) List(
	ctx context.Context,
	filter WorkoutListFilter,
	page PageRequest,
) (models.Page[models.Workout], error) {
	f := NewFilter().
		Eq("user_id", filter.UserID).
		EqString("workout_type", filter.WorkoutType).
		EqString("status", filter.Status).
		HasTag("tags", filter.Tag).
		Between("workout_datetime", filter.From, filter.To)

	return pagedQuery(ctx, r.db, workoutColumns, "workouts", f, "workout_datetime DESC, id ASC", page, scanWorkout)
}

func (r *WorkoutRepository) Update(ctx context.Context, id int64, patch models.WorkoutPatch) (*models.Workout, error) {
	var a Assignments
	SetOptional(&a, "workout_datetime", patch.WorkoutDatetime)
	SetOptional(&a, "workout_type", patch.WorkoutType)
	SetOptional(&a, "duration_minutes", patch.DurationMinutes)
	SetOptional(&a, "notes", patch.Notes)
	SetOptional(&a, "tags", patch.Tags)
	SetOptional(&a, "status", patch.Status)
	if a.Empty() {
		return r.GetByID(ctx, id)
	}
	query, args := a.Update("workouts", "id", id, true, workoutColumns)
	workout, err := scanWorkout(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	return &workout, nil
}

func (r *WorkoutRepository) AddStrengthExercise(ctx context.Context, exercise models.StrengthExercise) (*models.StrengthExercise, error) {
	query := `
		INSERT INTO strength_exercises (workout_id, exercise_name, sets, reps, weight_kg, rpe, notes, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + strengthColumns
	created, err := scanStrength(r.db.QueryRow(ctx, query,
		exercise.WorkoutID,
		exercise.ExerciseName,
		exercise.Sets,
		exercise.Reps,
		exercise.WeightKG,
		exercise.RPE,
		exercise.Notes,
		exercise.OrderIndex,
	))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *WorkoutRepository) AddCardioActivity(ctx context.Context, activity models.CardioActivity) (*models.CardioActivity, error) {
	query := `
		INSERT INTO cardio_activities (
			workout_id, activity_type, distance_km, duration_minutes, avg_pace_min_per_km,
			avg_heart_rate, max_heart_rate, calories_burned, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + cardioColumns
	created, err := scanCardio(r.db.QueryRow(ctx, query,
		activity.WorkoutID,
		activity.ActivityType,
		activity.DistanceKM,
		activity.DurationMinutes,
		activity.AvgPaceMinPerKM,
		activity.AvgHeartRate,
		activity.MaxHeartRate,
		activity.CaloriesBurned,
		activity.Notes,
	))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *WorkoutRepository) AddMedia(ctx context.Context, media models.WorkoutMedia) (*models.WorkoutMedia, error) {
	query := `
		INSERT INTO workout_media (workout_id, media_type, blob_url, thumbnail_url, file_size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + mediaColumns
	created, err := scanMedia(r.db.QueryRow(ctx, query,
		media.WorkoutID,
		media.MediaType,
		media.BlobURL,
		media.ThumbnailURL,
		media.FileSizeBytes,
	))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteStrengthExercise reports false when the exercise is not part of the workout.
func (r *WorkoutRepository) DeleteStrengthExercise(ctx context.Context, workoutID, exerciseID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM strength_exercises WHERE id = $1 AND workout_id = $2`, exerciseID, workoutID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *WorkoutRepository) DeleteCardioActivity(ctx context.Context, workoutID, activityID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cardio_activities WHERE id = $1 AND workout_id = $2`, activityID, workoutID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *WorkoutRepository) NextOrderIndex(ctx context.Context, workoutID int64) (int, error) {
	var next int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(order_index) + 1, 0) FROM strength_exercises WHERE workout_id = $1`, workoutID).Scan(&next)
	return next, err
}

func (r *WorkoutRepository) ListStrengthExercises(ctx context.Context, workoutID int64) ([]models.StrengthExercise, error) {
	return listChildren(ctx, r.db, `SELECT `+strengthColumns+` FROM strength_exercises WHERE workout_id = $1 ORDER BY order_index ASC, id ASC`, workoutID, scanStrength)
}

func (r *WorkoutRepository) ListCardioActivities(ctx context.Context, workoutID int64) ([]models.CardioActivity, error) {
	return listChildren(ctx, r.db, `SELECT `+cardioColumns+` FROM cardio_activities WHERE workout_id = $1 ORDER BY id ASC`, workoutID, scanCardio)
}

func (r *WorkoutRepository) ListMedia(ctx context.Context, workoutID int64) ([]models.WorkoutMedia, error) {
	return listChildren(ctx, r.db, `SELECT `+mediaColumns+` FROM workout_media WHERE workout_id = $1 ORDER BY created_at DESC, id ASC`, workoutID, scanMedia)
}

func scanStrength(row pgx.Row) (models.StrengthExercise, error) {
	var e models.StrengthExercise
	err := row.Scan(&e.ID, &e.WorkoutID, &e.ExerciseName, &e.Sets, &e.Reps, &e.WeightKG, &e.RPE, &e.Notes, &e.OrderIndex, &e.CreatedAt)
	return e, err
}

func scanCardio(row pgx.Row) (models.CardioActivity, error) {
	var a models.CardioActivity
	err := row.Scan(
		&a.ID,
		&a.WorkoutID,
		&a.ActivityType,
		&a.DistanceKM,
		&a.DurationMinutes,
		&a.AvgPaceMinPerKM,
		&a.AvgHeartRate,
		&a.MaxHeartRate,
		&a.CaloriesBurned,
		&a.Notes,
		&a.CreatedAt,
	)
	return a, err
}

func scanMedia(row pgx.Row) (models.WorkoutMedia, error) {
	var m models.WorkoutMedia
	err := row.Scan(&m.ID, &m.WorkoutID, &m.MediaType, &m.BlobURL, &m.ThumbnailURL, &m.FileSizeBytes, &m.CreatedAt)
	return m, err
}

func listChildren[T any](ctx context.Context, db DBTX, query string, parentID int64, scan func(pgx.Row) (T, error)) ([]T, error) {
	rows, err := db.Query(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
