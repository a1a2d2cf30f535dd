//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteUserCascadeRemovesOwnedRows(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(ctx, t)
	tenantID := testsupport.SeedTenant(ctx, t, pool, "Cascade Gym")

	users := NewUserRepository(pool)
	user := &models.User{TenantID: tenantID, Email: "cascade@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, users.CreateUser(ctx, user))
	_, err := NewUserProfileRepository(pool).CreateDefault(ctx, user.ID)
	require.NoError(t, err)
	_, err = NewNotificationRepository(pool).CreateDefault(ctx, user.ID)
	require.NoError(t, err)

	workouts := NewWorkoutRepository(pool)
	workoutIDs := make([]int64, 0, 3)
	for i := 0; i < 3; i++ {
		workout, err := workouts.Create(ctx, models.Workout{
			UserID:          user.ID,
			WorkoutDatetime: time.Now().Add(-time.Duration(i) * time.Hour),
			WorkoutType:     models.WorkoutTypeStrength,
			Status:          models.WorkoutStatusCompleted,
		})
		require.NoError(t, err)
		workoutIDs = append(workoutIDs, workout.ID)
		for j := 0; j < 2; j++ {
			_, err := workouts.AddStrengthExercise(ctx, models.StrengthExercise{
				WorkoutID:    workout.ID,
				ExerciseName: "Squat",
				OrderIndex:   j,
			})
			require.NoError(t, err)
		}
	}

	goal, err := NewGoalRepository(pool).Create(ctx, models.Goal{
		UserID: user.ID, GoalName: "Run 10k", MetricType: "distance", TargetValue: 10, Unit: "km",
		StartDate: time.Now(), Status: models.GoalStatusActive,
	})
	require.NoError(t, err)
	_, err = NewGoalRepository(pool).AddMilestone(ctx, models.GoalMilestone{GoalID: goal.ID, MilestoneName: "5k", MilestoneValue: 5})
	require.NoError(t, err)

	_, err = NewAuditRepository(pool).Create(ctx, models.AuditLog{UserID: &user.ID, ActionType: models.AuditActionRegister, EntityType: "user", EntityID: &user.ID})
	require.NoError(t, err)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	deleted, err := DeleteUserCascade(ctx, tx, user.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	require.NoError(t, tx.Commit(ctx))

	counts := map[string]struct {
		query string
		arg   any
	}{
		"workouts":           {`SELECT COUNT(*) FROM workouts WHERE user_id = $1`, user.ID},
		"strength_exercises": {`SELECT COUNT(*) FROM strength_exercises WHERE workout_id = ANY($1)`, workoutIDs},
		"goals":              {`SELECT COUNT(*) FROM goals WHERE user_id = $1`, user.ID},
		"goal_milestones":    {`SELECT COUNT(*) FROM goal_milestones WHERE goal_id = $1`, goal.ID},
		"profiles":           {`SELECT COUNT(*) FROM user_profiles WHERE user_id = $1`, user.ID},
		"notifications":      {`SELECT COUNT(*) FROM notification_preferences WHERE user_id = $1`, user.ID},
		"users":              {`SELECT COUNT(*) FROM users WHERE id = $1`, user.ID},
	}
	for name, c := range counts {
		var n int
		require.NoError(t, pool.QueryRow(ctx, c.query, c.arg).Scan(&n), name)
		assert.Zero(t, n, name)
	}

	var audits int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs WHERE user_id = $1`, user.ID).Scan(&audits))
	assert.Equal(t, 1, audits)
}

func TestDeleteWorkoutCascadeRollsBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(ctx, t)
	tenantID := testsupport.SeedTenant(ctx, t, pool, "Rollback Gym")

	user := &models.User{TenantID: tenantID, Email: "rollback@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, NewUserRepository(pool).CreateUser(ctx, user))

	workouts := NewWorkoutRepository(pool)
	workout, err := workouts.Create(ctx, models.Workout{
		UserID: user.ID, WorkoutDatetime: time.Now(), WorkoutType: models.WorkoutTypeCardio, Status: models.WorkoutStatusPlanned,
	})
	require.NoError(t, err)
	_, err = workouts.AddCardioActivity(ctx, models.CardioActivity{WorkoutID: workout.ID, ActivityType: "run"})
	require.NoError(t, err)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	deleted, err := DeleteWorkoutCascade(ctx, tx, workout.ID)
	require.NoError(t, err)
	require.True(t, deleted)
	require.NoError(t, tx.Rollback(ctx))

	cardio, err := workouts.ListCardioActivities(ctx, workout.ID)
	require.NoError(t, err)
	assert.Len(t, cardio, 1)

	tx, err = pool.Begin(ctx)
	require.NoError(t, err)
	_, err = DeleteWorkoutCascade(ctx, tx, workout.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	cardio, err = workouts.ListCardioActivities(ctx, workout.ID)
	require.NoError(t, err)
	assert.Empty(t, cardio)

	deleted, err = DeleteWorkoutCascade(ctx, pool, workout.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListPastLastPageKeepsTotals(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(ctx, t)
	tenantID := testsupport.SeedTenant(ctx, t, pool, "Paging Gym")

	user := &models.User{TenantID: tenantID, Email: "paging@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, NewUserRepository(pool).CreateUser(ctx, user))

	measurements := NewMeasurementRepository(pool)
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := measurements.Create(ctx, models.BodyMeasurement{
			UserID: user.ID, MetricType: "weight", Value: 80 - float64(i), Unit: "kg", MeasuredAt: at,
		})
		require.NoError(t, err)
	}

	page, err := measurements.List(ctx, MeasurementListFilter{UserID: user.ID}, PageRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 5, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.Less(t, page.Items[0].ID, page.Items[1].ID, "equal timestamps are ordered by id")

	page, err = measurements.List(ctx, MeasurementListFilter{UserID: user.ID}, PageRequest{Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 5, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
}
