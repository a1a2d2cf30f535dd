package repository

import (
	"context"
	"fmt"
)

// The schema carries no ON DELETE CASCADE. These functions remove children
// in dependency order and must run inside the caller's transaction.

func DeleteWorkoutCascade(ctx context.Context, db DBTX, workoutID int64) (bool, error) {
	for _, stmt := range []string{
		`DELETE FROM strength_exercises WHERE workout_id = $1`,
		`DELETE FROM cardio_activities WHERE workout_id = $1`,
		`DELETE FROM workout_media WHERE workout_id = $1`,
	} {
		if _, err := db.Exec(ctx, stmt, workoutID); err != nil {
			return false, fmt.Errorf("delete workout %d children: %w", workoutID, err)
		}
	}

	tag, err := db.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, workoutID)
	if err != nil {
		return false, fmt.Errorf("delete workout %d: %w", workoutID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func DeleteGoalCascade(ctx context.Context, db DBTX, goalID int64) (bool, error) {
	if _, err := db.Exec(ctx, `DELETE FROM goal_milestones WHERE goal_id = $1`, goalID); err != nil {
		return false, fmt.Errorf("delete goal %d milestones: %w", goalID, err)
	}
	tag, err := db.Exec(ctx, `DELETE FROM goals WHERE id = $1`, goalID)
	if err != nil {
		return false, fmt.Errorf("delete goal %d: %w", goalID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteUserCascade removes every row owned by the user, then the user.
// Audit logs are kept.
func DeleteUserCascade(ctx context.Context, db DBTX, userID int64) (bool, error) {
	steps := []struct {
		name string
		sql  string
	}{
		{"strength exercises", `DELETE FROM strength_exercises WHERE workout_id IN (SELECT id FROM workouts WHERE user_id = $1)`},
		{"cardio activities", `DELETE FROM cardio_activities WHERE workout_id IN (SELECT id FROM workouts WHERE user_id = $1)`},
		{"workout media", `DELETE FROM workout_media WHERE workout_id IN (SELECT id FROM workouts WHERE user_id = $1)`},
		{"workouts", `DELETE FROM workouts WHERE user_id = $1`},
		{"goal milestones", `DELETE FROM goal_milestones WHERE goal_id IN (SELECT id FROM goals WHERE user_id = $1)`},
		{"goals", `DELETE FROM goals WHERE user_id = $1`},
		{"measurements", `DELETE FROM body_measurements WHERE user_id = $1`},
		{"consents", `DELETE FROM user_consents WHERE user_id = $1`},
		{"notification preferences", `DELETE FROM notification_preferences WHERE user_id = $1`},
		{"profile", `DELETE FROM user_profiles WHERE user_id = $1`},
	}
	for _, step := range steps {
		if _, err := db.Exec(ctx, step.sql, userID); err != nil {
			return false, fmt.Errorf("delete user %d %s: %w", userID, step.name, err)
		}
	}

	tag, err := db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", userID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// WorkoutMediaURLs lists stored object URLs so callers can clean up storage
// after the delete commits.
func WorkoutMediaURLs(ctx context.Context, db DBTX, userID, workoutID int64) ([]string, error) {
	query := `SELECT m.blob_url FROM workout_media m JOIN workouts w ON w.id = m.workout_id WHERE w.user_id = $1`
	args := []any{userID}
	if workoutID > 0 {
		query += ` AND w.id = $2`
		args = append(args, workoutID)
	}
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}
