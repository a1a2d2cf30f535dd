package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const notificationColumns = `id, user_id, email_enabled, push_enabled, workout_reminders, goal_milestones, streak_alerts, quiet_hours_start, quiet_hours_end, updated_at`

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func scanNotification(row pgx.Row) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := row.Scan(
		&pref.ID,
		&pref.UserID,
		&pref.EmailEnabled,
		&pref.PushEnabled,
		&pref.WorkoutReminders,
		&pref.GoalMilestones,
		&pref.StreakAlerts,
		&pref.QuietHoursStart,
		&pref.QuietHoursEnd,
		&pref.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *NotificationRepository) CreateDefault(ctx context.Context, userID int64) (*models.NotificationPreference, error) {
	query := `
		INSERT INTO notification_preferences (user_id)
		VALUES ($1)
		RETURNING ` + notificationColumns
	return scanNotification(r.db.QueryRow(ctx, query, userID))
}

func (r *NotificationRepository) GetByUserID(ctx context.Context, userID int64) (*models.NotificationPreference, error) {
	query := `SELECT ` + notificationColumns + ` FROM notification_preferences WHERE user_id = $1`
	return scanNotification(r.db.QueryRow(ctx, query, userID))
}

func (r *NotificationRepository) Update(
	ctx context.Context,
	userID int64,
	patch models.NotificationPatch,
) (*models.NotificationPreference, error) {
	var a Assignments
	SetOptional(&a, "email_enabled", patch.EmailEnabled)
	SetOptional(&a, "push_enabled", patch.PushEnabled)
	SetOptional(&a, "workout_reminders", patch.WorkoutReminders)
	SetOptional(&a, "goal_milestones", patch.GoalMilestones)
	SetOptional(&a, "streak_alerts", patch.StreakAlerts)
	SetOptional(&a, "quiet_hours_start", patch.QuietHoursStart)
	SetOptional(&a, "quiet_hours_end", patch.QuietHoursEnd)
	if a.Empty() {
		return r.GetByUserID(ctx, userID)
	}

	query, args := a.Update("notification_preferences", "user_id", userID, true, notificationColumns)
	return scanNotification(r.db.QueryRow(ctx, query, args...))
}
