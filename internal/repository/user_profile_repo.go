package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const profileColumns = `id, user_id, full_name, date_of_birth, gender, height_cm, unit_preference, timezone, language, preferences, created_at, updated_at`

type UserProfileRepository struct {
	db DBTX
}

func NewUserProfileRepository(db DBTX) *UserProfileRepository {
	return &UserProfileRepository{db: db}
}

func scanProfile(row pgx.Row) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.DateOfBirth,
		&profile.Gender,
		&profile.HeightCM,
		&profile.UnitPreference,
		&profile.Timezone,
		&profile.Language,
		&profile.Preferences,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateDefault inserts the profile every new account starts with.
func (r *UserProfileRepository) CreateDefault(ctx context.Context, userID int64) (*models.UserProfile, error) {
	query := `
		INSERT INTO user_profiles (user_id, unit_preference, timezone, language)
		VALUES ($1, 'metric', 'UTC', 'en')
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query, userID))
}

func (r *UserProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, userID))
}

func (r *UserProfileRepository) Update(
	ctx context.Context,
	userID int64,
	patch models.ProfilePatch,
) (*models.UserProfile, error) {
	var a Assignments
	SetOptional(&a, "full_name", patch.FullName)
	SetOptional(&a, "date_of_birth", patch.DateOfBirth)
	SetOptional(&a, "gender", patch.Gender)
	SetOptional(&a, "height_cm", patch.HeightCM)
	SetOptional(&a, "unit_preference", patch.UnitPreference)
	SetOptional(&a, "timezone", patch.Timezone)
	SetOptional(&a, "language", patch.Language)
	SetOptional(&a, "preferences", patch.Preferences)
	if a.Empty() {
		return r.GetByUserID(ctx, userID)
	}

	query, args := a.Update("user_profiles", "user_id", userID, true, profileColumns)
	return scanProfile(r.db.QueryRow(ctx, query, args...))
}
