package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const consentColumns = `id, user_id, consent_type, granted, version, granted_at, revoked_at, created_at`

type ConsentRepository struct {
	db DBTX
}

func NewConsentRepository(db DBTX) *ConsentRepository {
	return &ConsentRepository{db: db}
}

func scanConsent(row pgx.Row) (models.UserConsent, error) {
	var consent models.UserConsent
	err := row.Scan(
		&consent.ID,
		&consent.UserID,
		&consent.ConsentType,
		&consent.Granted,
		&consent.Version,
		&consent.GrantedAt,
		&consent.RevokedAt,
		&consent.CreatedAt,
	)
	return consent, err
}

// Create appends a consent event; earlier events are never rewritten.
func (r *ConsentRepository) Create(ctx context.Context, consent models.UserConsent) (*models.UserConsent, error) {
	query := `
		INSERT INTO user_consents (user_id, consent_type, granted, version, granted_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + consentColumns
	created, err := scanConsent(r.db.QueryRow(ctx, query,
		consent.UserID,
		consent.ConsentType,
		consent.Granted,
		consent.Version,
		consent.GrantedAt,
		consent.RevokedAt,
	))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ConsentRepository) ListByUser(
	ctx context.Context,
	userID int64,
	consentType string,
	page PageRequest,
) (models.Page[models.UserConsent], error) {
	f := NewFilter().Eq("user_id", userID).EqString("consent_type", consentType)
	return pagedQuery(ctx, r.db, consentColumns, "user_consents", f, "created_at DESC, id ASC", page, scanConsent)
}
