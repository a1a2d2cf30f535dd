package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const auditColumns = `id, user_id, action_type, entity_type, entity_id, old_value, new_value, ip_address, user_agent, created_at`

type AuditListFilter struct {
	UserID     *int64
	ActionType string
	EntityType string
	From       *time.Time
	To         *time.Time
}

// AuditRepository only inserts and reads; audit rows are never changed.
type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

func scanAudit(row pgx.Row) (models.AuditLog, error) {
	var entry models.AuditLog
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.ActionType,
		&entry.EntityType,
		&entry.EntityID,
		&entry.OldValue,
		&entry.NewValue,
		&entry.IPAddress,
		&entry.UserAgent,
		&entry.CreatedAt,
	)
	return entry, err
}

func (r *AuditRepository) Create(ctx context.Context, entry models.AuditLog) (*models.AuditLog, error) {
	query := `
		INSERT INTO audit_logs (user_id, action_type, entity_type, entity_id, old_value, new_value, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + auditColumns
	created, err := scanAudit(r.db.QueryRow(ctx, query,
		entry.UserID,
		entry.ActionType,
		entry.EntityType,
		entry.EntityID,
		entry.OldValue,
		entry.NewValue,
		entry.IPAddress,
		entry.UserAgent,
	))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *AuditRepository) List(ctx context.Context, filter AuditListFilter, page PageRequest) (models.Page[models.AuditLog], error) {
	f := NewFilter().
		EqInt64("user_id", filter.UserID).
		EqString("action_type", filter.ActionType).
		EqString("entity_type", filter.EntityType).
		Between("created_at", filter.From, filter.To)
	return pagedQuery(ctx, r.db, auditColumns, "audit_logs", f, "created_at DESC, id ASC", page, scanAudit)
}
