package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const measurementColumns = `id, user_id, metric_type, value, unit, measured_at, notes, created_at`

type MeasurementListFilter struct {
	UserID     int64
	MetricType string
	From       *time.Time
	To         *time.Time
}

type MeasurementRepository struct {
	db DBTX
}

func NewMeasurementRepository(db DBTX) *MeasurementRepository {
	return &MeasurementRepository{db: db}
}

func scanMeasurement(row pgx.Row) (models.BodyMeasurement, error) {
	var m models.BodyMeasurement
	err := row.Scan(&m.ID, &m.UserID, &m.MetricType, &m.Value, &m.Unit, &m.MeasuredAt, &m.Notes, &m.CreatedAt)
	return m, err
}

func (r *MeasurementRepository) Create(ctx context.Context, m models.BodyMeasurement) (*models.BodyMeasurement, error) {
	query := `
		INSERT INTO body_measurements (user_id, metric_type, value, unit, measured_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + measurementColumns
	created, err := scanMeasurement(r.db.QueryRow(ctx, query, m.UserID, m.MetricType, m.Value, m.Unit, m.MeasuredAt, m.Notes))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *MeasurementRepository) GetByID(ctx context.Context, id int64) (*models.BodyMeasurement, error) {
	m, err := scanMeasurement(r.db.QueryRow(ctx, `SELECT `+measurementColumns+` FROM body_measurements WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MeasurementRepository) List(
	ctx context.Context,
	filter MeasurementListFilter,
	page PageRequest,
) (models.Page[models.BodyMeasurement], error) {
	f := NewFilter().
		Eq("user_id", filter.UserID).
		EqString("metric_type", filter.MetricType).
		Between("measured_at", filter.From, filter.To)
	return pagedQuery(ctx, r.db, measurementColumns, "body_measurements", f, "measured_at DESC, id ASC", page, scanMeasurement)
}

func (r *MeasurementRepository) Update(ctx context.Context, id int64, patch models.MeasurementPatch) (*models.BodyMeasurement, error) {
	var a Assignments
	SetOptional(&a, "value", patch.Value)
	SetOptional(&a, "notes", patch.Notes)
	if a.Empty() {
		return r.GetByID(ctx, id)
	}
	query, args := a.Update("body_measurements", "id", id, false, measurementColumns)
	m, err := scanMeasurement(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MeasurementRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM body_measurements WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
