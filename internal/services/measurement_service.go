package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
)

const measurementNotFound = "Measurement not found"

type measurementStore interface {
	GetByID(ctx context.Context, id int64) (*models.BodyMeasurement, error)
	List(ctx context.Context, filter repository.MeasurementListFilter, page repository.PageRequest) (models.Page[models.BodyMeasurement], error)
}

type MeasurementService struct {
	db           txBeginner
	measurements measurementStore
	audit        *AuditService
	now          func() time.Time
}

func NewMeasurementService(db txBeginner, measurements measurementStore, audit *AuditService) *MeasurementService {
	return &MeasurementService{db: db, measurements: measurements, audit: audit, now: time.Now}
}

type MeasurementInput struct {
	UserID     *int64
	MetricType string
	Value      float64
	Unit       string
	MeasuredAt *time.Time
	Notes      *string
}

func (s *MeasurementService) owned(ctx context.Context, actor *models.User, id int64) (*models.BodyMeasurement, error) {
	m, err := s.measurements.GetByID(ctx, id)
	if err != nil {
		return nil, translate(ctx, err, measurementNotFound)
	}
	if err := requireOwner(actor, m.UserID); err != nil {
		return nil, err
	}
	return m, nil
}

// Record defaults measured_at to now when the client omits it.
func (s *MeasurementService) Record(
	ctx context.Context,
	actor *models.User,
	input MeasurementInput,
	meta models.RequestMeta,
) (*models.BodyMeasurement, error) {
	if input.UserID != nil && *input.UserID != actor.ID {
		return nil, apperr.Forbidden("Cannot create measurement for other users")
	}
	measuredAt := s.now().UTC()
	if input.MeasuredAt != nil {
		measuredAt = input.MeasuredAt.UTC()
	}

	var (
		created *models.BodyMeasurement
		entry   *models.AuditLog
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		created, err = repository.NewMeasurementRepository(tx).Create(ctx, models.BodyMeasurement{
			UserID:     actor.ID,
			MetricType: input.MetricType,
			Value:      input.Value,
			Unit:       input.Unit,
			MeasuredAt: measuredAt,
			Notes:      input.Notes,
		})
		if err != nil {
			return err
		}
		event := actorEvent(actor, models.AuditActionCreate, "body_measurement", created.ID, meta)
		event.New = created
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, measurementNotFound)
	}

	s.audit.Publish(ctx, entry)
	return created, nil
}

func (s *MeasurementService) List(
	ctx context.Context,
	actor *models.User,
	filter repository.MeasurementListFilter,
	page repository.PageRequest,
) (models.Page[models.BodyMeasurement], error) {
	filter.UserID = actor.ID
	result, err := s.measurements.List(ctx, filter, page)
	if err != nil {
		return models.Page[models.BodyMeasurement]{}, translate(ctx, err, measurementNotFound)
	}
	return result, nil
}

func (s *MeasurementService) Get(ctx context.Context, actor *models.User, id int64) (*models.BodyMeasurement, error) {
	return s.owned(ctx, actor, id)
}

func (s *MeasurementService) Update(
	ctx context.Context,
	actor *models.User,
	id int64,
	patch models.MeasurementPatch,
	meta models.RequestMeta,
) (*models.BodyMeasurement, error) {
	before, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var (
		updated *models.BodyMeasurement
		entry   *models.AuditLog
	)
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		updated, err = repository.NewMeasurementRepository(tx).Update(ctx, id, patch)
		if err != nil {
			return err
		}
		event := actorEvent(actor, models.AuditActionUpdate, "body_measurement", id, meta)
		event.Old = before
		event.New = updated
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return nil, translate(ctx, err, measurementNotFound)
	}

	s.audit.Publish(ctx, entry)
	return updated, nil
}

func (s *MeasurementService) Delete(ctx context.Context, actor *models.User, id int64, meta models.RequestMeta) error {
	before, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}

	var entry *models.AuditLog
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		deleted, err := repository.NewMeasurementRepository(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return apperr.NotFound(measurementNotFound)
		}
		event := actorEvent(actor, models.AuditActionDelete, "body_measurement", id, meta)
		event.Old = before
		entry, err = s.audit.Record(ctx, tx, event)
		return err
	})
	if err != nil {
		return translate(ctx, err, measurementNotFound)
	}

	s.audit.Publish(ctx, entry)
	return nil
}
