package services

import (
	"context"

	"github.com/saeid-a/FitTrackBack/internal/events"
	"github.com/saeid-a/FitTrackBack/internal/logger"
	"github.com/saeid-a/FitTrackBack/internal/metrics"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"go.uber.org/zap"
)

type auditLister interface {
	List(ctx context.Context, filter repository.AuditListFilter, page repository.PageRequest) (models.Page[models.AuditLog], error)
}

// AuditService appends audit rows inside the caller's transaction and
// streams them once that transaction has committed.
type AuditService struct {
	logs      auditLister
	publisher events.AuditPublisher
	metrics   *metrics.Metrics
}

func NewAuditService(logs auditLister, publisher events.AuditPublisher, m *metrics.Metrics) *AuditService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AuditService{logs: logs, publisher: publisher, metrics: m}
}

// AuditEvent is what a service knows about a change before it is stored.
type AuditEvent struct {
	ActorID    *int64
	Action     string
	EntityType string
	EntityID   *int64
	Old        any
	New        any
	Meta       models.RequestMeta
}

func (e AuditEvent) entry() models.AuditLog {
	entry := models.AuditLog{
		UserID:     e.ActorID,
		ActionType: e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		OldValue:   snapshot(e.Old),
		NewValue:   snapshot(e.New),
	}
	if e.Meta.IPAddress != "" {
		ip := e.Meta.IPAddress
		entry.IPAddress = &ip
	}
	if e.Meta.UserAgent != "" {
		ua := e.Meta.UserAgent
		entry.UserAgent = &ua
	}
	return entry
}

func actorEvent(actor *models.User, action, entityType string, entityID int64, meta models.RequestMeta) AuditEvent {
	event := AuditEvent{Action: action, EntityType: entityType, Meta: meta}
	if actor != nil {
		id := actor.ID
		event.ActorID = &id
	}
	if entityID > 0 {
		event.EntityID = &entityID
	}
	return event
}

// Record stores the event on db, normally the open transaction.
func (s *AuditService) Record(ctx context.Context, db repository.DBTX, event AuditEvent) (*models.AuditLog, error) {
	return repository.NewAuditRepository(db).Create(ctx, event.entry())
}

// Publish hands committed entries to the publisher and never fails the
// request. Delivery outcomes are reported by the publisher itself; only
// entries it refused are counted here.
func (s *AuditService) Publish(ctx context.Context, entries ...*models.AuditLog) {
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		if err := s.publisher.Publish(ctx, *entry); err != nil {
			s.metrics.AuditPublished(false)
			logger.From(ctx).Warn("audit publish failed",
				zap.Int64("audit_id", entry.ID),
				logger.EntityType(entry.EntityType),
				logger.Err(err),
			)
		}
	}
}

func (s *AuditService) List(
	ctx context.Context,
	filter repository.AuditListFilter,
	page repository.PageRequest,
) (models.Page[models.AuditLog], error) {
	result, err := s.logs.List(ctx, filter, page)
	if err != nil {
		return models.Page[models.AuditLog]{}, translate(ctx, err, "Audit log not found")
	}
	return result, nil
}
