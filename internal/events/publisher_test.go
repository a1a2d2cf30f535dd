package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/saeid-a/FitTrackBack/internal/metrics"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// blockingWriter holds every write until release is closed.
type blockingWriter struct {
	started chan struct{}
	release chan struct{}
}

func (w *blockingWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	select {
	case w.started <- struct{}{}:
	default:
	}
	select {
	case <-w.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *blockingWriter) Close() error { return nil }

type deliveries struct {
	mu      sync.Mutex
	entries []models.AuditLog
	errs    []error
}

func (d *deliveries) record(entry models.AuditLog, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, entry)
	d.errs = append(d.errs, err)
}

func TestKafkaPublisherKeysByUser(t *testing.T) {
	writer := &recordingWriter{}
	publisher := newKafkaPublisher(writer, "fitness.audit", 8, nil)

	userID := int64(42)
	entityID := int64(7)
	entry := models.AuditLog{
		ID:         3,
		UserID:     &userID,
		ActionType: models.AuditActionCreate,
		EntityType: "workout",
		EntityID:   &entityID,
		NewValue:   map[string]any{"status": "completed"},
		CreatedAt:  time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, publisher.Publish(context.Background(), entry))
	require.NoError(t, publisher.Close())
	require.Len(t, writer.messages, 1)
	assert.True(t, writer.closed)

	msg := writer.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, entry.CreatedAt, msg.Time)

	var decoded models.AuditLog
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "workout", decoded.EntityType)
	assert.Equal(t, int64(7), *decoded.EntityID)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "create", headers["action_type"])
	assert.Equal(t, "workout", headers["entity_type"])
}

func TestKafkaPublisherReportsDeliveryErrors(t *testing.T) {
	writer := &recordingWriter{err: errors.New("broker down")}
	got := &deliveries{}
	publisher := newKafkaPublisher(writer, "fitness.audit", 8, got.record)

	require.NoError(t, publisher.Publish(context.Background(), models.AuditLog{ID: 1, ActionType: models.AuditActionLogin}))
	require.NoError(t, publisher.Close())

	require.Len(t, got.errs, 1)
	require.Error(t, got.errs[0])
	assert.Contains(t, got.errs[0].Error(), "fitness.audit")
	assert.Equal(t, int64(1), got.entries[0].ID)

	assert.ErrorIs(t, publisher.Publish(context.Background(), models.AuditLog{}), ErrPublisherClosed)
}

func TestKafkaPublisherDoesNotWaitOnBroker(t *testing.T) {
	writer := &blockingWriter{started: make(chan struct{}, 1), release: make(chan struct{})}
	publisher := newKafkaPublisher(writer, "fitness.audit", 1, nil)
	ctx := context.Background()

	publish := func(id int64) error {
		result := make(chan error, 1)
		go func() { result <- publisher.Publish(ctx, models.AuditLog{ID: id}) }()
		select {
		case err := <-result:
			return err
		case <-time.After(time.Second):
			t.Fatal("Publish blocked on a stalled broker")
			return nil
		}
	}

	require.NoError(t, publish(1))
	select {
	case <-writer.started:
	case <-time.After(time.Second):
		t.Fatal("writer never started")
	}

	// the writer is stuck on entry 1; entry 2 fills the queue
	require.NoError(t, publish(2))
	assert.ErrorIs(t, publish(3), ErrQueueFull)

	close(writer.release)
	require.NoError(t, publisher.Close())
}

func TestReportDeliveryCountsOutcomes(t *testing.T) {
	m, err := metrics.New()
	require.NoError(t, err)

	report := ReportDelivery(m, zap.NewNop())
	report(models.AuditLog{ID: 1}, nil)
	report(models.AuditLog{ID: 2}, errors.New("broker down"))

	count, err := testutil.GatherAndCount(m.Registry(), "fittrack_audit_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewAuditPublisherFallsBackToNop(t *testing.T) {
	_, ok := NewAuditPublisher(nil, "fitness.audit", nil).(NopPublisher)
	assert.True(t, ok)

	publisher, ok := NewAuditPublisher([]string{"localhost:9092"}, "fitness.audit", nil).(*KafkaPublisher)
	require.True(t, ok)
	require.NoError(t, publisher.Close())
}
