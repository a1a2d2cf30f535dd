// Package events streams audit entries to Kafka once they are stored.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/saeid-a/FitTrackBack/internal/metrics"
	"github.com/saeid-a/FitTrackBack/internal/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	defaultQueueSize    = 1024
	defaultWriteTimeout = 15 * time.Second
)

var (
	ErrQueueFull       = errors.New("audit queue is full")
	ErrPublisherClosed = errors.New("audit publisher is closed")
)

type AuditPublisher interface {
	Publish(ctx context.Context, entry models.AuditLog) error
	Close() error
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.AuditLog) error { return nil }
func (NopPublisher) Close() error                                   { return nil }

// DeliveryFunc receives the outcome of every background write.
type DeliveryFunc func(entry models.AuditLog, err error)

// ReportDelivery counts each write and logs the failed ones.
func ReportDelivery(m *metrics.Metrics, log *zap.Logger) DeliveryFunc {
	return func(entry models.AuditLog, err error) {
		m.AuditPublished(err == nil)
		if err != nil {
			log.Warn("audit publish failed",
				zap.Int64("audit_id", entry.ID),
				zap.String("entity_type", entry.EntityType),
				zap.Error(err),
			)
		}
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type pending struct {
	entry models.AuditLog
	msg   kafka.Message
}

// KafkaPublisher queues entries and writes them from a single background
// goroutine, so Publish never waits on the broker. When the queue is full
// the entry is dropped and Publish reports ErrQueueFull.
type KafkaPublisher struct {
	writer       messageWriter
	topic        string
	writeTimeout time.Duration
	onDelivery   DeliveryFunc

	mu     sync.RWMutex
	closed bool
	queue  chan pending
	done   chan struct{}
}

func NewKafkaPublisher(brokers []string, topic string, onDelivery DeliveryFunc) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
	return newKafkaPublisher(writer, topic, defaultQueueSize, onDelivery)
}

func newKafkaPublisher(writer messageWriter, topic string, queueSize int, onDelivery DeliveryFunc) *KafkaPublisher {
	p := &KafkaPublisher{
		writer:       writer,
		topic:        topic,
		writeTimeout: defaultWriteTimeout,
		onDelivery:   onDelivery,
		queue:        make(chan pending, queueSize),
		done:         make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish encodes the entry, keyed by actor so one user's history stays
// ordered within a partition, and hands it to the writer goroutine.
func (p *KafkaPublisher) Publish(_ context.Context, entry models.AuditLog) error {
	msg, err := encode(entry)
	if err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- pending{entry: entry, msg: msg}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for item := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
		err := p.writer.WriteMessages(ctx, item.msg)
		cancel()
		if err != nil {
			err = fmt.Errorf("publish audit entry to %s: %w", p.topic, err)
		}
		if p.onDelivery != nil {
			p.onDelivery(item.entry, err)
		}
	}
}

// Close stops accepting entries, drains the queue and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}

func encode(entry models.AuditLog) (kafka.Message, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode audit entry %d: %w", entry.ID, err)
	}

	key := "anonymous"
	if entry.UserID != nil {
		key = strconv.FormatInt(*entry.UserID, 10)
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  entry.CreatedAt.UTC(),
		Headers: []kafka.Header{
			{Key: "action_type", Value: []byte(entry.ActionType)},
			{Key: "entity_type", Value: []byte(entry.EntityType)},
		},
	}, nil
}

// NewAuditPublisher picks the Kafka publisher when brokers are configured.
func NewAuditPublisher(brokers []string, topic string, onDelivery DeliveryFunc) AuditPublisher {
	if len(brokers) == 0 || topic == "" {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic, onDelivery)
}
