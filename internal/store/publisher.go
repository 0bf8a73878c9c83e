package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of kafka.Writer used by Publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds an async writer for the search-query topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
}

// SearchQueryEvent is the payload published for every recorded search.
type SearchQueryEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	Text        string    `json:"text"`
	Parsed      bool      `json:"parsed"`
	HasLocation bool      `json:"has_location"`
	CuisineType string    `json:"cuisine_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Publisher wraps a Store and publishes each saved query to Kafka. Publish
// failures are logged and do not fail the save.
type Publisher struct {
	Store
	writer MessageWriter
}

// NewPublisher decorates next with a Kafka publisher.
func NewPublisher(next Store, writer MessageWriter) *Publisher {
	return &Publisher{Store: next, writer: writer}
}

// SaveQuery stores q and then publishes it, keyed by user so a user's
// searches stay ordered within a partition.
func (p *Publisher) SaveQuery(ctx context.Context, q Query) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	if err := p.Store.SaveQuery(ctx, q); err != nil {
		return err
	}

	evt := SearchQueryEvent{
		ID:          q.ID,
		UserID:      q.UserID,
		Text:        q.Text,
		Parsed:      q.Criteria != nil,
		HasLocation: q.Location() != nil,
		CreatedAt:   q.CreatedAt,
	}
	if q.Criteria != nil {
		evt.CuisineType = q.Criteria.CuisineType
	}

	data, err := json.Marshal(evt)
	if err != nil {
		zap.L().Warn("store: marshal search query event", zap.Error(err))
		return nil
	}
	msg := kafka.Message{Key: []byte(q.UserID), Value: data, Time: q.CreatedAt}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		zap.L().Warn("store: publish search query event",
			zap.String("user_id", q.UserID),
			zap.Error(err),
		)
	}
	return nil
}

// Close flushes the writer and closes the wrapped store.
func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		zap.L().Warn("store: close kafka writer", zap.Error(err))
	}
	return p.Store.Close()
}
