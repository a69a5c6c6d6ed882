package repository

import (
	"context"
	"fmt"
	"time"

	"EconDash/internal/domain/models"
	domrepo "EconDash/internal/domain/repository"
)

const EventDatasetRefreshed = "dataset.refreshed"

// DatasetRefreshedEvent is the payload emitted after a successful run.
type DatasetRefreshedEvent struct {
	Type       string                   `json:"type"`
	RunID      string                   `json:"run_id"`
	ComputedAt time.Time                `json:"computed_at"`
	Years      int                      `json:"years"`
	Rows       []models.YearlyAggregate `json:"rows"`
}

type messagePublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaPublisher emits refresh events to a Kafka topic keyed by run id.
type KafkaPublisher struct {
	p     messagePublisher
	topic string
}

var _ domrepo.DatasetPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(p messagePublisher, topic string) *KafkaPublisher {
	return &KafkaPublisher{p: p, topic: topic}
}

func (k *KafkaPublisher) PublishRefresh(ctx context.Context, r models.Result) error {
	ev := DatasetRefreshedEvent{
		Type:       EventDatasetRefreshed,
		RunID:      r.RunID,
		ComputedAt: r.ComputedAt,
		Years:      len(r.Rows),
		Rows:       r.Rows,
	}
	if err := k.p.Publish(ctx, k.topic, []byte(r.RunID), ev); err != nil {
		return fmt.Errorf("publish %s: %w", EventDatasetRefreshed, err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.p.Close()
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishRefresh(context.Context, models.Result) error { return nil }

func (NoopPublisher) Close() error { return nil }
