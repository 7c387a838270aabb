// Package stream mirrors committed lifecycle transitions onto a Kafka topic
// for downstream consumers.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	lifecycle "vcc/internal/lifecycle/models"
	"vcc/pkg/requestcontext"
)

const defaultProduceTimeout = 5 * time.Second

// Producer is the slice of *kgo.Client the publisher uses.
type Producer interface {
	TryProduce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

// Publisher produces one JSON record per transition, keyed by profile id so
// a profile's events stay ordered within a partition.
type Publisher struct {
	producer Producer
	topic    string
	timeout  time.Duration
	logger   *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithProduceTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func New(producer Producer, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		timeout:  defaultProduceTimeout,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewClient dials the brokers with producer settings matching Publisher.
func NewClient(brokers []string, topic string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RecordDeliveryTimeout(defaultProduceTimeout),
	)
}

// Publish hands the event to the producer without waiting for the broker;
// a full producer buffer fails the record immediately. Failures are logged.
func (p *Publisher) Publish(ctx context.Context, event lifecycle.TransitionEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to encode transition event", "error", err)
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.ProfileID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte("application.transition")},
		},
	}
	if rid := requestcontext.RequestID(ctx); rid != "" {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: "request_id", Value: []byte(rid)})
	}

	produceCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	profileID := event.ProfileID.String()
	p.producer.TryProduce(produceCtx, record, func(_ *kgo.Record, err error) {
		defer cancel()
		if err != nil {
			p.logger.ErrorContext(produceCtx, "failed to stream transition event",
				"profile_id", profileID,
				"new_status", string(event.NewStatus),
				"error", err,
			)
		}
	})
}
