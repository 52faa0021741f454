package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// KafkaPublisher writes events to a single topic keyed by session id, so all
// events of one session land on the same partition in order.
type KafkaPublisher struct {
	sp     sarama.SyncProducer
	topic  string
	source string
	logger *zap.Logger
}

// ProducerConfig returns the sarama settings used for the events topic.
func ProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_3_2_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 200 * time.Millisecond
	return cfg
}

// NewKafkaPublisher connects a sync producer to brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	sp, err := sarama.NewSyncProducer(brokers, ProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(sp, topic, logger), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(sp sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		sp:     sp,
		topic:  topic,
		source: "profile-wizard",
		logger: logger.With(zap.String("component", "kafka_publisher")),
	}
}

func (p *KafkaPublisher) Close() error {
	if p == nil || p.sp == nil {
		return nil
	}
	return p.sp.Close()
}

func (p *KafkaPublisher) Publish(_ context.Context, e Event) error {
	if p == nil || p.sp == nil {
		return errors.New("sync producer is not initialized")
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.SessionID.String()),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(e.Type)},
			{Key: []byte("source"), Value: []byte(p.source)},
			{Key: []byte("content-type"), Value: []byte("application/json")},
		},
	}

	part, off, err := p.sp.SendMessage(msg)
	if err != nil {
		p.logger.Error("failed to send kafka message",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("event_type", e.Type),
			zap.Int("bytes", len(body)),
		)
		return fmt.Errorf("send kafka message: %w", err)
	}

	p.logger.Debug("kafka message sent",
		zap.String("topic", p.topic),
		zap.String("event_type", e.Type),
		zap.Int32("partition", part),
		zap.Int64("offset", off),
	)
	return nil
}
