package repository

import (
	"context"

	"EvoTrader/internal/domain/models"
	"EvoTrader/internal/domain/repository"
	pkgkafka "EvoTrader/pkg/kafka"
)

// KafkaSignalPublisher fans signal entries out to a Kafka topic, keyed
// by symbol so per-symbol ordering is preserved.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates the publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) PublishSignal(ctx context.Context, s *models.SignalEntry) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.Symbol), s)
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}
