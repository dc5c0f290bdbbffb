package repository

import (
	"context"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	domrepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"
	pkgkafka "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/kafka"
)

// KafkaSignalPublisher implements SignalPublisher for Kafka. Messages are
// keyed by ticker so all signals of one instrument land on one partition.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates a Kafka signal publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) domrepo.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) PublishSignal(ctx context.Context, s *models.Signal) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.Ticker), s)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
