package repository

import (
	"context"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	domrepo "github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/repository"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/kafka"
)

// KafkaSignalPublisher emits signal sets to a Kafka topic, keyed by
// confluence level so consumers can compact per level.
type KafkaSignalPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *kafka.Producer, topic string) domrepo.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) PublishSignals(ctx context.Context, set *models.SignalSet) error {
	return p.producer.Publish(ctx, p.topic, []byte(set.ConfluenceLevel), set)
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}
