package repository

import (
	"context"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	pkgkafka "StockCast/pkg/kafka"
)

// KafkaPublisher emits analysis-completed events, keyed by symbol so one
// symbol's events stay ordered within a partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) domrepo.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishAnalysis(ctx context.Context, ev *models.AnalysisEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Symbol), ev)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
