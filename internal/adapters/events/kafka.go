package events

import (
	"context"
	"fmt"

	segkafka "github.com/segmentio/kafka-go"

	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/pkg/kafka"
)

// KafkaEventPublisher publishes paid-order events keyed by order id so all
// events of one order land in the same partition. It implements ports.EventPublisher
type KafkaEventPublisher struct {
	writer *segkafka.Writer
}

func NewKafkaEventPublisher(writer *segkafka.Writer) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: writer}
}

func (p *KafkaEventPublisher) PublishOrderPaid(ctx context.Context, event models.OrderPaidEvent) error {
	if err := kafka.PublishJSON(ctx, p.writer, event.OrderID, event); err != nil {
		return fmt.Errorf("error publishing order paid event: %w", err)
	}
	return nil
}
