package storage

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"foodiego/internal/domain"
)

// OrderEvent is the message published to the order-events topic. Consumers
// (reporting, dashboards) are outside this backend.
type OrderEvent struct {
	Type         string             `json:"type"` // created, status_changed, deleted
	OrderID      int64              `json:"order_id"`
	OrderNumber  string             `json:"order_number"`
	RestaurantID int64              `json:"restaurant_id"`
	Status       domain.OrderStatus `json:"status,omitempty"`
	Total        string             `json:"total,omitempty"`
	OccurredAt   string             `json:"occurred_at"`
}

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderNumber),
		Value: payload,
	})
}
