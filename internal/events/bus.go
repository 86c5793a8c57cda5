package events

import (
	"context"
	"encoding/json"

	"github.com/se360/ride-dispatch/pkg/rabbitmq"
)

// BusPublisher publishes domain events to RabbitMQ
type BusPublisher struct {
	client *rabbitmq.Client
}

// NewBusPublisher creates a publisher backed by the given client
func NewBusPublisher(client *rabbitmq.Client) *BusPublisher {
	return &BusPublisher{client: client}
}

// Publish marshals the event and sends it under its routing key
func (p *BusPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, event.RoutingKey(), body)
}
