package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange and queue topology for trip lifecycle events.
// One durable topic exchange; routing keys are named after the transition.
const (
	Exchange = "trip.events"

	QueueTripRequested = "trip.requested.queue"
	QueueTripOffered   = "trip.offered.queue"
	QueueTripAssigned  = "trip.assigned.queue"
	QueueTripStatus    = "trip.status.queue"
)

// Config holds RabbitMQ configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
}

// Client holds the AMQP connection and the channel used for publishing
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Connect dials RabbitMQ and declares the event topology
func Connect(cfg Config) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.User, cfg.Password, cfg.Host, cfg.Port)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Client{conn: conn, channel: ch}, nil
}

// Close closes the channel and connection
func (c *Client) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", Exchange, err)
	}

	// driver.location.updated is published to the exchange but has no
	// queue here; downstream consumers declare and bind their own.
	bindings := []struct {
		queue       string
		routingKeys []string
	}{
		{QueueTripRequested, []string{"trip.requested"}},
		{QueueTripOffered, []string{"trip.offered"}},
		{QueueTripAssigned, []string{"trip.assigned"}},
		{QueueTripStatus, []string{"trip.started", "trip.completed", "trip.cancelled"}},
	}

	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}
		for _, key := range b.routingKeys {
			if err := ch.QueueBind(b.queue, key, Exchange, false, nil); err != nil {
				return fmt.Errorf("failed to bind queue %s to %s: %w", b.queue, key, err)
			}
		}
	}

	return nil
}
