package dispatch

import (
	"context"
	"encoding/json"

	"github.com/se360/ride-dispatch/internal/events"
	"github.com/se360/ride-dispatch/pkg/logger"
	"github.com/se360/ride-dispatch/pkg/rabbitmq"
	"github.com/se360/ride-dispatch/pkg/websocket"
)

// DriverPusher pushes a message to one driver's live connections
type DriverPusher interface {
	SendToDriver(driverID string, message websocket.Message) bool
}

// Notifier bridges bus events to driver WebSocket connections: offers,
// assignment confirmations, and later status transitions arrive over
// the bus and go out over the driver's socket. A driver with no live
// connection simply misses the push; the offer stays valid until the
// trip is taken.
type Notifier struct {
	hub    DriverPusher
	logger *logger.Logger
}

// NewNotifier creates a notifier backed by the given hub
func NewNotifier(hub DriverPusher, logger *logger.Logger) *Notifier {
	return &Notifier{hub: hub, logger: logger}
}

// HandleEvent dispatches a consumed bus message by routing key.
// Unmarshal failures are returned so the delivery is dead-lettered
// instead of redelivered forever.
func (n *Notifier) HandleEvent(ctx context.Context, routingKey string, body []byte) error {
	switch routingKey {
	case events.RouteTripOffered:
		var ev events.TripOffered
		if err := json.Unmarshal(body, &ev); err != nil {
			return err
		}
		return n.handleOffered(ctx, ev)
	case events.RouteTripAssigned:
		var ev events.TripAssigned
		if err := json.Unmarshal(body, &ev); err != nil {
			return err
		}
		return n.handleAssigned(ctx, ev)
	case events.RouteTripStarted:
		var ev events.TripStarted
		if err := json.Unmarshal(body, &ev); err != nil {
			return err
		}
		n.hub.SendToDriver(ev.DriverID.String(), websocket.Message{Type: "trip_started", Data: ev})
		return nil
	case events.RouteTripCompleted:
		var ev events.TripCompleted
		if err := json.Unmarshal(body, &ev); err != nil {
			return err
		}
		n.hub.SendToDriver(ev.DriverID.String(), websocket.Message{Type: "trip_completed", Data: ev})
		return nil
	case events.RouteTripCancelled:
		var ev events.TripCancelled
		if err := json.Unmarshal(body, &ev); err != nil {
			return err
		}
		// No driver to notify when the trip never left SEARCHING.
		if ev.DriverID != nil {
			n.hub.SendToDriver(ev.DriverID.String(), websocket.Message{Type: "trip_cancelled", Data: ev})
		}
		return nil
	default:
		n.logger.Warn("Unexpected routing key on notifier queue",
			logger.String("routing_key", routingKey),
		)
		return nil
	}
}

func (n *Notifier) handleOffered(_ context.Context, ev events.TripOffered) error {
	delivered := n.hub.SendToDriver(ev.DriverID.String(), websocket.Message{
		Type: "trip_offer",
		Data: ev,
	})
	if !delivered {
		n.logger.Info("Offer not delivered, driver has no live connection",
			logger.String("trip_id", ev.TripID.String()),
			logger.String("driver_id", ev.DriverID.String()),
		)
	}
	return nil
}

func (n *Notifier) handleAssigned(_ context.Context, ev events.TripAssigned) error {
	n.hub.SendToDriver(ev.DriverID.String(), websocket.Message{
		Type: "trip_assigned",
		Data: ev,
	})
	return nil
}

// Compile-time check that the notifier satisfies the consumer contract.
var _ rabbitmq.Handler = (&Notifier{}).HandleEvent
