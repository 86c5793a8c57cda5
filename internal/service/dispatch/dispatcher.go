package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/se360/ride-dispatch/internal/events"
	"github.com/se360/ride-dispatch/pkg/logger"
	"github.com/se360/ride-dispatch/pkg/monitoring"
)

// PresenceIndex answers radius queries over online drivers
type PresenceIndex interface {
	SearchWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]string, error)
}

// PassengerCache remembers which passenger owns an in-flight trip
type PassengerCache interface {
	Put(ctx context.Context, tripID, passengerID uuid.UUID) error
}

// Dispatcher fans trip requests out as offers to nearby online
// drivers. Offers are non-binding; the coordinator on the trip side
// arbitrates who wins.
type Dispatcher struct {
	presence      PresenceIndex
	cache         PassengerCache
	publisher     events.Publisher
	monitoring    *monitoring.NewRelicApp
	logger        *logger.Logger
	offerRadiusKm float64
}

// NewDispatcher creates a new offer dispatcher
func NewDispatcher(
	presence PresenceIndex,
	cache PassengerCache,
	publisher events.Publisher,
	monitoring *monitoring.NewRelicApp,
	logger *logger.Logger,
	offerRadiusKm float64,
) *Dispatcher {
	if offerRadiusKm <= 0 {
		offerRadiusKm = 3.0
	}
	return &Dispatcher{
		presence:      presence,
		cache:         cache,
		publisher:     publisher,
		monitoring:    monitoring,
		logger:        logger,
		offerRadiusKm: offerRadiusKm,
	}
}

// HandleEvent adapts the dispatcher to the bus consumer contract.
// Unmarshal failures are returned so the delivery is dead-lettered.
func (d *Dispatcher) HandleEvent(ctx context.Context, routingKey string, body []byte) error {
	if routingKey != events.RouteTripRequested {
		d.logger.Warn("Unexpected routing key on dispatch queue",
			logger.String("routing_key", routingKey),
		)
		return nil
	}
	var ev events.TripRequested
	if err := json.Unmarshal(body, &ev); err != nil {
		return err
	}
	return d.HandleTripRequested(ctx, ev)
}

// HandleTripRequested reacts to a new trip request: cache the
// passenger, find online drivers near the pickup, and publish an offer
// to each. No candidates is not an error; the trip stays SEARCHING.
func (d *Dispatcher) HandleTripRequested(ctx context.Context, ev events.TripRequested) error {
	if err := d.cache.Put(ctx, ev.TripID, ev.PassengerID); err != nil {
		d.logger.Warn("Failed to cache trip passenger",
			logger.String("trip_id", ev.TripID.String()),
			logger.Err(err),
		)
	}

	candidates, err := d.presence.SearchWithinRadius(ctx, ev.PickupLat, ev.PickupLng, d.offerRadiusKm)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		d.logger.Info("No drivers available for trip",
			logger.String("trip_id", ev.TripID.String()),
			logger.Float64("radius_km", d.offerRadiusKm),
		)
		return nil
	}

	offered := 0
	for _, candidate := range candidates {
		driverID, err := uuid.Parse(candidate)
		if err != nil {
			d.logger.Warn("Skipping malformed driver ID in presence index",
				logger.String("driver_id", candidate),
			)
			continue
		}

		offer := events.TripOffered{
			TripID:      ev.TripID,
			DriverID:    driverID,
			PassengerID: ev.PassengerID,
			PickupLat:   ev.PickupLat,
			PickupLng:   ev.PickupLng,
			DropoffLat:  ev.DropoffLat,
			DropoffLng:  ev.DropoffLng,
			VehicleType: ev.VehicleType,
			OfferedAt:   time.Now().UTC(),
		}
		if err := d.publisher.Publish(ctx, offer); err != nil {
			d.logger.Error("Failed to publish trip offer",
				logger.String("trip_id", ev.TripID.String()),
				logger.String("driver_id", candidate),
				logger.Err(err),
			)
			continue
		}
		offered++
	}

	d.monitoring.RecordOfferFanout(ev.TripID.String(), offered)
	d.logger.Info("Trip offered to nearby drivers",
		logger.String("trip_id", ev.TripID.String()),
		logger.Int("candidates", len(candidates)),
		logger.Int("offered", offered),
	)

	return nil
}
