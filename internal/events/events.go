package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Routing keys, named after the lifecycle transition they announce.
const (
	RouteTripRequested         = "trip.requested"
	RouteTripOffered           = "trip.offered"
	RouteTripAssigned          = "trip.assigned"
	RouteTripStarted           = "trip.started"
	RouteTripCompleted         = "trip.completed"
	RouteTripCancelled         = "trip.cancelled"
	RouteDriverLocationUpdated = "driver.location.updated"
)

// Event is an immutable fact published on the bus. Payloads are flat
// JSON records: ids as UUID strings, timestamps as ISO-8601.
type Event interface {
	RoutingKey() string
}

// Publisher sends domain events to the bus. Delivery is at least once;
// subscribers must handle duplicates.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// TripRequested announces a newly created trip entering SEARCHING
type TripRequested struct {
	TripID      uuid.UUID `json:"trip_id"`
	PassengerID uuid.UUID `json:"passenger_id"`
	PickupLat   float64   `json:"pickup_lat"`
	PickupLng   float64   `json:"pickup_lng"`
	DropoffLat  float64   `json:"dropoff_lat"`
	DropoffLng  float64   `json:"dropoff_lng"`
	VehicleType string    `json:"vehicle_type"`
	RequestedAt time.Time `json:"requested_at"`
}

func (TripRequested) RoutingKey() string { return RouteTripRequested }

// TripOffered is a non-binding candidate notification for one driver
type TripOffered struct {
	TripID      uuid.UUID `json:"trip_id"`
	DriverID    uuid.UUID `json:"driver_id"`
	PassengerID uuid.UUID `json:"passenger_id"`
	PickupLat   float64   `json:"pickup_lat"`
	PickupLng   float64   `json:"pickup_lng"`
	DropoffLat  float64   `json:"dropoff_lat"`
	DropoffLng  float64   `json:"dropoff_lng"`
	VehicleType string    `json:"vehicle_type"`
	OfferedAt   time.Time `json:"offered_at"`
}

func (TripOffered) RoutingKey() string { return RouteTripOffered }

// TripAssigned announces the single winning driver for a trip.
// Published only after the ledger commit.
type TripAssigned struct {
	TripID      uuid.UUID `json:"trip_id"`
	DriverID    uuid.UUID `json:"driver_id"`
	PassengerID uuid.UUID `json:"passenger_id"`
	AssignedAt  time.Time `json:"assigned_at"`
}

func (TripAssigned) RoutingKey() string { return RouteTripAssigned }

// TripStarted announces the pickup
type TripStarted struct {
	TripID      uuid.UUID `json:"trip_id"`
	DriverID    uuid.UUID `json:"driver_id"`
	PassengerID uuid.UUID `json:"passenger_id"`
	StartedAt   time.Time `json:"started_at"`
}

func (TripStarted) RoutingKey() string { return RouteTripStarted }

// TripCompleted announces the dropoff and the final price
type TripCompleted struct {
	TripID      uuid.UUID `json:"trip_id"`
	DriverID    uuid.UUID `json:"driver_id"`
	PassengerID uuid.UUID `json:"passenger_id"`
	FinalPrice  int64     `json:"final_price"`
	CompletedAt time.Time `json:"completed_at"`
}

func (TripCompleted) RoutingKey() string { return RouteTripCompleted }

// TripCancelled announces a cancellation and who requested it.
// DriverID is nil when the trip was cancelled while still SEARCHING.
type TripCancelled struct {
	TripID      uuid.UUID  `json:"trip_id"`
	DriverID    *uuid.UUID `json:"driver_id,omitempty"`
	PassengerID uuid.UUID  `json:"passenger_id"`
	CancelledBy string     `json:"cancelled_by"`
	CancelledAt time.Time  `json:"cancelled_at"`
}

func (TripCancelled) RoutingKey() string { return RouteTripCancelled }

// DriverLocationUpdated is the integration event emitted for every
// accepted location tick
type DriverLocationUpdated struct {
	DriverID  uuid.UUID `json:"driver_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Heading   *float64  `json:"heading,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DriverLocationUpdated) RoutingKey() string { return RouteDriverLocationUpdated }
