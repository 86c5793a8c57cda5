package trip

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the trip lifecycle state
type Status string

const (
	StatusSearching  Status = "SEARCHING"
	StatusAssigned   Status = "ASSIGNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// VehicleType represents the requested vehicle class
type VehicleType string

const (
	VehicleBike        VehicleType = "BIKE"
	VehicleBikeEconomy VehicleType = "BIKE_ECONOMY"
	VehicleCar4Seat    VehicleType = "CAR_4_SEAT"
	VehicleCar7Seat    VehicleType = "CAR_7_SEAT"
	VehicleCarEconomy  VehicleType = "CAR_ECONOMY"
	VehicleCarElectric VehicleType = "CAR_ELECTRIC"
	VehicleCarPremium  VehicleType = "CAR_PREMIUM"
)

// Trip represents one passenger transport request from creation to a
// terminal state. Owned exclusively by the trip repository; DriverID is
// nil until the trip reaches ASSIGNED and never changes afterward.
type Trip struct {
	ID             uuid.UUID   `json:"id"`
	PassengerID    uuid.UUID   `json:"passenger_id"`
	DriverID       *uuid.UUID  `json:"driver_id,omitempty"`
	PickupLat      float64     `json:"pickup_lat"`
	PickupLng      float64     `json:"pickup_lng"`
	PickupAddress  string      `json:"pickup_address"`
	DropoffLat     float64     `json:"dropoff_lat"`
	DropoffLng     float64     `json:"dropoff_lng"`
	DropoffAddress string      `json:"dropoff_address"`
	VehicleType    VehicleType `json:"vehicle_type"`
	Status         Status      `json:"status"`
	DistanceKm     float64     `json:"distance_km"`
	EstimatedPrice int64       `json:"estimated_price"`
	FinalPrice     *int64      `json:"final_price,omitempty"`
	CancelledBy    string      `json:"cancelled_by,omitempty"`
	CancelReason   string      `json:"cancel_reason,omitempty"`
	CancelledAt    *time.Time  `json:"cancelled_at,omitempty"`
	AcceptedAt     *time.Time  `json:"accepted_at,omitempty"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Version        int         `json:"version"`
}

// Rating is a passenger's post-trip feedback, allowed only once the
// trip is COMPLETED
type Rating struct {
	ID          uuid.UUID `json:"id"`
	TripID      uuid.UUID `json:"trip_id"`
	PassengerID uuid.UUID `json:"passenger_id"`
	DriverID    uuid.UUID `json:"driver_id"`
	Rating      int       `json:"rating"`
	Feedback    string    `json:"feedback,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusSearching, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is permitted
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsValid validates the vehicle type
func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleBike, VehicleBikeEconomy, VehicleCar4Seat, VehicleCar7Seat,
		VehicleCarEconomy, VehicleCarElectric, VehicleCarPremium:
		return true
	}
	return false
}

// Lifecycle guards. The assignment itself is additionally enforced by
// the repository's conditional update; these guards give fast failures
// and protect the non-contended transitions.

// CanAssign checks if a driver can be assigned to this trip
func (t *Trip) CanAssign() bool {
	return t.Status == StatusSearching
}

// CanStart checks if the trip can move to IN_PROGRESS
func (t *Trip) CanStart() bool {
	return t.Status == StatusAssigned
}

// CanComplete checks if the trip can be completed
func (t *Trip) CanComplete() bool {
	return t.Status == StatusInProgress
}

// CanCancel checks if the trip can still be cancelled
func (t *Trip) CanCancel() bool {
	return t.Status == StatusSearching || t.Status == StatusAssigned
}

// CanRate checks if the trip accepts a rating
func (t *Trip) CanRate() bool {
	return t.Status == StatusCompleted
}
