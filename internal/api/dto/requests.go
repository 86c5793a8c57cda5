package dto

// CreateTripRequest represents a passenger requesting a new trip.
// Coordinates are pointers so that 0.0 (equator, prime meridian) still
// satisfies the presence check; range validation happens in the service.
type CreateTripRequest struct {
	PassengerID    string   `json:"passenger_id" binding:"required,uuid"`
	PickupLat      *float64 `json:"pickup_lat" binding:"required"`
	PickupLng      *float64 `json:"pickup_lng" binding:"required"`
	PickupAddress  string   `json:"pickup_address"`
	DropoffLat     *float64 `json:"dropoff_lat" binding:"required"`
	DropoffLng     *float64 `json:"dropoff_lng" binding:"required"`
	DropoffAddress string   `json:"dropoff_address"`
	VehicleType    string   `json:"vehicle_type" binding:"required"`
}

// EstimateFareRequest asks for a fare quote without creating a trip
type EstimateFareRequest struct {
	PickupLat   *float64 `json:"pickup_lat" binding:"required"`
	PickupLng   *float64 `json:"pickup_lng" binding:"required"`
	DropoffLat  *float64 `json:"dropoff_lat" binding:"required"`
	DropoffLng  *float64 `json:"dropoff_lng" binding:"required"`
	VehicleType string   `json:"vehicle_type" binding:"required"`
}

// UpdateLocationRequest is a single-shot driver position report, the
// HTTP fallback for drivers without a live stream
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Heading   *float64 `json:"heading,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
}

// AcceptTripRequest represents a driver accepting an offered trip
type AcceptTripRequest struct {
	DriverID string `json:"driver_id" binding:"required,uuid"`
}

// CancelTripRequest represents a cancellation before pickup
type CancelTripRequest struct {
	CancelledBy string `json:"cancelled_by" binding:"required,oneof=PASSENGER DRIVER SYSTEM"`
	Reason      string `json:"reason"`
}

// RateTripRequest represents post-trip passenger feedback
type RateTripRequest struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}

// EstimateFareResponse is the fare quote for a prospective trip
type EstimateFareResponse struct {
	DistanceKm     float64 `json:"distance_km"`
	EstimatedPrice int64   `json:"estimated_price"`
	VehicleType    string  `json:"vehicle_type"`
	Currency       string  `json:"currency"`
}

// AcceptTripResponse is the verdict of an accept attempt
type AcceptTripResponse struct {
	Result      string `json:"result"`
	TripID      string `json:"trip_id"`
	DriverID    string `json:"driver_id"`
	PassengerID string `json:"passenger_id,omitempty"`
}

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
