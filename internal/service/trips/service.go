package trips

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/se360/ride-dispatch/internal/domain/trip"
	"github.com/se360/ride-dispatch/internal/events"
	"github.com/se360/ride-dispatch/internal/service/pricing"
	apperrors "github.com/se360/ride-dispatch/pkg/errors"
	"github.com/se360/ride-dispatch/pkg/logger"
)

// Service owns the trip lifecycle: creation, the guarded transitions,
// and the events announcing them. The ledger write is the durability
// boundary; event publication failures after a committed write are
// logged and swallowed.
type Service struct {
	repo      trip.Repository
	publisher events.Publisher
	logger    *logger.Logger
}

// CreateRequest carries the inputs for a new trip
type CreateRequest struct {
	PassengerID    uuid.UUID
	PickupLat      float64
	PickupLng      float64
	PickupAddress  string
	DropoffLat     float64
	DropoffLng     float64
	DropoffAddress string
	VehicleType    trip.VehicleType
}

// NewService creates a new trip lifecycle service
func NewService(repo trip.Repository, publisher events.Publisher, logger *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Create enters a new trip as SEARCHING, computes distance and the
// estimated price, and announces it on the bus
func (s *Service) Create(ctx context.Context, req CreateRequest) (*trip.Trip, error) {
	if !req.VehicleType.IsValid() {
		return nil, apperrors.ErrInvalidVehicleType
	}
	if !validCoordinates(req.PickupLat, req.PickupLng) || !validCoordinates(req.DropoffLat, req.DropoffLng) {
		return nil, apperrors.ErrInvalidCoordinates
	}

	now := time.Now().UTC()
	distanceKm := pricing.DistanceKm(req.PickupLat, req.PickupLng, req.DropoffLat, req.DropoffLng)

	t := &trip.Trip{
		ID:             uuid.New(),
		PassengerID:    req.PassengerID,
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		PickupAddress:  req.PickupAddress,
		DropoffLat:     req.DropoffLat,
		DropoffLng:     req.DropoffLng,
		DropoffAddress: req.DropoffAddress,
		VehicleType:    req.VehicleType,
		Status:         trip.StatusSearching,
		DistanceKm:     distanceKm,
		EstimatedPrice: pricing.EstimateFare(distanceKm, req.VehicleType, false),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, apperrors.DownstreamUnavailable("Failed to create trip", err)
	}

	s.publish(ctx, events.TripRequested{
		TripID:      t.ID,
		PassengerID: t.PassengerID,
		PickupLat:   t.PickupLat,
		PickupLng:   t.PickupLng,
		DropoffLat:  t.DropoffLat,
		DropoffLng:  t.DropoffLng,
		VehicleType: string(t.VehicleType),
		RequestedAt: now,
	})

	s.logger.Info("Trip created",
		logger.String("trip_id", t.ID.String()),
		logger.String("passenger_id", t.PassengerID.String()),
		logger.Float64("distance_km", t.DistanceKm),
		logger.Int("estimated_price", int(t.EstimatedPrice)),
	)

	return t, nil
}

// Get retrieves a trip by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*trip.Trip, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, trip.ErrNotFound) {
			return nil, apperrors.ErrTripNotFound
		}
		return nil, apperrors.DownstreamUnavailable("Failed to load trip", err)
	}
	return t, nil
}

// ListByPassenger returns a passenger's trips, most recent first
func (s *Service) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]*trip.Trip, error) {
	return s.repo.ListByPassenger(ctx, passengerID)
}

// ListByDriver returns a driver's trips, most recent first
func (s *Service) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*trip.Trip, error) {
	return s.repo.ListByDriver(ctx, driverID)
}

// ListByStatus returns trips currently in the given status, most
// recent first. Used by the internal API to inspect the dispatch
// backlog.
func (s *Service) ListByStatus(ctx context.Context, status trip.Status) ([]*trip.Trip, error) {
	if !status.IsValid() {
		return nil, apperrors.MalformedInput("Unknown trip status: "+string(status), nil)
	}
	return s.repo.ListByStatus(ctx, status)
}

// Start moves an ASSIGNED trip to IN_PROGRESS
func (s *Service) Start(ctx context.Context, id uuid.UUID) (*trip.Trip, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !t.CanStart() {
		return nil, apperrors.InvalidStateTransition("Trip must be assigned before starting", nil)
	}

	t.Status = trip.StatusInProgress
	t.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, apperrors.DownstreamUnavailable("Failed to start trip", err)
	}

	s.publish(ctx, events.TripStarted{
		TripID:      t.ID,
		DriverID:    *t.DriverID,
		PassengerID: t.PassengerID,
		StartedAt:   t.UpdatedAt,
	})

	return t, nil
}

// Complete moves an IN_PROGRESS trip to COMPLETED and fixes the final
// price. The final price equals the estimate until a pricing
// collaborator overrides it.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*trip.Trip, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !t.CanComplete() {
		return nil, apperrors.InvalidStateTransition("Trip must be in progress to complete", nil)
	}

	now := time.Now().UTC()
	finalPrice := t.EstimatedPrice
	t.Status = trip.StatusCompleted
	t.FinalPrice = &finalPrice
	t.CompletedAt = &now
	t.UpdatedAt = now

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, apperrors.DownstreamUnavailable("Failed to complete trip", err)
	}

	s.publish(ctx, events.TripCompleted{
		TripID:      t.ID,
		DriverID:    *t.DriverID,
		PassengerID: t.PassengerID,
		FinalPrice:  finalPrice,
		CompletedAt: now,
	})

	return t, nil
}

// Cancel terminates a trip before pickup, recording who cancelled and
// why. Allowed only from SEARCHING or ASSIGNED.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, cancelledBy, reason string) (*trip.Trip, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !t.CanCancel() {
		return nil, apperrors.InvalidStateTransition("Trip can only be cancelled before it starts", nil)
	}

	now := time.Now().UTC()
	t.Status = trip.StatusCancelled
	t.CancelledBy = cancelledBy
	t.CancelReason = reason
	t.CancelledAt = &now
	t.UpdatedAt = now

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, apperrors.DownstreamUnavailable("Failed to cancel trip", err)
	}

	s.publish(ctx, events.TripCancelled{
		TripID:      t.ID,
		DriverID:    t.DriverID,
		PassengerID: t.PassengerID,
		CancelledBy: cancelledBy,
		CancelledAt: now,
	})

	return t, nil
}

// Rate records passenger feedback for a COMPLETED trip
func (s *Service) Rate(ctx context.Context, tripID uuid.UUID, rating int, feedback string) (*trip.Rating, error) {
	t, err := s.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if !t.CanRate() {
		return nil, apperrors.InvalidStateTransition("Trip must be completed before rating", nil)
	}
	if rating < 1 || rating > 5 {
		return nil, apperrors.MalformedInput("Rating must be between 1 and 5", nil)
	}

	r := &trip.Rating{
		ID:          uuid.New(),
		TripID:      t.ID,
		PassengerID: t.PassengerID,
		DriverID:    *t.DriverID,
		Rating:      rating,
		Feedback:    feedback,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateRating(ctx, r); err != nil {
		return nil, apperrors.DownstreamUnavailable("Failed to save rating", err)
	}

	return r, nil
}

// EstimateFare computes the distance and fare for a prospective trip
// without creating anything
func (s *Service) EstimateFare(pickupLat, pickupLng, dropoffLat, dropoffLng float64, vehicleType trip.VehicleType) (float64, int64, error) {
	if !vehicleType.IsValid() {
		return 0, 0, apperrors.ErrInvalidVehicleType
	}
	if !validCoordinates(pickupLat, pickupLng) || !validCoordinates(dropoffLat, dropoffLng) {
		return 0, 0, apperrors.ErrInvalidCoordinates
	}

	distanceKm := pricing.DistanceKm(pickupLat, pickupLng, dropoffLat, dropoffLng)
	return distanceKm, pricing.EstimateFare(distanceKm, vehicleType, false), nil
}

// publish sends an event after a committed ledger write. Failures are
// logged, never propagated: the write, not the notification, is the
// durability boundary.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish trip event",
			logger.String("routing_key", event.RoutingKey()),
			logger.Err(err),
		)
	}
}

func validCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
