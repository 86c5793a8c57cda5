package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/se360/ride-dispatch/internal/domain/trip"
	"github.com/se360/ride-dispatch/internal/events"
	"github.com/se360/ride-dispatch/pkg/logger"
	"github.com/se360/ride-dispatch/pkg/monitoring"
)

// AcceptResult is the verdict of a driver's accept attempt
type AcceptResult string

const (
	AcceptSuccess         AcceptResult = "SUCCESS"
	AcceptAlreadyAssigned AcceptResult = "ALREADY_ASSIGNED"
	AcceptTripNotFound    AcceptResult = "TRIP_NOT_FOUND"
)

// AssignmentLock serializes accept attempts per trip
type AssignmentLock interface {
	TryAcquire(ctx context.Context, tripID, driverID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, tripID, driverID string) (bool, error)
}

// Coordinator arbitrates concurrent accepts for a trip. The per-trip
// lock is acquired before the trip is read, so candidates serialize
// and exactly one can win the conditional assignment.
type Coordinator struct {
	lock       AssignmentLock
	repo       trip.Repository
	publisher  events.Publisher
	monitoring *monitoring.NewRelicApp
	logger     *logger.Logger
	lockTTL    time.Duration
}

// NewCoordinator creates a new assignment coordinator
func NewCoordinator(
	lock AssignmentLock,
	repo trip.Repository,
	publisher events.Publisher,
	monitoring *monitoring.NewRelicApp,
	logger *logger.Logger,
	lockTTL time.Duration,
) *Coordinator {
	if lockTTL <= 0 {
		lockTTL = 5 * time.Second
	}
	return &Coordinator{
		lock:       lock,
		repo:       repo,
		publisher:  publisher,
		monitoring: monitoring,
		logger:     logger,
		lockTTL:    lockTTL,
	}
}

// Accept arbitrates a driver's attempt to take a trip. A driver who
// loses the lock race is told the trip is already taken without
// touching the ledger. The conditional assignment update is the final
// arbiter either way.
func (c *Coordinator) Accept(ctx context.Context, tripID, driverID uuid.UUID) (AcceptResult, error) {
	start := time.Now()

	acquired, err := c.lock.TryAcquire(ctx, tripID.String(), driverID.String(), c.lockTTL)
	if err != nil {
		return "", err
	}
	if !acquired {
		c.monitoring.RecordAcceptOutcome("lock_contended", float64(time.Since(start).Milliseconds()))
		return AcceptAlreadyAssigned, nil
	}
	defer func() {
		// Compare-and-delete: a release that outlives the TTL can
		// never evict a newer holder.
		if _, err := c.lock.Release(context.WithoutCancel(ctx), tripID.String(), driverID.String()); err != nil {
			c.logger.Warn("Failed to release assignment lock",
				logger.String("trip_id", tripID.String()),
				logger.Err(err),
			)
		}
	}()

	t, err := c.repo.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, trip.ErrNotFound) {
			c.monitoring.RecordAcceptOutcome("trip_not_found", float64(time.Since(start).Milliseconds()))
			return AcceptTripNotFound, nil
		}
		return "", err
	}

	if t.Status != trip.StatusSearching {
		c.monitoring.RecordAcceptOutcome("already_assigned", float64(time.Since(start).Milliseconds()))
		return AcceptAlreadyAssigned, nil
	}

	acceptedAt := time.Now().UTC()
	rows, err := c.repo.AssignDriver(ctx, tripID, driverID, acceptedAt)
	if err != nil {
		return "", err
	}
	if rows == 0 {
		// Lost a race the lock did not cover, e.g. a concurrent cancel.
		c.monitoring.RecordAcceptOutcome("already_assigned", float64(time.Since(start).Milliseconds()))
		return AcceptAlreadyAssigned, nil
	}

	assigned := events.TripAssigned{
		TripID:      tripID,
		DriverID:    driverID,
		PassengerID: t.PassengerID,
		AssignedAt:  acceptedAt,
	}
	if err := c.publisher.Publish(ctx, assigned); err != nil {
		// The assignment is committed; the event is best effort.
		c.logger.Error("Failed to publish trip assigned event",
			logger.String("trip_id", tripID.String()),
			logger.String("driver_id", driverID.String()),
			logger.Err(err),
		)
	}

	c.monitoring.RecordAcceptOutcome("success", float64(time.Since(start).Milliseconds()))
	c.logger.Info("Trip assigned",
		logger.String("trip_id", tripID.String()),
		logger.String("driver_id", driverID.String()),
	)

	return AcceptSuccess, nil
}
