package trip

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for trip data access
type Repository interface {
	// Create persists a new trip
	Create(ctx context.Context, trip *Trip) error

	// GetByID retrieves a trip by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Trip, error)

	// AssignDriver performs the conditional assignment write:
	// UPDATE ... WHERE id = tripID AND status = SEARCHING. It returns
	// the number of rows changed; zero means the precondition failed
	// (already assigned, or not found). This is the single mutation
	// that must be race-free at the storage layer.
	AssignDriver(ctx context.Context, tripID, driverID uuid.UUID, acceptedAt time.Time) (int64, error)

	// Update persists changes to an existing trip
	Update(ctx context.Context, trip *Trip) error

	// ListByPassenger returns trips for a passenger, most recent first
	ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]*Trip, error)

	// ListByDriver returns trips assigned to a driver, most recent first
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Trip, error)

	// ListByStatus returns trips currently in the given status
	ListByStatus(ctx context.Context, status Status) ([]*Trip, error)

	// CreateRating persists a post-trip rating
	CreateRating(ctx context.Context, rating *Rating) error
}
