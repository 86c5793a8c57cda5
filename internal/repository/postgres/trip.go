package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/se360/ride-dispatch/internal/domain/trip"
)

// TripRepository is a PostgreSQL implementation of trip.Repository
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new PostgreSQL trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

const tripColumns = `
	id, passenger_id, driver_id,
	pickup_lat, pickup_lng, pickup_address,
	dropoff_lat, dropoff_lng, dropoff_address,
	vehicle_type, trip_status, distance_km,
	estimated_price, final_price,
	cancelled_by, cancel_reason, cancelled_at,
	accepted_at, completed_at, created_at, updated_at, version`

// Create persists a new trip
func (r *TripRepository) Create(ctx context.Context, t *trip.Trip) error {
	query := `
		INSERT INTO trips (
			id, passenger_id,
			pickup_lat, pickup_lng, pickup_address,
			dropoff_lat, dropoff_lng, dropoff_address,
			vehicle_type, trip_status, distance_km, estimated_price,
			created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.PassengerID,
		t.PickupLat,
		t.PickupLng,
		t.PickupAddress,
		t.DropoffLat,
		t.DropoffLng,
		t.DropoffAddress,
		t.VehicleType,
		t.Status,
		t.DistanceKm,
		t.EstimatedPrice,
		t.CreatedAt,
		t.UpdatedAt,
		t.Version,
	)

	return err
}

// GetByID retrieves a trip by ID
func (r *TripRepository) GetByID(ctx context.Context, id uuid.UUID) (*trip.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	t, err := scanTrip(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trip.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// AssignDriver performs the conditional assignment write. The status
// precondition is evaluated atomically by the database; the returned
// row count is the only signal of whether this attempt won.
func (r *TripRepository) AssignDriver(ctx context.Context, tripID, driverID uuid.UUID, acceptedAt time.Time) (int64, error) {
	query := `
		UPDATE trips
		SET driver_id = $2,
		    trip_status = $3,
		    accepted_at = $4,
		    updated_at = $4,
		    version = version + 1
		WHERE id = $1 AND trip_status = $5
	`

	res, err := r.db.ExecContext(ctx, query,
		tripID, driverID, trip.StatusAssigned, acceptedAt, trip.StatusSearching)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// Update persists changes to an existing trip, bumping the version for
// optimistic concurrency
func (r *TripRepository) Update(ctx context.Context, t *trip.Trip) error {
	query := `
		UPDATE trips
		SET trip_status = $2,
		    final_price = $3,
		    cancelled_by = $4,
		    cancel_reason = $5,
		    cancelled_at = $6,
		    completed_at = $7,
		    updated_at = $8,
		    version = version + 1
		WHERE id = $1 AND version = $9
	`

	var finalPrice sql.NullInt64
	if t.FinalPrice != nil {
		finalPrice = sql.NullInt64{Int64: *t.FinalPrice, Valid: true}
	}

	var cancelledBy, cancelReason sql.NullString
	if t.CancelledBy != "" {
		cancelledBy = sql.NullString{String: t.CancelledBy, Valid: true}
	}
	if t.CancelReason != "" {
		cancelReason = sql.NullString{String: t.CancelReason, Valid: true}
	}

	var cancelledAt, completedAt sql.NullTime
	if t.CancelledAt != nil {
		cancelledAt = sql.NullTime{Time: *t.CancelledAt, Valid: true}
	}
	if t.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *t.CompletedAt, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query,
		t.ID, t.Status, finalPrice, cancelledBy, cancelReason,
		cancelledAt, completedAt, t.UpdatedAt, t.Version)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return trip.ErrNotFound
	}

	t.Version++
	return nil
}

// ListByPassenger returns trips for a passenger, most recent first
func (r *TripRepository) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]*trip.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE passenger_id = $1 ORDER BY created_at DESC`
	return r.queryTrips(ctx, query, passengerID)
}

// ListByDriver returns trips assigned to a driver, most recent first
func (r *TripRepository) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*trip.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE driver_id = $1 ORDER BY created_at DESC`
	return r.queryTrips(ctx, query, driverID)
}

// ListByStatus returns trips currently in the given status
func (r *TripRepository) ListByStatus(ctx context.Context, status trip.Status) ([]*trip.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE trip_status = $1 ORDER BY created_at DESC`
	return r.queryTrips(ctx, query, status)
}

// CreateRating persists a post-trip rating
func (r *TripRepository) CreateRating(ctx context.Context, rating *trip.Rating) error {
	query := `
		INSERT INTO trip_ratings (id, trip_id, passenger_id, driver_id, rating, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		rating.ID, rating.TripID, rating.PassengerID, rating.DriverID,
		rating.Rating, rating.Feedback, rating.CreatedAt)
	return err
}

func (r *TripRepository) queryTrips(ctx context.Context, query string, args ...interface{}) ([]*trip.Trip, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*trip.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrip(row rowScanner) (*trip.Trip, error) {
	var t trip.Trip
	var driverID sql.NullString
	var finalPrice sql.NullInt64
	var cancelledBy, cancelReason sql.NullString
	var cancelledAt, acceptedAt, completedAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&t.PassengerID,
		&driverID,
		&t.PickupLat,
		&t.PickupLng,
		&t.PickupAddress,
		&t.DropoffLat,
		&t.DropoffLng,
		&t.DropoffAddress,
		&t.VehicleType,
		&t.Status,
		&t.DistanceKm,
		&t.EstimatedPrice,
		&finalPrice,
		&cancelledBy,
		&cancelReason,
		&cancelledAt,
		&acceptedAt,
		&completedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		id, err := uuid.Parse(driverID.String)
		if err != nil {
			return nil, err
		}
		t.DriverID = &id
	}
	if finalPrice.Valid {
		t.FinalPrice = &finalPrice.Int64
	}
	if cancelledBy.Valid {
		t.CancelledBy = cancelledBy.String
	}
	if cancelReason.Valid {
		t.CancelReason = cancelReason.String
	}
	if cancelledAt.Valid {
		t.CancelledAt = &cancelledAt.Time
	}
	if acceptedAt.Valid {
		t.AcceptedAt = &acceptedAt.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}

	return &t, nil
}
