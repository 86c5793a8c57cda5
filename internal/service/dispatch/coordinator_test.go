package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/se360/ride-dispatch/internal/domain/trip"
	"github.com/se360/ride-dispatch/internal/events"
	"github.com/se360/ride-dispatch/pkg/logger"
)

type fakePresence struct {
	drivers []string
	err     error
}

func (f *fakePresence) SearchWithinRadius(_ context.Context, _, _, _ float64) ([]string, error) {
	return f.drivers, f.err
}

// fakeLock mimics the single-holder semantics of the Redis lock
type fakeLock struct {
	mu       sync.Mutex
	holders  map[string]string
	acquires int
}

func newFakeLock() *fakeLock {
	return &fakeLock{holders: make(map[string]string)}
}

func (f *fakeLock) TryAcquire(_ context.Context, tripID, driverID string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquires++
	if _, held := f.holders[tripID]; held {
		return false, nil
	}
	f.holders[tripID] = driverID
	return true, nil
}

func (f *fakeLock) Release(_ context.Context, tripID, driverID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.holders[tripID] != driverID {
		return false, nil
	}
	delete(f.holders, tripID)
	return true, nil
}

type fakeCache struct {
	mu   sync.Mutex
	puts map[uuid.UUID]uuid.UUID
}

func newFakeCache() *fakeCache {
	return &fakeCache{puts: make(map[uuid.UUID]uuid.UUID)}
}

func (f *fakeCache) Put(_ context.Context, tripID, passengerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts[tripID] = passengerID
	return nil
}

// fakeRepo implements trip.Repository over a map with the same
// conditional-update semantics as the SQL store
type fakeRepo struct {
	mu    sync.Mutex
	trips map[uuid.UUID]*trip.Trip
	reads int
}

func newFakeRepo(trips ...*trip.Trip) *fakeRepo {
	r := &fakeRepo{trips: make(map[uuid.UUID]*trip.Trip)}
	for _, t := range trips {
		r.trips[t.ID] = t
	}
	return r
}

func (f *fakeRepo) Create(_ context.Context, t *trip.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trips[t.ID] = t
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*trip.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	t, ok := f.trips[id]
	if !ok {
		return nil, trip.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeRepo) AssignDriver(_ context.Context, tripID, driverID uuid.UUID, acceptedAt time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trips[tripID]
	if !ok || t.Status != trip.StatusSearching {
		return 0, nil
	}
	t.DriverID = &driverID
	t.Status = trip.StatusAssigned
	t.AcceptedAt = &acceptedAt
	t.Version++
	return 1, nil
}

func (f *fakeRepo) Update(_ context.Context, t *trip.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trips[t.ID] = t
	return nil
}

func (f *fakeRepo) ListByPassenger(_ context.Context, _ uuid.UUID) ([]*trip.Trip, error) {
	return nil, nil
}

func (f *fakeRepo) ListByDriver(_ context.Context, _ uuid.UUID) ([]*trip.Trip, error) {
	return nil, nil
}

func (f *fakeRepo) ListByStatus(_ context.Context, _ trip.Status) ([]*trip.Trip, error) {
	return nil, nil
}

func (f *fakeRepo) CreateRating(_ context.Context, _ *trip.Rating) error {
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) published() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.Event, len(f.events))
	copy(out, f.events)
	return out
}

func newTestLogger() *logger.Logger {
	log, _ := logger.New(logger.Config{Level: "error", Format: "console"})
	return log
}

func newTestCoordinator(lock AssignmentLock, repo trip.Repository, pub events.Publisher) *Coordinator {
	return NewCoordinator(lock, repo, pub, nil, newTestLogger(), 0)
}

func newTestDispatcher(presence PresenceIndex, cache PassengerCache, pub events.Publisher) *Dispatcher {
	return NewDispatcher(presence, cache, pub, nil, newTestLogger(), 0)
}

func searchingTrip() *trip.Trip {
	return &trip.Trip{
		ID:          uuid.New(),
		PassengerID: uuid.New(),
		PickupLat:   21.0285,
		PickupLng:   105.8542,
		VehicleType: trip.VehicleCar4Seat,
		Status:      trip.StatusSearching,
	}
}

func TestHandleTripRequested_OffersToEachCandidate(t *testing.T) {
	drivers := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	presence := &fakePresence{drivers: drivers}
	cache := newFakeCache()
	pub := &fakePublisher{}
	disp := newTestDispatcher(presence, cache, pub)

	ev := events.TripRequested{
		TripID:      uuid.New(),
		PassengerID: uuid.New(),
		PickupLat:   21.0285,
		PickupLng:   105.8542,
		VehicleType: "CAR_4_SEAT",
	}

	err := disp.HandleTripRequested(context.Background(), ev)
	require.NoError(t, err)

	published := pub.published()
	require.Len(t, published, 3)
	seen := make(map[string]bool)
	for _, e := range published {
		offer, ok := e.(events.TripOffered)
		require.True(t, ok)
		assert.Equal(t, ev.TripID, offer.TripID)
		seen[offer.DriverID.String()] = true
	}
	for _, d := range drivers {
		assert.True(t, seen[d], "driver %s should have received an offer", d)
	}

	assert.Equal(t, ev.PassengerID, cache.puts[ev.TripID])
}

func TestHandleTripRequested_NoCandidates(t *testing.T) {
	presence := &fakePresence{drivers: nil}
	pub := &fakePublisher{}
	disp := newTestDispatcher(presence, newFakeCache(), pub)

	err := disp.HandleTripRequested(context.Background(), events.TripRequested{
		TripID:      uuid.New(),
		PassengerID: uuid.New(),
	})

	require.NoError(t, err)
	assert.Empty(t, pub.published())
}

func TestHandleTripRequested_SkipsMalformedDriverIDs(t *testing.T) {
	valid := uuid.NewString()
	presence := &fakePresence{drivers: []string{"not-a-uuid", valid}}
	pub := &fakePublisher{}
	disp := newTestDispatcher(presence, newFakeCache(), pub)

	err := disp.HandleTripRequested(context.Background(), events.TripRequested{
		TripID:      uuid.New(),
		PassengerID: uuid.New(),
	})

	require.NoError(t, err)
	published := pub.published()
	require.Len(t, published, 1)
	assert.Equal(t, valid, published[0].(events.TripOffered).DriverID.String())
}

func TestAccept_Success(t *testing.T) {
	tr := searchingTrip()
	repo := newFakeRepo(tr)
	pub := &fakePublisher{}
	coord := newTestCoordinator(newFakeLock(), repo, pub)

	driverID := uuid.New()
	result, err := coord.Accept(context.Background(), tr.ID, driverID)

	require.NoError(t, err)
	assert.Equal(t, AcceptSuccess, result)

	stored, err := repo.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusAssigned, stored.Status)
	require.NotNil(t, stored.DriverID)
	assert.Equal(t, driverID, *stored.DriverID)

	published := pub.published()
	require.Len(t, published, 1)
	assigned, ok := published[0].(events.TripAssigned)
	require.True(t, ok)
	assert.Equal(t, tr.ID, assigned.TripID)
	assert.Equal(t, driverID, assigned.DriverID)
}

func TestAccept_TripNotFound(t *testing.T) {
	coord := newTestCoordinator(newFakeLock(), newFakeRepo(), &fakePublisher{})

	result, err := coord.Accept(context.Background(), uuid.New(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, AcceptTripNotFound, result)
}

func TestAccept_StaleOffer(t *testing.T) {
	tr := searchingTrip()
	winner := uuid.New()
	tr.Status = trip.StatusAssigned
	tr.DriverID = &winner

	repo := newFakeRepo(tr)
	pub := &fakePublisher{}
	coord := newTestCoordinator(newFakeLock(), repo, pub)

	result, err := coord.Accept(context.Background(), tr.ID, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, AcceptAlreadyAssigned, result)
	assert.Empty(t, pub.published())

	stored, err := repo.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, *stored.DriverID)
}

func TestAccept_LockContention_SkipsLedgerRead(t *testing.T) {
	tr := searchingTrip()
	repo := newFakeRepo(tr)
	lock := newFakeLock()

	// Another candidate already holds the lock for this trip.
	held, err := lock.TryAcquire(context.Background(), tr.ID.String(), uuid.NewString(), time.Second)
	require.NoError(t, err)
	require.True(t, held)

	coord := newTestCoordinator(lock, repo, &fakePublisher{})

	result, err := coord.Accept(context.Background(), tr.ID, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, AcceptAlreadyAssigned, result)
	assert.Zero(t, repo.reads, "a contended accept must not touch the ledger")
}

func TestAccept_ConcurrentDrivers_ExactlyOneWinner(t *testing.T) {
	tr := searchingTrip()
	repo := newFakeRepo(tr)
	pub := &fakePublisher{}
	coord := newTestCoordinator(newFakeLock(), repo, pub)

	const drivers = 16
	results := make([]AcceptResult, drivers)
	errs := make([]error, drivers)
	var wg sync.WaitGroup
	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = coord.Accept(context.Background(), tr.ID, uuid.New())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "driver %d", i)
	}

	wins := 0
	for _, r := range results {
		if r == AcceptSuccess {
			wins++
		} else {
			assert.Equal(t, AcceptAlreadyAssigned, r)
		}
	}
	assert.Equal(t, 1, wins, "exactly one driver must win the trip")

	assigned := 0
	for _, e := range pub.published() {
		if _, ok := e.(events.TripAssigned); ok {
			assigned++
		}
	}
	assert.Equal(t, 1, assigned, "exactly one assignment event must be published")
}

func TestAccept_PublishFailureDoesNotRevertAssignment(t *testing.T) {
	tr := searchingTrip()
	repo := newFakeRepo(tr)
	pub := &fakePublisher{err: assert.AnError}
	coord := newTestCoordinator(newFakeLock(), repo, pub)

	driverID := uuid.New()
	result, err := coord.Accept(context.Background(), tr.ID, driverID)

	require.NoError(t, err)
	assert.Equal(t, AcceptSuccess, result)

	stored, err := repo.GetByID(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusAssigned, stored.Status)
	assert.Equal(t, driverID, *stored.DriverID)
}
