package dispatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/se360/ride-dispatch/internal/events"
	"github.com/se360/ride-dispatch/pkg/websocket"
)

type fakePusher struct {
	connected map[string]bool
	pushed    []websocket.Message
}

func (p *fakePusher) SendToDriver(driverID string, message websocket.Message) bool {
	p.pushed = append(p.pushed, message)
	return p.connected[driverID]
}

func TestNotifierPushesOffer(t *testing.T) {
	driverID := uuid.New()
	pusher := &fakePusher{connected: map[string]bool{driverID.String(): true}}
	n := NewNotifier(pusher, newTestLogger())

	body, err := json.Marshal(events.TripOffered{
		TripID:    uuid.New(),
		DriverID:  driverID,
		OfferedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, n.HandleEvent(context.Background(), events.RouteTripOffered, body))
	require.Len(t, pusher.pushed, 1)
	assert.Equal(t, "trip_offer", pusher.pushed[0].Type)
}

func TestNotifierPushesAssignment(t *testing.T) {
	driverID := uuid.New()
	pusher := &fakePusher{connected: map[string]bool{driverID.String(): true}}
	n := NewNotifier(pusher, newTestLogger())

	body, err := json.Marshal(events.TripAssigned{
		TripID:     uuid.New(),
		DriverID:   driverID,
		AssignedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, n.HandleEvent(context.Background(), events.RouteTripAssigned, body))
	require.Len(t, pusher.pushed, 1)
	assert.Equal(t, "trip_assigned", pusher.pushed[0].Type)
}

func TestNotifierPushesStatusTransitions(t *testing.T) {
	driverID := uuid.New()
	pusher := &fakePusher{connected: map[string]bool{driverID.String(): true}}
	n := NewNotifier(pusher, newTestLogger())

	started, err := json.Marshal(events.TripStarted{TripID: uuid.New(), DriverID: driverID})
	require.NoError(t, err)
	completed, err := json.Marshal(events.TripCompleted{TripID: uuid.New(), DriverID: driverID, FinalPrice: 45000})
	require.NoError(t, err)
	cancelled, err := json.Marshal(events.TripCancelled{TripID: uuid.New(), DriverID: &driverID, CancelledBy: "PASSENGER"})
	require.NoError(t, err)

	require.NoError(t, n.HandleEvent(context.Background(), events.RouteTripStarted, started))
	require.NoError(t, n.HandleEvent(context.Background(), events.RouteTripCompleted, completed))
	require.NoError(t, n.HandleEvent(context.Background(), events.RouteTripCancelled, cancelled))

	require.Len(t, pusher.pushed, 3)
	assert.Equal(t, "trip_started", pusher.pushed[0].Type)
	assert.Equal(t, "trip_completed", pusher.pushed[1].Type)
	assert.Equal(t, "trip_cancelled", pusher.pushed[2].Type)
}

func TestNotifierCancelledBeforeAssignmentHasNoDriverPush(t *testing.T) {
	pusher := &fakePusher{}
	n := NewNotifier(pusher, newTestLogger())

	body, err := json.Marshal(events.TripCancelled{TripID: uuid.New(), CancelledBy: "PASSENGER"})
	require.NoError(t, err)

	require.NoError(t, n.HandleEvent(context.Background(), events.RouteTripCancelled, body))
	assert.Empty(t, pusher.pushed)
}

func TestNotifierOfflineDriverIsNotAnError(t *testing.T) {
	pusher := &fakePusher{connected: map[string]bool{}}
	n := NewNotifier(pusher, newTestLogger())

	body, err := json.Marshal(events.TripOffered{TripID: uuid.New(), DriverID: uuid.New()})
	require.NoError(t, err)

	assert.NoError(t, n.HandleEvent(context.Background(), events.RouteTripOffered, body))
}

func TestNotifierMalformedBodyIsRejected(t *testing.T) {
	pusher := &fakePusher{}
	n := NewNotifier(pusher, newTestLogger())

	err := n.HandleEvent(context.Background(), events.RouteTripOffered, []byte("{not json"))
	assert.Error(t, err)
	assert.Empty(t, pusher.pushed)
}

func TestNotifierIgnoresUnexpectedRoutingKey(t *testing.T) {
	pusher := &fakePusher{}
	n := NewNotifier(pusher, newTestLogger())

	assert.NoError(t, n.HandleEvent(context.Background(), events.RouteDriverLocationUpdated, []byte(`{}`)))
	assert.Empty(t, pusher.pushed)
}
