package stream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/se360/ride-dispatch/internal/events"
	"github.com/se360/ride-dispatch/pkg/logger"
)

type positionWrite struct {
	driverID string
	lat      float64
	lng      float64
}

type fakePresence struct {
	online    []string
	offline   []string
	positions []positionWrite
	metas     int
	err       error
}

func (f *fakePresence) SetOnline(_ context.Context, driverID string) error {
	if f.err != nil {
		return f.err
	}
	f.online = append(f.online, driverID)
	return nil
}

func (f *fakePresence) SetOffline(_ context.Context, driverID string) error {
	f.offline = append(f.offline, driverID)
	return nil
}

func (f *fakePresence) UpdatePosition(_ context.Context, driverID string, lat, lng float64) error {
	if f.err != nil {
		return f.err
	}
	f.positions = append(f.positions, positionWrite{driverID, lat, lng})
	return nil
}

func (f *fakePresence) RecordMeta(_ context.Context, _ string, _, _ *float64, _ time.Time) error {
	f.metas++
	return nil
}

type fakePublisher struct {
	events []events.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev events.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func newTestSession(presence *fakePresence, pub *fakePublisher) *Session {
	log, _ := logger.New(logger.Config{Level: "error", Format: "console"})
	return NewSession(uuid.New(), presence, pub, nil, log)
}

func locationFrame(t *testing.T, driverID string, lat, lng float64) []byte {
	t.Helper()
	data, err := json.Marshal(InboundMessage{
		Type:      MessageTypeLocation,
		DriverID:  driverID,
		Latitude:  lat,
		Longitude: lng,
	})
	require.NoError(t, err)
	return data
}

func TestSession_OpenClose(t *testing.T) {
	presence := &fakePresence{}
	session := newTestSession(presence, &fakePublisher{})

	require.NoError(t, session.Open(context.Background()))
	session.Close(context.Background())

	assert.Equal(t, []string{session.DriverID.String()}, presence.online)
	assert.Equal(t, []string{session.DriverID.String()}, presence.offline)
}

func TestSession_LocationTick(t *testing.T) {
	presence := &fakePresence{}
	pub := &fakePublisher{}
	session := newTestSession(presence, pub)

	frame := locationFrame(t, session.DriverID.String(), 21.0285, 105.8542)
	err := session.HandleMessage(context.Background(), frame)
	require.NoError(t, err)

	require.Len(t, presence.positions, 1)
	assert.Equal(t, session.DriverID.String(), presence.positions[0].driverID)
	assert.Equal(t, 21.0285, presence.positions[0].lat)
	assert.Equal(t, 105.8542, presence.positions[0].lng)
	assert.Equal(t, 1, presence.metas)

	require.Len(t, pub.events, 1)
	loc, ok := pub.events[0].(events.DriverLocationUpdated)
	require.True(t, ok)
	assert.Equal(t, session.DriverID, loc.DriverID)
}

func TestSession_IdentityMismatchClosesWithoutWriting(t *testing.T) {
	presence := &fakePresence{}
	pub := &fakePublisher{}
	session := newTestSession(presence, pub)

	frame := locationFrame(t, uuid.NewString(), 21.0285, 105.8542)
	err := session.HandleMessage(context.Background(), frame)

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)

	assert.Empty(t, presence.positions, "a mismatched tick must not reach the index")
	assert.Empty(t, pub.events)
}

func TestSession_MalformedFrameCloses(t *testing.T) {
	presence := &fakePresence{}
	session := newTestSession(presence, &fakePublisher{})

	err := session.HandleMessage(context.Background(), []byte("{not json"))

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseUnsupportedData, closeErr.Code)
	assert.Empty(t, presence.positions)
}

func TestSession_UnknownTypeCloses(t *testing.T) {
	session := newTestSession(&fakePresence{}, &fakePublisher{})

	data, err := json.Marshal(InboundMessage{Type: "teleport"})
	require.NoError(t, err)

	handleErr := session.HandleMessage(context.Background(), data)
	var closeErr *websocket.CloseError
	require.ErrorAs(t, handleErr, &closeErr)
	assert.Equal(t, websocket.CloseUnsupportedData, closeErr.Code)
}

func TestSession_InvalidCoordinatesClose(t *testing.T) {
	presence := &fakePresence{}
	session := newTestSession(presence, &fakePublisher{})

	frame := locationFrame(t, session.DriverID.String(), 95.0, 105.8542)
	err := session.HandleMessage(context.Background(), frame)

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseUnsupportedData, closeErr.Code)
	assert.Empty(t, presence.positions)
}

func TestSession_PingKeepsConnectionOpen(t *testing.T) {
	session := newTestSession(&fakePresence{}, &fakePublisher{})

	data, err := json.Marshal(InboundMessage{Type: MessageTypePing})
	require.NoError(t, err)
	assert.NoError(t, session.HandleMessage(context.Background(), data))
}

func TestSession_PublishFailureKeepsStreamAlive(t *testing.T) {
	presence := &fakePresence{}
	pub := &fakePublisher{err: errors.New("broker down")}
	session := newTestSession(presence, pub)

	frame := locationFrame(t, session.DriverID.String(), 21.0285, 105.8542)
	err := session.HandleMessage(context.Background(), frame)

	require.NoError(t, err, "a broker outage must not drop the stream")
	assert.Len(t, presence.positions, 1, "the index write still happens")
}

func TestSession_IndexErrorDropsTickKeepsStream(t *testing.T) {
	presence := &fakePresence{err: errors.New("redis down")}
	pub := &fakePublisher{}
	session := newTestSession(presence, pub)

	frame := locationFrame(t, session.DriverID.String(), 21.0285, 105.8542)
	err := session.HandleMessage(context.Background(), frame)

	require.NoError(t, err)
	assert.Empty(t, pub.events, "no event without an index write")
}
