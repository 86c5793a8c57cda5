package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/se360/ride-dispatch/internal/events"
	"github.com/se360/ride-dispatch/pkg/logger"
	"github.com/se360/ride-dispatch/pkg/monitoring"
)

// Message types accepted on a driver connection.
const (
	MessageTypeLocation = "location_update"
	MessageTypePing     = "ping"
)

// Presence is the slice of the presence index a session mutates
type Presence interface {
	SetOnline(ctx context.Context, driverID string) error
	SetOffline(ctx context.Context, driverID string) error
	UpdatePosition(ctx context.Context, driverID string, lat, lng float64) error
	RecordMeta(ctx context.Context, driverID string, heading, speed *float64, updatedAt time.Time) error
}

// InboundMessage is one frame sent by the driver app
type InboundMessage struct {
	Type      string   `json:"type"`
	DriverID  string   `json:"driver_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Heading   *float64 `json:"heading,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
}

// Session is the server side of one driver's location stream. The
// connection is already authenticated; DriverID is the verified
// identity, and every inbound tick must match it.
type Session struct {
	DriverID   uuid.UUID
	presence   Presence
	publisher  events.Publisher
	monitoring *monitoring.NewRelicApp
	logger     *logger.Logger
}

// NewSession creates a session for an authenticated driver connection
func NewSession(driverID uuid.UUID, presence Presence, publisher events.Publisher, monitoring *monitoring.NewRelicApp, logger *logger.Logger) *Session {
	return &Session{
		DriverID:   driverID,
		presence:   presence,
		publisher:  publisher,
		monitoring: monitoring,
		logger:     logger,
	}
}

// Open marks the driver ONLINE. Called once, before any tick is read.
func (s *Session) Open(ctx context.Context) error {
	if err := s.presence.SetOnline(ctx, s.DriverID.String()); err != nil {
		return err
	}
	s.logger.Info("Driver session opened",
		logger.String("driver_id", s.DriverID.String()),
	)
	return nil
}

// Close marks the driver OFFLINE. The driver's last position stays in
// the geo set but radius queries no longer return it.
func (s *Session) Close(ctx context.Context) {
	if err := s.presence.SetOffline(ctx, s.DriverID.String()); err != nil {
		s.logger.Error("Failed to mark driver offline",
			logger.String("driver_id", s.DriverID.String()),
			logger.Err(err),
		)
	}
	s.logger.Info("Driver session closed",
		logger.String("driver_id", s.DriverID.String()),
	)
}

// HandleMessage processes one inbound frame. A returned
// *websocket.CloseError means the connection must be closed with that
// code; nothing is written to the presence index on any error path.
func (s *Session) HandleMessage(ctx context.Context, data []byte) error {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Warn("Malformed frame on driver stream",
			logger.String("driver_id", s.DriverID.String()),
			logger.Err(err),
		)
		return &websocket.CloseError{Code: websocket.CloseUnsupportedData, Text: "malformed message"}
	}

	switch msg.Type {
	case MessageTypeLocation:
		return s.handleLocation(ctx, msg)
	case MessageTypePing:
		return nil
	default:
		s.logger.Warn("Unknown message type on driver stream",
			logger.String("driver_id", s.DriverID.String()),
			logger.String("type", msg.Type),
		)
		return &websocket.CloseError{Code: websocket.CloseUnsupportedData, Text: "unknown message type"}
	}
}

func (s *Session) handleLocation(ctx context.Context, msg InboundMessage) error {
	if msg.DriverID != s.DriverID.String() {
		s.logger.Warn("Driver ID mismatch on location stream",
			logger.String("authenticated", s.DriverID.String()),
			logger.String("claimed", msg.DriverID),
		)
		return &websocket.CloseError{Code: websocket.ClosePolicyViolation, Text: "driver identity mismatch"}
	}

	if msg.Latitude < -90 || msg.Latitude > 90 || msg.Longitude < -180 || msg.Longitude > 180 {
		return &websocket.CloseError{Code: websocket.CloseUnsupportedData, Text: "invalid coordinates"}
	}

	now := time.Now().UTC()
	if err := s.presence.UpdatePosition(ctx, s.DriverID.String(), msg.Latitude, msg.Longitude); err != nil {
		s.logger.Error("Failed to update driver position",
			logger.String("driver_id", s.DriverID.String()),
			logger.Err(err),
		)
		return nil
	}
	if err := s.presence.RecordMeta(ctx, s.DriverID.String(), msg.Heading, msg.Speed, now); err != nil {
		s.logger.Warn("Failed to record driver telemetry",
			logger.String("driver_id", s.DriverID.String()),
			logger.Err(err),
		)
	}

	s.monitoring.RecordLocationUpdate()

	// The index write is authoritative; the event is best effort.
	event := events.DriverLocationUpdated{
		DriverID:  s.DriverID,
		Latitude:  msg.Latitude,
		Longitude: msg.Longitude,
		Heading:   msg.Heading,
		Speed:     msg.Speed,
		UpdatedAt: now,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish location event",
			logger.String("driver_id", s.DriverID.String()),
			logger.Err(err),
		)
	}

	return nil
}
