package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/se360/ride-dispatch/internal/api/dto"
	"github.com/se360/ride-dispatch/internal/client"
	"github.com/se360/ride-dispatch/internal/events"
	"github.com/se360/ride-dispatch/internal/presence"
	"github.com/se360/ride-dispatch/internal/tripcache"
	apperrors "github.com/se360/ride-dispatch/pkg/errors"
	"github.com/se360/ride-dispatch/pkg/logger"
)

// DriverPresence is the slice of the presence index the HTTP surface
// needs
type DriverPresence interface {
	SetOnline(ctx context.Context, driverID string) error
	SetOffline(ctx context.Context, driverID string) error
	UpdatePosition(ctx context.Context, driverID string, lat, lng float64) error
	RecordMeta(ctx context.Context, driverID string, heading, speed *float64, updatedAt time.Time) error
	IsOnline(ctx context.Context, driverID string) (bool, error)
	SearchWithinRadius(ctx context.Context, lat, lng, radiusKm float64) ([]string, error)
}

// DriverHandlers serves the driver-facing API: presence transitions,
// single-shot location updates, presence queries, and accept forwarding
type DriverHandlers struct {
	Presence   DriverPresence
	Trips      *client.TripService
	Passengers *tripcache.PassengerCache
	Publisher  events.Publisher
	Logger     *logger.Logger
}

// NewDriverHandlers creates driver handlers with their dependencies
func NewDriverHandlers(idx DriverPresence, trips *client.TripService, passengers *tripcache.PassengerCache, publisher events.Publisher, log *logger.Logger) *DriverHandlers {
	return &DriverHandlers{
		Presence:   idx,
		Trips:      trips,
		Passengers: passengers,
		Publisher:  publisher,
		Logger:     log,
	}
}

// GoOnline handles PUT /v1/drivers/:id/online
func (h *DriverHandlers) GoOnline(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.Presence.SetOnline(c.Request.Context(), driverID.String()); err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"driver_id": driverID.String(),
		"status":    presence.StatusOnline,
	})
}

// GoOffline handles PUT /v1/drivers/:id/offline
func (h *DriverHandlers) GoOffline(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.Presence.SetOffline(c.Request.Context(), driverID.String()); err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"driver_id": driverID.String(),
		"status":    presence.StatusOffline,
	})
}

// UpdateLocation handles PUT /v1/drivers/:id/location. Same pipeline
// as a stream tick: the index write is authoritative, meta and the
// event publish are best-effort.
func (h *DriverHandlers) UpdateLocation(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	var req dto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	lat, lng := *req.Latitude, *req.Longitude
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		respondError(c, h.Logger, apperrors.ErrInvalidCoordinates)
		return
	}

	ctx := c.Request.Context()
	if err := h.Presence.UpdatePosition(ctx, driverID.String(), lat, lng); err != nil {
		respondError(c, h.Logger, err)
		return
	}

	now := time.Now().UTC()
	if err := h.Presence.RecordMeta(ctx, driverID.String(), req.Heading, req.Speed, now); err != nil {
		h.Logger.Warn("Failed to record driver meta",
			logger.String("driver_id", driverID.String()),
			logger.Err(err),
		)
	}

	if err := h.Publisher.Publish(ctx, events.DriverLocationUpdated{
		DriverID:  driverID,
		Latitude:  lat,
		Longitude: lng,
		Heading:   req.Heading,
		Speed:     req.Speed,
		UpdatedAt: now,
	}); err != nil {
		h.Logger.Warn("Failed to publish location update",
			logger.String("driver_id", driverID.String()),
			logger.Err(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{
		"driver_id":  driverID.String(),
		"latitude":   lat,
		"longitude":  lng,
		"updated_at": now,
	})
}

// AcceptTrip handles POST /v1/drivers/:id/accept. Forwards the accept
// to the trip service, which arbitrates the assignment.
func (h *DriverHandlers) AcceptTrip(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	var req struct {
		TripID string `json:"trip_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	tripID, err := uuid.Parse(req.TripID)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.Trips.Accept(c.Request.Context(), tripID, driverID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	status := http.StatusOK
	switch result {
	case "ALREADY_ASSIGNED":
		status = http.StatusConflict
	case "TRIP_NOT_FOUND":
		status = http.StatusNotFound
	}

	resp := dto.AcceptTripResponse{
		Result:   result,
		TripID:   tripID.String(),
		DriverID: driverID.String(),
	}
	if result == "SUCCESS" {
		// Cache miss is fine; the driver app falls back to the trip
		// service for passenger details.
		if passengerID, ok, err := h.Passengers.Get(c.Request.Context(), tripID); err == nil && ok {
			resp.PassengerID = passengerID.String()
		}
	}
	c.JSON(status, resp)
}

// GetDriverStatus handles GET /v1/drivers/:id/status
func (h *DriverHandlers) GetDriverStatus(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	online, err := h.Presence.IsOnline(c.Request.Context(), driverID.String())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	status := presence.StatusOffline
	if online {
		status = presence.StatusOnline
	}
	c.JSON(http.StatusOK, gin.H{
		"driver_id": driverID.String(),
		"status":    status,
	})
}

// GetNearbyDrivers handles GET /v1/drivers/nearby
func (h *DriverHandlers) GetNearbyDrivers(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	radiusKm := 3.0
	if raw := c.Query("radius_km"); raw != "" {
		if radiusKm, err = strconv.ParseFloat(raw, 64); err != nil {
			respondBadRequest(c, err)
			return
		}
	}

	drivers, err := h.Presence.SearchWithinRadius(c.Request.Context(), lat, lng, radiusKm)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"drivers":   drivers,
		"radius_km": radiusKm,
	})
}
