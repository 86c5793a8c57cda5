package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/se360/ride-dispatch/internal/api/dto"
	"github.com/se360/ride-dispatch/internal/domain/trip"
	"github.com/se360/ride-dispatch/internal/service/dispatch"
	"github.com/se360/ride-dispatch/internal/service/trips"
	"github.com/se360/ride-dispatch/pkg/logger"
	"github.com/se360/ride-dispatch/pkg/monitoring"
)

// TripHandlers serves the trip lifecycle API
type TripHandlers struct {
	Trips       *trips.Service
	Coordinator *dispatch.Coordinator
	Monitoring  *monitoring.NewRelicApp
	Logger      *logger.Logger
}

// NewTripHandlers creates trip handlers with their dependencies
func NewTripHandlers(svc *trips.Service, coordinator *dispatch.Coordinator, mon *monitoring.NewRelicApp, log *logger.Logger) *TripHandlers {
	return &TripHandlers{
		Trips:       svc,
		Coordinator: coordinator,
		Monitoring:  mon,
		Logger:      log,
	}
}

// CreateTrip handles POST /v1/trips
func (h *TripHandlers) CreateTrip(c *gin.Context) {
	var req dto.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	passengerID, err := uuid.Parse(req.PassengerID)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	created, err := h.Trips.Create(c.Request.Context(), trips.CreateRequest{
		PassengerID:    passengerID,
		PickupLat:      *req.PickupLat,
		PickupLng:      *req.PickupLng,
		PickupAddress:  req.PickupAddress,
		DropoffLat:     *req.DropoffLat,
		DropoffLng:     *req.DropoffLng,
		DropoffAddress: req.DropoffAddress,
		VehicleType:    trip.VehicleType(req.VehicleType),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	h.Monitoring.RecordTripCreated(string(created.VehicleType), created.EstimatedPrice)
	c.JSON(http.StatusCreated, created)
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandlers) GetTrip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	t, err := h.Trips.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// EstimateFare handles POST /v1/trips/estimate
func (h *TripHandlers) EstimateFare(c *gin.Context) {
	var req dto.EstimateFareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	distance, price, err := h.Trips.EstimateFare(
		*req.PickupLat, *req.PickupLng,
		*req.DropoffLat, *req.DropoffLng,
		trip.VehicleType(req.VehicleType),
	)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.EstimateFareResponse{
		DistanceKm:     distance,
		EstimatedPrice: price,
		VehicleType:    req.VehicleType,
		Currency:       "VND",
	})
}

// AcceptTrip handles POST /internal/v1/trips/:id/accept. Called by the
// driver service on behalf of an authenticated driver.
func (h *TripHandlers) AcceptTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	var req dto.AcceptTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.Coordinator.Accept(c.Request.Context(), tripID, driverID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	status := http.StatusOK
	switch result {
	case dispatch.AcceptAlreadyAssigned:
		status = http.StatusConflict
	case dispatch.AcceptTripNotFound:
		status = http.StatusNotFound
	}

	c.JSON(status, dto.AcceptTripResponse{
		Result:   string(result),
		TripID:   tripID.String(),
		DriverID: driverID.String(),
	})
}

// StartTrip handles POST /v1/trips/:id/start
func (h *TripHandlers) StartTrip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	t, err := h.Trips.Start(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// CompleteTrip handles POST /v1/trips/:id/complete
func (h *TripHandlers) CompleteTrip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	t, err := h.Trips.Complete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	if t.FinalPrice != nil {
		h.Monitoring.RecordTripCompleted(t.ID.String(), *t.FinalPrice, t.DistanceKm)
	}
	c.JSON(http.StatusOK, t)
}

// CancelTrip handles POST /v1/trips/:id/cancel
func (h *TripHandlers) CancelTrip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	var req dto.CancelTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	t, err := h.Trips.Cancel(c.Request.Context(), id, req.CancelledBy, req.Reason)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// RateTrip handles POST /v1/trips/:id/rating
func (h *TripHandlers) RateTrip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	var req dto.RateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	rating, err := h.Trips.Rate(c.Request.Context(), id, req.Rating, req.Feedback)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// ListPassengerTrips handles GET /v1/passengers/:id/trips
func (h *TripHandlers) ListPassengerTrips(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	list, err := h.Trips.ListByPassenger(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trips": list})
}

// ListDriverTrips handles GET /v1/drivers/:id/trips
func (h *TripHandlers) ListDriverTrips(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	list, err := h.Trips.ListByDriver(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trips": list})
}

// ListTripsByStatus handles GET /internal/v1/trips?status=SEARCHING
func (h *TripHandlers) ListTripsByStatus(c *gin.Context) {
	status := trip.Status(c.Query("status"))

	list, err := h.Trips.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status, "trips": list})
}
