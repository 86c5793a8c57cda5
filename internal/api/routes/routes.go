package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/se360/ride-dispatch/internal/api/handlers"
)

// SetupTripRoutes configures the trip service API
func SetupTripRoutes(r *gin.Engine, h *handlers.TripHandlers, nrApp *newrelic.Application) {
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	v1 := r.Group("/v1")
	{
		trips := v1.Group("/trips")
		{
			trips.POST("", h.CreateTrip)
			trips.POST("/estimate", h.EstimateFare)
			trips.GET("/:id", h.GetTrip)
			trips.POST("/:id/start", h.StartTrip)
			trips.POST("/:id/complete", h.CompleteTrip)
			trips.POST("/:id/cancel", h.CancelTrip)
			trips.POST("/:id/rating", h.RateTrip)
		}

		v1.GET("/passengers/:id/trips", h.ListPassengerTrips)
		v1.GET("/drivers/:id/trips", h.ListDriverTrips)
	}

	// Service-to-service surface, not exposed through the gateway.
	internal := r.Group("/internal/v1")
	{
		internal.GET("/trips", h.ListTripsByStatus)
		internal.POST("/trips/:id/accept", h.AcceptTrip)
	}
}

// SetupDriverRoutes configures the driver service API
func SetupDriverRoutes(r *gin.Engine, h *handlers.DriverHandlers, sh *handlers.StreamHandler, nrApp *newrelic.Application) {
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":         "healthy",
			"ws_connections": sh.Hub.GetActiveConnections(),
		})
	})

	v1 := r.Group("/v1")
	{
		drivers := v1.Group("/drivers")
		{
			drivers.GET("/stream", sh.HandleStream)
			drivers.GET("/nearby", h.GetNearbyDrivers)
			drivers.GET("/:id/status", h.GetDriverStatus)
			drivers.PUT("/:id/online", h.GoOnline)
			drivers.PUT("/:id/offline", h.GoOffline)
			drivers.PUT("/:id/location", h.UpdateLocation)
			drivers.POST("/:id/accept", h.AcceptTrip)
		}
	}
}
