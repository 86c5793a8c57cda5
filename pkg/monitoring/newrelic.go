package monitoring

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
}

// NewRelicApp wraps the New Relic application
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		// Return disabled app
		return &NewRelicApp{nil, false}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if nr == nil || !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// RecordCustomMetric records a custom metric
func (nr *NewRelicApp) RecordCustomMetric(name string, value float64) {
	if nr == nil || !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.RecordCustomMetric(name, value)
}

// Shutdown gracefully shuts down the New Relic application
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if nr == nil || !nr.enabled || nr.Application == nil {
		return
	}
	nr.Application.Shutdown(timeout)
}

// IsEnabled returns whether New Relic is enabled
func (nr *NewRelicApp) IsEnabled() bool {
	return nr != nil && nr.enabled
}

// GetApplication returns the underlying agent, or nil when disabled
func (nr *NewRelicApp) GetApplication() *newrelic.Application {
	if nr == nil || !nr.enabled {
		return nil
	}
	return nr.Application
}

// Custom metric helpers

// RecordLocationUpdate records a streamed driver location tick
func (nr *NewRelicApp) RecordLocationUpdate() {
	nr.RecordCustomMetric("custom/driver/location_update", 1)
}

// RecordOfferFanout records the size of an offer fan-out for one trip
func (nr *NewRelicApp) RecordOfferFanout(tripID string, candidates int) {
	nr.RecordCustomEvent("TripOfferFanout", map[string]interface{}{
		"trip_id":    tripID,
		"candidates": candidates,
	})
}

// RecordAcceptOutcome records the result of an accept attempt
func (nr *NewRelicApp) RecordAcceptOutcome(outcome string, latencyMs float64) {
	nr.RecordCustomEvent("TripAcceptAttempt", map[string]interface{}{
		"outcome":    outcome,
		"latency_ms": latencyMs,
	})
}

// RecordTripCreated records trip creation
func (nr *NewRelicApp) RecordTripCreated(vehicleType string, estimatedPrice int64) {
	nr.RecordCustomEvent("TripCreated", map[string]interface{}{
		"vehicle_type":    vehicleType,
		"estimated_price": estimatedPrice,
		"timestamp":       time.Now().Unix(),
	})
}

// RecordTripCompleted records trip completion
func (nr *NewRelicApp) RecordTripCompleted(tripID string, finalPrice int64, distanceKm float64) {
	nr.RecordCustomEvent("TripCompleted", map[string]interface{}{
		"trip_id":     tripID,
		"final_price": finalPrice,
		"distance_km": distanceKm,
	})
}
