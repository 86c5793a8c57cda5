package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTripRequestAcceptsZeroCoordinates(t *testing.T) {
	body := []byte(`{
		"passenger_id": "` + uuid.NewString() + `",
		"pickup_lat": 0,
		"pickup_lng": 0,
		"dropoff_lat": 21.0150,
		"dropoff_lng": 105.8000,
		"vehicle_type": "CAR_4_SEAT"
	}`)

	var req CreateTripRequest
	require.NoError(t, binding.JSON.BindBody(body, &req))
	require.NotNil(t, req.PickupLat)
	assert.Equal(t, 0.0, *req.PickupLat)
	assert.Equal(t, 0.0, *req.PickupLng)
}

func TestCreateTripRequestRejectsMissingCoordinate(t *testing.T) {
	body := []byte(`{
		"passenger_id": "` + uuid.NewString() + `",
		"pickup_lat": 21.0285,
		"dropoff_lat": 21.0150,
		"dropoff_lng": 105.8000,
		"vehicle_type": "CAR_4_SEAT"
	}`)

	var req CreateTripRequest
	assert.Error(t, binding.JSON.BindBody(body, &req))
}

func TestEstimateFareRequestAcceptsZeroCoordinates(t *testing.T) {
	body := []byte(`{
		"pickup_lat": 0,
		"pickup_lng": 105.8542,
		"dropoff_lat": 0,
		"dropoff_lng": 105.8000,
		"vehicle_type": "BIKE"
	}`)

	var req EstimateFareRequest
	require.NoError(t, binding.JSON.BindBody(body, &req))
	assert.Equal(t, 0.0, *req.PickupLat)
}
