package pricing

import (
	"testing"

	"github.com/se360/ride-dispatch/internal/domain/trip"
	"github.com/stretchr/testify/assert"
)

// TestEstimateFare_RateTable tests the per-vehicle-type fare table
func TestEstimateFare_RateTable(t *testing.T) {
	tests := []struct {
		name        string
		vehicleType trip.VehicleType
		distanceKm  float64
		isPeakHour  bool
		expected    int64
	}{
		{
			name:        "Car 4 seat 10km off-peak",
			vehicleType: trip.VehicleCar4Seat,
			distanceKm:  10.00,
			expected:    120000, // 10000 + 11000*10
		},
		{
			name:        "Car 7 seat 1.5km off-peak",
			vehicleType: trip.VehicleCar7Seat,
			distanceKm:  1.5,
			expected:    34500, // 15000 + 13000*1.5
		},
		{
			name:        "Car economy 3.33km rounds to nearest hundred",
			vehicleType: trip.VehicleCarEconomy,
			distanceKm:  3.33,
			expected:    39600, // 8000 + 9500*3.33 = 39635
		},
		{
			name:        "Car electric 2km off-peak",
			vehicleType: trip.VehicleCarElectric,
			distanceKm:  2.0,
			expected:    30000, // 9000 + 10500*2
		},
		{
			name:        "Car premium 10km peak",
			vehicleType: trip.VehicleCarPremium,
			distanceKm:  10.0,
			isPeakHour:  true,
			expected:    225000, // (20000 + 16000*10) * 1.25
		},
		{
			name:        "Bike 3km off-peak",
			vehicleType: trip.VehicleBike,
			distanceKm:  3.0,
			expected:    26000, // 5000 + 7000*3
		},
		{
			name:        "Unknown type falls back to default rate",
			vehicleType: trip.VehicleType("RICKSHAW"),
			distanceKm:  2.0,
			expected:    26000, // 8000 + 9000*2
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fare := EstimateFare(tt.distanceKm, tt.vehicleType, tt.isPeakHour)
			assert.Equal(t, tt.expected, fare)
		})
	}
}

// TestEstimateFare_MinimumFare tests the fare floor
func TestEstimateFare_MinimumFare(t *testing.T) {
	// (5000 + 7000*0.5) * 1.25 = 10625 -> floored to the 12000 minimum
	fare := EstimateFare(0.5, trip.VehicleBike, true)
	assert.Equal(t, int64(12000), fare)

	// 4000 + 6000*1.0 = 10000 -> still below minimum
	fare = EstimateFare(1.0, trip.VehicleBikeEconomy, false)
	assert.Equal(t, int64(12000), fare)
}

// TestEstimateFare_HalfUpRounding tests the hundreds boundary
func TestEstimateFare_HalfUpRounding(t *testing.T) {
	// 10000 + 11000*5.05 = 65550, exactly halfway -> rounds up
	fare := EstimateFare(5.05, trip.VehicleCar4Seat, false)
	assert.Equal(t, int64(65600), fare)
}

// TestEstimateFare_ZeroDistance tests base fare against the minimum
func TestEstimateFare_ZeroDistance(t *testing.T) {
	// Base fare alone, below the floor for bikes
	assert.Equal(t, int64(12000), EstimateFare(0, trip.VehicleBike, false))
	// Car premium base fare clears the floor on its own
	assert.Equal(t, int64(20000), EstimateFare(0, trip.VehicleCarPremium, false))
}

// TestDistanceKm_Haversine tests the great-circle distance
func TestDistanceKm_Haversine(t *testing.T) {
	// Same point
	assert.Equal(t, 0.0, DistanceKm(10.762622, 106.660172, 10.762622, 106.660172))

	// 0.1 degree of latitude is about 11.12 km on a 6371 km sphere
	assert.Equal(t, 11.12, DistanceKm(10.0, 106.0, 10.1, 106.0))

	// Symmetric
	d1 := DistanceKm(10.8231, 106.6297, 21.0285, 105.8542)
	d2 := DistanceKm(21.0285, 105.8542, 10.8231, 106.6297)
	assert.Equal(t, d1, d2)

	// Hanoi to Ho Chi Minh City is on the order of 1100 km
	assert.Greater(t, d1, 1000.0)
	assert.Less(t, d1, 1300.0)
}
