package pricing

import (
	"math"

	"github.com/se360/ride-dispatch/internal/domain/trip"
)

// Fare rates per vehicle type. Prices are in the smallest currency
// unit; unknown vehicle types fall back to the default rate.
type rate struct {
	baseFare int64
	perKm    int64
}

var rates = map[trip.VehicleType]rate{
	trip.VehicleBike:        {baseFare: 5000, perKm: 7000},
	trip.VehicleBikeEconomy: {baseFare: 4000, perKm: 6000},
	trip.VehicleCar4Seat:    {baseFare: 10000, perKm: 11000},
	trip.VehicleCar7Seat:    {baseFare: 15000, perKm: 13000},
	trip.VehicleCarEconomy:  {baseFare: 8000, perKm: 9500},
	trip.VehicleCarElectric: {baseFare: 9000, perKm: 10500},
	trip.VehicleCarPremium:  {baseFare: 20000, perKm: 16000},
}

var defaultRate = rate{baseFare: 8000, perKm: 9000}

const (
	peakMultiplier = 1.25
	minimumFare    = 12000
)

// EstimateFare computes the deterministic fare for a distance and
// vehicle type: base + per-km rate, ×1.25 during peak hours, floored at
// the minimum fare, rounded half-up to the nearest hundred.
func EstimateFare(distanceKm float64, vehicleType trip.VehicleType, isPeakHour bool) int64 {
	r, ok := rates[vehicleType]
	if !ok {
		r = defaultRate
	}

	fare := float64(r.baseFare) + float64(r.perKm)*distanceKm

	if isPeakHour {
		fare *= peakMultiplier
	}

	if fare < minimumFare {
		fare = minimumFare
	}

	return roundToHundred(fare)
}

// roundToHundred rounds half-up to the nearest hundred
func roundToHundred(v float64) int64 {
	return int64(math.Floor(v/100+0.5)) * 100
}
