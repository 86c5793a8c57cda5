package trip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{StatusSearching, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled} {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, Status("PENDING").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusSearching.IsTerminal())
	assert.False(t, StatusAssigned.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
}

func TestVehicleTypeIsValid(t *testing.T) {
	for _, v := range []VehicleType{
		VehicleBike, VehicleBikeEconomy, VehicleCar4Seat, VehicleCar7Seat,
		VehicleCarEconomy, VehicleCarElectric, VehicleCarPremium,
	} {
		assert.True(t, v.IsValid(), string(v))
	}
	assert.False(t, VehicleType("HELICOPTER").IsValid())
}

func TestLifecycleGuards(t *testing.T) {
	tests := []struct {
		status      Status
		canAssign   bool
		canStart    bool
		canComplete bool
		canCancel   bool
		canRate     bool
	}{
		{StatusSearching, true, false, false, true, false},
		{StatusAssigned, false, true, false, true, false},
		{StatusInProgress, false, false, true, false, false},
		{StatusCompleted, false, false, false, false, true},
		{StatusCancelled, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			tr := &Trip{Status: tt.status}
			assert.Equal(t, tt.canAssign, tr.CanAssign())
			assert.Equal(t, tt.canStart, tr.CanStart())
			assert.Equal(t, tt.canComplete, tr.CanComplete())
			assert.Equal(t, tt.canCancel, tr.CanCancel())
			assert.Equal(t, tt.canRate, tr.CanRate())
		})
	}
}
