package trip

import "errors"

var (
	ErrNotFound           = errors.New("trip not found")
	ErrInvalidTransition  = errors.New("invalid trip status transition")
	ErrAlreadyAssigned    = errors.New("trip already assigned")
	ErrInvalidVehicleType = errors.New("invalid vehicle type")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrNotRateable        = errors.New("trip must be completed before rating")
)
