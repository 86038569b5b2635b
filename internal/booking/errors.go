package booking

import "errors"

var (
	ErrInvalidInterval     = errors.New("Stop time must be after start time")
	ErrDurationExceeded    = errors.New("Rental duration exceeds the maximum for this vehicle")
	ErrVehicleUnavailable  = errors.New("Vehicle is not available for the requested period")
	ErrVehicleNotFound     = errors.New("Vehicle not found")
	ErrReservationNotFound = errors.New("Reservation not found")
	ErrPastDated           = errors.New("Reservation cannot start in the past")
	ErrInsufficientPayment = errors.New("Payment does not cover rent plus minimum collateral")
	ErrLateFeeUnpaid       = errors.New("Late fee is not covered by collateral and supplied payment")
	ErrInvalidState        = errors.New("Reservation is not in the required state")
	ErrOutsideWindow       = errors.New("Pickup attempted outside the reserved window")
	ErrNotAuthorized       = errors.New("Caller is not permitted to perform this action")
	ErrAlreadyProcessed    = errors.New("Funds for this reservation were already released")
	ErrIndexOutOfBounds    = errors.New("Reservation rank is out of bounds")
)
