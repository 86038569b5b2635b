package booking

import "github.com/google/uuid"

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusReserved  Status = "reserved"
	StatusPickedUp  Status = "picked_up"
	StatusReturned  Status = "returned"
	StatusComplete  Status = "complete"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition may leave the status.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusCancelled
}

// Reservation claims exclusive use of a vehicle for [StartTime, StopTime].
// Times are unix seconds, money is cents. Records are owned by the Ledger;
// everything handed out of the engine is a copy.
type Reservation struct {
	ID                uint64    `json:"id"`
	VehicleID         uuid.UUID `json:"vehicle_id"`
	RenterID          uuid.UUID `json:"renter_id"`
	StartTime         int64     `json:"start_time"`
	StopTime          int64     `json:"stop_time"`
	RentPriceCents    int64     `json:"rent_price_cents"`
	CollateralCents   int64     `json:"collateral_cents"`
	FeeCollected      bool      `json:"fee_collected"`
	CollateralClaimed bool      `json:"collateral_claimed"`
	Status            Status    `json:"status"`
}

// EscrowedCents is the total currently held for the reservation before
// settlement releases either side.
func (r *Reservation) EscrowedCents() int64 {
	var held int64
	if !r.FeeCollected {
		held += r.RentPriceCents
	}
	if !r.CollateralClaimed {
		held += r.CollateralCents
	}
	return held
}
