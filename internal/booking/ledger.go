package booking

import "github.com/google/uuid"

// Ledger owns all reservation records and enforces the lifecycle state
// machine. Ids increase monotonically and are never reused. Callers identify
// who they are; the Ledger only checks states, the engine checks identities.
type Ledger struct {
	nextID  uint64
	records map[uint64]*Reservation
}

func NewLedger() *Ledger {
	return &Ledger{nextID: 1, records: make(map[uint64]*Reservation)}
}

// Create allocates the next id and stores a Reserved record.
func (l *Ledger) Create(vehicleID, renterID uuid.UUID, start, stop, rentCents, collateralCents int64) *Reservation {
	r := &Reservation{
		ID:              l.nextID,
		VehicleID:       vehicleID,
		RenterID:        renterID,
		StartTime:       start,
		StopTime:        stop,
		RentPriceCents:  rentCents,
		CollateralCents: collateralCents,
		Status:          StatusReserved,
	}
	l.records[r.ID] = r
	l.nextID++
	return r
}

// Get returns the live record for id.
func (l *Ledger) Get(id uint64) (*Reservation, error) {
	r, ok := l.records[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	return r, nil
}

// Transition moves a reservation from the expected status to next. A record
// whose current status differs from expect fails with ErrInvalidState, which
// also makes Complete and Cancelled unreachable sources: no transition ever
// names a terminal status as its expectation.
func (l *Ledger) Transition(id uint64, expect, next Status) (*Reservation, error) {
	r, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	if expect.Terminal() || r.Status != expect {
		return nil, ErrInvalidState
	}
	r.Status = next
	return r, nil
}

// ApplyLateCharge moves extraCents from collateral into rent, after first
// adding topUpCents of freshly escrowed funds to the collateral pot. The
// caller has already verified coverage; going negative here is a bug.
func (l *Ledger) ApplyLateCharge(id uint64, extraCents, topUpCents int64) (*Reservation, error) {
	r, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPickedUp {
		return nil, ErrInvalidState
	}
	r.CollateralCents += topUpCents - extraCents
	r.RentPriceCents += extraCents
	return r, nil
}

// CloseAt rewrites the stop time of a completed reservation to the
// acknowledgement instant, so the interval the index still holds reflects
// actual occupancy rather than the originally booked stop.
func (l *Ledger) CloseAt(id uint64, ts int64) (*Reservation, error) {
	r, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusComplete {
		return nil, ErrInvalidState
	}
	r.StopTime = ts
	return r, nil
}

// MarkFeeCollected flips the rent-released flag. Monotonic: once set it is
// never cleared, and a second call reports ErrAlreadyProcessed.
func (l *Ledger) MarkFeeCollected(id uint64) (*Reservation, error) {
	r, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	if r.FeeCollected {
		return nil, ErrAlreadyProcessed
	}
	r.FeeCollected = true
	return r, nil
}

// MarkCollateralClaimed flips the collateral-released flag, same contract as
// MarkFeeCollected.
func (l *Ledger) MarkCollateralClaimed(id uint64) (*Reservation, error) {
	r, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	if r.CollateralClaimed {
		return nil, ErrAlreadyProcessed
	}
	r.CollateralClaimed = true
	return r, nil
}
