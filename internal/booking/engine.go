package booking

import (
	"context"
	"sync"

	"drively-backend/internal/ordindex"

	"github.com/google/uuid"
)

// VehicleInfo is what the engine needs to know about a catalog entry.
type VehicleInfo struct {
	OwnerID            uuid.UUID
	HourlyRateCents    int64
	MinCollateralCents int64
	MaxRentalSeconds   int64
}

// Catalog supplies vehicle pricing and ownership. Lookup returns
// ErrVehicleNotFound for unknown ids.
type Catalog interface {
	Lookup(ctx context.Context, vehicleID uuid.UUID) (VehicleInfo, error)
}

// Vault moves money. Both operations are atomic: they fully succeed or leave
// balances untouched. Escrow pulls from an account into platform custody,
// Payout releases custody funds to an account.
type Vault interface {
	Escrow(ctx context.Context, from uuid.UUID, amountCents int64) error
	Payout(ctx context.Context, to uuid.UUID, amountCents int64) error
}

// EventKind enumerates reservation lifecycle notifications.
type EventKind string

const (
	EventCreated           EventKind = "reservation.created"
	EventCancelled         EventKind = "reservation.cancelled"
	EventPickedUp          EventKind = "reservation.picked_up"
	EventReturned          EventKind = "reservation.returned"
	EventCompleted         EventKind = "reservation.completed"
	EventFeeCollected      EventKind = "reservation.fee_collected"
	EventCollateralClaimed EventKind = "reservation.collateral_claimed"
)

// Event is fired on every reservation state change.
type Event struct {
	Kind          EventKind `json:"kind"`
	ActorID       uuid.UUID `json:"actor_id"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
	ReservationID uint64    `json:"reservation_id"`
}

// Notifier receives lifecycle events after the state change is applied.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Engine binds the per-vehicle interval indexes, the reservation ledger and
// the funds vault, and exposes every lifecycle operation. A single mutex
// serializes mutations; all operations are synchronous and O(log n), so
// contention is not a concern.
//
// Callers pass the current time explicitly. The engine never reads the clock.
type Engine struct {
	mu       sync.Mutex
	catalog  Catalog
	vault    Vault
	notifier Notifier
	operator uuid.UUID

	ledger       *Ledger
	indexes      map[uuid.UUID]*ordindex.Tree
	renterActive map[uuid.UUID]int
}

// NewEngine builds an engine. operator is the platform identity additionally
// allowed to run settlement on behalf of the parties.
func NewEngine(catalog Catalog, vault Vault, notifier Notifier, operator uuid.UUID) *Engine {
	return &Engine{
		catalog:      catalog,
		vault:        vault,
		notifier:     notifier,
		operator:     operator,
		ledger:       NewLedger(),
		indexes:      make(map[uuid.UUID]*ordindex.Tree),
		renterActive: make(map[uuid.UUID]int),
	}
}

func (e *Engine) indexFor(vehicleID uuid.UUID) *ordindex.Tree {
	idx, ok := e.indexes[vehicleID]
	if !ok {
		idx = ordindex.New()
		e.indexes[vehicleID] = idx
	}
	return idx
}

func (e *Engine) notify(ctx context.Context, kind EventKind, actor, vehicleID uuid.UUID, reservationID uint64) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, Event{Kind: kind, ActorID: actor, VehicleID: vehicleID, ReservationID: reservationID})
}

// Reserve accepts a conflict-free interval, escrows the full supplied
// payment and creates the reservation. Whatever the payment exceeds the rent
// by is held as collateral, so at least the vehicle's minimum.
func (e *Engine) Reserve(ctx context.Context, vehicleID, renter uuid.UUID, start, stop, paymentCents, now int64) (Reservation, error) {
	info, err := e.catalog.Lookup(ctx, vehicleID)
	if err != nil {
		return Reservation{}, err
	}
	if stop <= start {
		return Reservation{}, ErrInvalidInterval
	}
	if stop-start > info.MaxRentalSeconds {
		return Reservation{}, ErrDurationExceeded
	}
	if start < now {
		return Reservation{}, ErrPastDated
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexFor(vehicleID)
	if !fits(idx, e.ledger, start, stop) {
		return Reservation{}, ErrVehicleUnavailable
	}

	rent := RentCents(info.HourlyRateCents, start, stop)
	if paymentCents < rent+info.MinCollateralCents {
		return Reservation{}, ErrInsufficientPayment
	}

	if err := e.vault.Escrow(ctx, renter, paymentCents); err != nil {
		return Reservation{}, err
	}

	r := e.ledger.Create(vehicleID, renter, start, stop, rent, paymentCents-rent)
	// fits guarantees no active entry shares the start key.
	_ = idx.Insert(start, r.ID)
	e.renterActive[renter]++

	e.notify(ctx, EventCreated, renter, vehicleID, r.ID)
	return *r, nil
}

// Pickup hands the vehicle over. Only the renter may pick up, only a
// Reserved reservation, and only while now lies in [start, stop).
func (e *Engine) Pickup(ctx context.Context, reservationID uint64, caller uuid.UUID, now int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.ledger.Get(reservationID)
	if err != nil {
		return err
	}
	if caller != r.RenterID {
		return ErrNotAuthorized
	}
	if r.Status != StatusReserved {
		return ErrInvalidState
	}
	if now < r.StartTime || now >= r.StopTime {
		return ErrOutsideWindow
	}
	if _, err := e.ledger.Transition(reservationID, StatusReserved, StatusPickedUp); err != nil {
		return err
	}
	e.notify(ctx, EventPickedUp, caller, r.VehicleID, r.ID)
	return nil
}

// Return takes the vehicle back. Before the booked stop nothing extra is
// billed. At or past it, the overrun is billed per started hour (minimum
// one), paid out of held collateral first and then out of extraPaymentCents,
// which is escrowed in full when needed.
func (e *Engine) Return(ctx context.Context, reservationID uint64, caller uuid.UUID, now, extraPaymentCents int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.ledger.Get(reservationID)
	if err != nil {
		return err
	}
	if caller != r.RenterID {
		return ErrNotAuthorized
	}
	if r.Status != StatusPickedUp {
		return ErrInvalidState
	}

	if now >= r.StopTime {
		info, err := e.catalog.Lookup(ctx, r.VehicleID)
		if err != nil {
			return err
		}
		extra := LateHours(r.StartTime, r.StopTime, now) * info.HourlyRateCents
		if r.CollateralCents >= extra {
			if _, err := e.ledger.ApplyLateCharge(reservationID, extra, 0); err != nil {
				return err
			}
		} else {
			shortfall := extra - r.CollateralCents
			if extraPaymentCents < shortfall {
				return ErrLateFeeUnpaid
			}
			if err := e.vault.Escrow(ctx, caller, extraPaymentCents); err != nil {
				return err
			}
			if _, err := e.ledger.ApplyLateCharge(reservationID, extra, extraPaymentCents); err != nil {
				return err
			}
		}
	}

	if _, err := e.ledger.Transition(reservationID, StatusPickedUp, StatusReturned); err != nil {
		return err
	}
	e.notify(ctx, EventReturned, caller, r.VehicleID, r.ID)
	return nil
}

// AcknowledgeReturn is the owner confirming the vehicle came back in order.
// It completes the reservation, closes its interval at the acknowledgement
// instant (so future availability checks see actual occupancy) and pays the
// rent out to the owner. Collateral stays claimable by the renter.
func (e *Engine) AcknowledgeReturn(ctx context.Context, vehicleID uuid.UUID, reservationID uint64, caller uuid.UUID, now int64) error {
	info, err := e.catalog.Lookup(ctx, vehicleID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.ledger.Get(reservationID)
	if err != nil {
		return err
	}
	if r.VehicleID != vehicleID {
		return ErrReservationNotFound
	}
	if caller != info.OwnerID {
		return ErrNotAuthorized
	}
	if _, err := e.ledger.Transition(reservationID, StatusReturned, StatusComplete); err != nil {
		return err
	}
	if _, err := e.ledger.CloseAt(reservationID, now); err != nil {
		return err
	}
	e.notify(ctx, EventCompleted, caller, vehicleID, r.ID)

	return e.collectFee(ctx, r, info.OwnerID, caller)
}

// Cancel aborts a not-yet-picked-up reservation, refunds the rent to the
// renter and frees the interval. Collateral is released separately through
// ClaimCollateral.
func (e *Engine) Cancel(ctx context.Context, vehicleID uuid.UUID, reservationID uint64, caller uuid.UUID) error {
	info, err := e.catalog.Lookup(ctx, vehicleID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.ledger.Get(reservationID)
	if err != nil {
		return err
	}
	if r.VehicleID != vehicleID {
		return ErrReservationNotFound
	}
	if caller != info.OwnerID && caller != r.RenterID {
		return ErrNotAuthorized
	}
	return e.cancelLocked(ctx, r, caller)
}

// CancelRange batch-cancels every Reserved reservation starting in
// [start, stop] that the caller may cancel: all of them for the vehicle
// owner, their own for a renter. Returns how many were cancelled.
func (e *Engine) CancelRange(ctx context.Context, vehicleID, caller uuid.UUID, start, stop int64) (int, error) {
	info, err := e.catalog.Lookup(ctx, vehicleID)
	if err != nil {
		return 0, err
	}
	isOwner := caller == info.OwnerID

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexFor(vehicleID)
	cancelled := 0
	entry, ok := idx.Ceiling(start)
	for ok && entry.Key <= stop {
		// Grab the successor before this entry is possibly removed.
		next, nextOK := idx.Higher(entry.Key)
		r, err := e.ledger.Get(entry.Value)
		if err == nil && r.Status == StatusReserved && (isOwner || r.RenterID == caller) {
			if err := e.cancelLocked(ctx, r, caller); err != nil {
				return cancelled, err
			}
			cancelled++
		}
		entry, ok = next, nextOK
	}
	return cancelled, nil
}

func (e *Engine) cancelLocked(ctx context.Context, r *Reservation, actor uuid.UUID) error {
	if r.Status != StatusReserved {
		return ErrInvalidState
	}
	if !r.FeeCollected {
		if err := e.vault.Payout(ctx, r.RenterID, r.RentPriceCents); err != nil {
			return err
		}
		if _, err := e.ledger.MarkFeeCollected(r.ID); err != nil {
			return err
		}
	}
	if _, err := e.ledger.Transition(r.ID, StatusReserved, StatusCancelled); err != nil {
		return err
	}
	if err := e.indexFor(r.VehicleID).Remove(r.StartTime); err != nil {
		return err
	}
	e.renterActive[r.RenterID]--
	e.notify(ctx, EventCancelled, actor, r.VehicleID, r.ID)
	return nil
}

// SettlePayment releases the rent to the vehicle owner. Callable by the
// owner or the platform operator once the reservation is Complete, or once
// its period lapsed without pickup, which completes it on the spot (no-show
// settlement). Idempotent: a second call fails with ErrAlreadyProcessed and
// moves nothing.
func (e *Engine) SettlePayment(ctx context.Context, reservationID uint64, caller uuid.UUID, now int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.ledger.Get(reservationID)
	if err != nil {
		return err
	}
	info, err := e.catalog.Lookup(ctx, r.VehicleID)
	if err != nil {
		return err
	}
	if caller != info.OwnerID && caller != e.operator {
		return ErrNotAuthorized
	}
	if err := e.completeIfLapsed(ctx, r, caller, now); err != nil {
		return err
	}
	return e.collectFee(ctx, r, info.OwnerID, caller)
}

// ClaimCollateral returns the held collateral to the renter. Callable by the
// renter or the platform operator once the reservation is Complete or
// Cancelled, or once its period lapsed without pickup. Idempotent like
// SettlePayment.
func (e *Engine) ClaimCollateral(ctx context.Context, reservationID uint64, caller uuid.UUID, now int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.ledger.Get(reservationID)
	if err != nil {
		return err
	}
	if caller != r.RenterID && caller != e.operator {
		return ErrNotAuthorized
	}
	if r.Status != StatusCancelled {
		if err := e.completeIfLapsed(ctx, r, caller, now); err != nil {
			return err
		}
	}
	if r.CollateralClaimed {
		return ErrAlreadyProcessed
	}
	if err := e.vault.Payout(ctx, r.RenterID, r.CollateralCents); err != nil {
		return err
	}
	if _, err := e.ledger.MarkCollateralClaimed(r.ID); err != nil {
		return err
	}
	e.notify(ctx, EventCollateralClaimed, caller, r.VehicleID, r.ID)
	return nil
}

// completeIfLapsed drives a Reserved reservation whose period passed without
// pickup to Complete; any other non-Complete status is a state error.
func (e *Engine) completeIfLapsed(ctx context.Context, r *Reservation, actor uuid.UUID, now int64) error {
	switch r.Status {
	case StatusComplete:
		return nil
	case StatusReserved:
		if now <= r.StopTime {
			return ErrInvalidState
		}
		if _, err := e.ledger.Transition(r.ID, StatusReserved, StatusComplete); err != nil {
			return err
		}
		e.notify(ctx, EventCompleted, actor, r.VehicleID, r.ID)
		return nil
	default:
		return ErrInvalidState
	}
}

// collectFee pays the rent to the owner exactly once.
func (e *Engine) collectFee(ctx context.Context, r *Reservation, owner, actor uuid.UUID) error {
	if r.FeeCollected {
		return ErrAlreadyProcessed
	}
	if err := e.vault.Payout(ctx, owner, r.RentPriceCents); err != nil {
		return err
	}
	if _, err := e.ledger.MarkFeeCollected(r.ID); err != nil {
		return err
	}
	e.notify(ctx, EventFeeCollected, actor, r.VehicleID, r.ID)
	return nil
}

// IsAvailable reports whether [start, stop] could currently be reserved,
// ignoring payment and timing constraints.
func (e *Engine) IsAvailable(ctx context.Context, vehicleID uuid.UUID, start, stop int64) (bool, error) {
	if _, err := e.catalog.Lookup(ctx, vehicleID); err != nil {
		return false, err
	}
	if stop <= start {
		return false, ErrInvalidInterval
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fits(e.indexFor(vehicleID), e.ledger, start, stop), nil
}

// RenterAt returns who holds the vehicle's slot at ts, if anyone. Completed
// reservations keep claiming their (closed-at-acknowledgement) interval.
func (e *Engine) RenterAt(vehicleID uuid.UUID, ts int64) (uuid.UUID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, ok := e.indexes[vehicleID]
	if !ok {
		return uuid.Nil, false
	}
	entry, ok := idx.Floor(ts)
	if !ok {
		return uuid.Nil, false
	}
	r, err := e.ledger.Get(entry.Value)
	if err != nil || ts > r.StopTime {
		return uuid.Nil, false
	}
	return r.RenterID, true
}

// ReservationCount returns the number of index entries for the vehicle.
func (e *Engine) ReservationCount(vehicleID uuid.UUID) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx, ok := e.indexes[vehicleID]
	if !ok {
		return 0
	}
	return idx.Size()
}

// ReservationAtRank returns a snapshot of the vehicle's i-th reservation by
// start time, 0-indexed.
func (e *Engine) ReservationAtRank(vehicleID uuid.UUID, rank int) (Reservation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, ok := e.indexes[vehicleID]
	if !ok {
		return Reservation{}, ErrIndexOutOfBounds
	}
	entry, ok := idx.SelectByRank(rank)
	if !ok {
		return Reservation{}, ErrIndexOutOfBounds
	}
	r, err := e.ledger.Get(entry.Value)
	if err != nil {
		return Reservation{}, err
	}
	return *r, nil
}

// RenterReservationCount returns how many not-cancelled reservations the
// renter holds across all vehicles.
func (e *Engine) RenterReservationCount(renter uuid.UUID) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renterActive[renter]
}

// GetReservation returns a snapshot of one reservation.
func (e *Engine) GetReservation(reservationID uint64) (Reservation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.ledger.Get(reservationID)
	if err != nil {
		return Reservation{}, err
	}
	return *r, nil
}
