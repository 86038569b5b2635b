package booking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerIDsAreMonotonic(t *testing.T) {
	l := NewLedger()
	v, renter := uuid.New(), uuid.New()
	a := l.Create(v, renter, 100, 200, 1000, 5000)
	b := l.Create(v, renter, 300, 400, 1000, 5000)
	assert.Equal(t, uint64(1), a.ID)
	assert.Equal(t, uint64(2), b.ID)
	assert.Equal(t, StatusReserved, a.Status)
}

func TestLedgerGetUnknown(t *testing.T) {
	l := NewLedger()
	_, err := l.Get(99)
	assert.Equal(t, ErrReservationNotFound, err)
}

func TestTransitionRequiresExpectedStatus(t *testing.T) {
	l := NewLedger()
	r := l.Create(uuid.New(), uuid.New(), 100, 200, 1000, 5000)

	_, err := l.Transition(r.ID, StatusPickedUp, StatusReturned)
	assert.Equal(t, ErrInvalidState, err)
	assert.Equal(t, StatusReserved, r.Status)

	_, err = l.Transition(r.ID, StatusReserved, StatusPickedUp)
	require.NoError(t, err)
	assert.Equal(t, StatusPickedUp, r.Status)
}

func TestTerminalStatesAreFinal(t *testing.T) {
	l := NewLedger()
	r := l.Create(uuid.New(), uuid.New(), 100, 200, 1000, 5000)
	_, err := l.Transition(r.ID, StatusReserved, StatusCancelled)
	require.NoError(t, err)

	// No transition may name a terminal status as its source.
	_, err = l.Transition(r.ID, StatusCancelled, StatusReserved)
	assert.Equal(t, ErrInvalidState, err)
	_, err = l.Transition(r.ID, StatusComplete, StatusReserved)
	assert.Equal(t, ErrInvalidState, err)
	assert.Equal(t, StatusCancelled, r.Status)
}

func TestMarkFlagsAreMonotonic(t *testing.T) {
	l := NewLedger()
	r := l.Create(uuid.New(), uuid.New(), 100, 200, 1000, 5000)

	_, err := l.MarkFeeCollected(r.ID)
	require.NoError(t, err)
	_, err = l.MarkFeeCollected(r.ID)
	assert.Equal(t, ErrAlreadyProcessed, err)
	assert.True(t, r.FeeCollected)

	_, err = l.MarkCollateralClaimed(r.ID)
	require.NoError(t, err)
	_, err = l.MarkCollateralClaimed(r.ID)
	assert.Equal(t, ErrAlreadyProcessed, err)
	assert.True(t, r.CollateralClaimed)
}

func TestApplyLateChargeConserves(t *testing.T) {
	l := NewLedger()
	r := l.Create(uuid.New(), uuid.New(), 0, 7200, 2000, 5000)
	_, err := l.Transition(r.ID, StatusReserved, StatusPickedUp)
	require.NoError(t, err)

	held := r.EscrowedCents()
	_, err = l.ApplyLateCharge(r.ID, 3000, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), r.RentPriceCents)
	assert.Equal(t, int64(2000), r.CollateralCents)
	assert.Equal(t, held, r.EscrowedCents())

	// With a top-up the fresh escrow joins the pot before the charge.
	_, err = l.ApplyLateCharge(r.ID, 4000, 2500)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), r.RentPriceCents)
	assert.Equal(t, int64(500), r.CollateralCents)
	assert.Equal(t, held+2500, r.EscrowedCents())
}
