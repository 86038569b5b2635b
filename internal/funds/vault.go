package funds

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("Insufficient wallet balance")
	ErrInvalidAmount     = errors.New("Transfer amount cannot be negative")
)

// MemoryVault is an in-process vault for tests and single-node development.
// Escrowed funds live in a single custody pot, wallet balances in a map.
type MemoryVault struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
	escrowed int64
}

func NewMemoryVault() *MemoryVault {
	return &MemoryVault{balances: make(map[uuid.UUID]int64)}
}

// Credit tops up an account, e.g. from a processed payment intent.
func (v *MemoryVault) Credit(_ context.Context, account uuid.UUID, amountCents int64) error {
	if amountCents < 0 {
		return ErrInvalidAmount
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.balances[account] += amountCents
	return nil
}

// Escrow pulls amountCents from the account into custody. Atomic: an
// underfunded account leaves both sides untouched.
func (v *MemoryVault) Escrow(_ context.Context, from uuid.UUID, amountCents int64) error {
	if amountCents < 0 {
		return ErrInvalidAmount
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.balances[from] < amountCents {
		return ErrInsufficientFunds
	}
	v.balances[from] -= amountCents
	v.escrowed += amountCents
	return nil
}

// Payout releases amountCents from custody to the account.
func (v *MemoryVault) Payout(_ context.Context, to uuid.UUID, amountCents int64) error {
	if amountCents < 0 {
		return ErrInvalidAmount
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.escrowed < amountCents {
		return ErrInsufficientFunds
	}
	v.escrowed -= amountCents
	v.balances[to] += amountCents
	return nil
}

// BalanceCents returns an account's spendable balance.
func (v *MemoryVault) BalanceCents(_ context.Context, account uuid.UUID) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balances[account], nil
}

// EscrowedCents returns the custody pot, handy for conservation checks.
func (v *MemoryVault) EscrowedCents() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.escrowed
}
