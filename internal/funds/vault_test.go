package funds

import (
	"context"
	"testing"

	"drively-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMemoryVaultRoundTrip(t *testing.T) {
	ctx := context.Background()
	v := NewMemoryVault()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, v.Credit(ctx, a, 10_000))
	require.NoError(t, v.Escrow(ctx, a, 6000))

	bal, err := v.BalanceCents(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), bal)
	assert.Equal(t, int64(6000), v.EscrowedCents())

	require.NoError(t, v.Payout(ctx, b, 1000))
	bal, err = v.BalanceCents(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal)
	assert.Equal(t, int64(5000), v.EscrowedCents())
}

func TestMemoryVaultRejectsOverdraft(t *testing.T) {
	ctx := context.Background()
	v := NewMemoryVault()
	a := uuid.New()
	require.NoError(t, v.Credit(ctx, a, 100))

	assert.Equal(t, ErrInsufficientFunds, v.Escrow(ctx, a, 101))
	assert.Equal(t, ErrInsufficientFunds, v.Payout(ctx, a, 1))
	assert.Equal(t, ErrInvalidAmount, v.Escrow(ctx, a, -1))

	// Failed moves leave balances untouched.
	bal, err := v.BalanceCents(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(100), bal)
	assert.Equal(t, int64(0), v.EscrowedCents())
}

func setupVaultDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Wallet{}))
	return db
}

func TestGormVaultTransfers(t *testing.T) {
	ctx := context.Background()
	db := setupVaultDB(t)
	escrow := uuid.New()
	v := &GormVault{DB: db, EscrowAccount: escrow}
	renter, owner := uuid.New(), uuid.New()

	require.NoError(t, v.Credit(ctx, renter, 10_000))
	require.NoError(t, v.Escrow(ctx, renter, 6000))
	require.NoError(t, v.Payout(ctx, owner, 1000))

	renterBal, err := v.BalanceCents(ctx, renter)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), renterBal)

	escrowBal, err := v.BalanceCents(ctx, escrow)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), escrowBal)

	ownerBal, err := v.BalanceCents(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), ownerBal)
}

func TestGormVaultRejectsOverdraft(t *testing.T) {
	ctx := context.Background()
	db := setupVaultDB(t)
	v := &GormVault{DB: db, EscrowAccount: uuid.New()}
	renter := uuid.New()

	// No wallet at all reads as no funds.
	assert.Equal(t, ErrInsufficientFunds, v.Escrow(ctx, renter, 1))

	require.NoError(t, v.Credit(ctx, renter, 500))
	assert.Equal(t, ErrInsufficientFunds, v.Escrow(ctx, renter, 501))

	bal, err := v.BalanceCents(ctx, renter)
	require.NoError(t, err)
	assert.Equal(t, int64(500), bal)

	// Empty escrow wallet cannot pay out.
	assert.Equal(t, ErrInsufficientFunds, v.Payout(ctx, renter, 1))
}

func TestGormVaultUnknownBalanceIsZero(t *testing.T) {
	db := setupVaultDB(t)
	v := &GormVault{DB: db, EscrowAccount: uuid.New()}
	bal, err := v.BalanceCents(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)
}
