package funds

import (
	"context"

	"drively-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVault keeps wallet balances in the Wallets table. Custody funds sit in
// a dedicated escrow wallet addressed by EscrowAccount. Every move runs in
// one transaction so a failed transfer leaves both wallets untouched.
type GormVault struct {
	DB            *gorm.DB
	EscrowAccount uuid.UUID
}

func (v *GormVault) Escrow(ctx context.Context, from uuid.UUID, amountCents int64) error {
	if amountCents < 0 {
		return ErrInvalidAmount
	}
	return v.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transfer(tx, from, v.EscrowAccount, amountCents)
	})
}

func (v *GormVault) Payout(ctx context.Context, to uuid.UUID, amountCents int64) error {
	if amountCents < 0 {
		return ErrInvalidAmount
	}
	return v.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transfer(tx, v.EscrowAccount, to, amountCents)
	})
}

// Credit tops up an account without a source wallet (funds entered the
// platform through a payment provider).
func (v *GormVault) Credit(ctx context.Context, account uuid.UUID, amountCents int64) error {
	if amountCents < 0 {
		return ErrInvalidAmount
	}
	return v.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deposit(tx, account, amountCents)
	})
}

// BalanceCents returns an account's balance; a missing wallet is zero.
func (v *GormVault) BalanceCents(ctx context.Context, account uuid.UUID) (int64, error) {
	var w domain.Wallet
	err := v.DB.WithContext(ctx).Where("account_id = ?", account).First(&w).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return w.BalanceCents, nil
}

func transfer(tx *gorm.DB, from, to uuid.UUID, amountCents int64) error {
	var src domain.Wallet
	if err := tx.Where("account_id = ?", from).First(&src).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrInsufficientFunds
		}
		return err
	}
	if src.BalanceCents < amountCents {
		return ErrInsufficientFunds
	}
	src.BalanceCents -= amountCents
	if err := tx.Save(&src).Error; err != nil {
		return err
	}
	return deposit(tx, to, amountCents)
}

func deposit(tx *gorm.DB, account uuid.UUID, amountCents int64) error {
	var dst domain.Wallet
	err := tx.Where("account_id = ?", account).First(&dst).Error
	if err == gorm.ErrRecordNotFound {
		return tx.Create(&domain.Wallet{AccountID: account, BalanceCents: amountCents}).Error
	}
	if err != nil {
		return err
	}
	dst.BalanceCents += amountCents
	return tx.Save(&dst).Error
}
