package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds one account's spendable balance. The platform escrow account
// is a wallet like any other, addressed by a configured uuid.
type Wallet struct {
	AccountID    uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey" json:"account_id"`
	BalanceCents int64     `gorm:"column:balance_cents;not null;default:0" json:"balance_cents"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Wallet) TableName() string {
	return "Wallets"
}
