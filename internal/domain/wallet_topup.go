package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WalletTopUp records a processed payment-provider intent that credited a
// wallet. The unique index on the intent id is the idempotency guard for
// webhook retries.
type WalletTopUp struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PaymentIntentID string         `gorm:"column:payment_intent_id;uniqueIndex;not null" json:"payment_intent_id"`
	ProviderEventID string         `gorm:"column:provider_event_id;uniqueIndex;not null" json:"provider_event_id"`
	AccountID       uuid.UUID      `gorm:"column:account_id;type:uuid;not null;index" json:"account_id"`
	AmountCents     int64          `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Currency        string         `gorm:"column:currency;not null" json:"currency"`
	Status          string         `gorm:"column:status;not null" json:"status"`
	RawPayload      datatypes.JSON `gorm:"column:raw_payload;type:jsonb;not null" json:"raw_payload"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func (WalletTopUp) TableName() string {
	return "WalletTopUps"
}

func (w *WalletTopUp) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
