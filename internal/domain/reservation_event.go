package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ReservationEvent is one audit-trail row per lifecycle notification, kept
// for dispute history. The engine's in-memory state is authoritative; these
// rows only record what happened.
type ReservationEvent struct {
	ID            uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EventType     string         `gorm:"column:event_type;not null;index" json:"event_type"`
	ActorID       uuid.UUID      `gorm:"column:actor_id;type:uuid;not null" json:"actor_id"`
	VehicleID     uuid.UUID      `gorm:"column:vehicle_id;type:uuid;not null;index" json:"vehicle_id"`
	ReservationID uint64         `gorm:"column:reservation_id;not null;index" json:"reservation_id"`
	EventData     datatypes.JSON `gorm:"column:event_data;type:jsonb" json:"event_data"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func (ReservationEvent) TableName() string {
	return "ReservationEvents"
}
