package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle classes; each class carries its own maximum rental duration.
const (
	ClassEconomy  = "economy"
	ClassStandard = "standard"
	ClassPremium  = "premium"
)

// Vehicle statuses.
const (
	VehicleStatusListed   = "listed"
	VehicleStatusUnlisted = "unlisted"
)

// Vehicle is a catalog entry published by an owner for rental.
type Vehicle struct {
	VehicleID          uuid.UUID      `gorm:"column:vehicle_id;type:uuid;primaryKey" json:"vehicle_id"`
	OwnerID            uuid.UUID      `gorm:"column:owner_id;type:uuid;not null;index" json:"owner_id"`
	Make               string         `gorm:"column:make;not null" json:"make"`
	Model              string         `gorm:"column:model;not null" json:"model"`
	Plate              string         `gorm:"column:plate;not null;uniqueIndex" json:"plate"`
	Class              string         `gorm:"column:class;type:varchar(20);not null;default:'standard'" json:"class"`
	HourlyRateCents    int64          `gorm:"column:hourly_rate_cents;not null" json:"hourly_rate_cents"`
	MinCollateralCents int64          `gorm:"column:min_collateral_cents;not null" json:"min_collateral_cents"`
	Status             string         `gorm:"column:status;type:varchar(20);not null;default:'listed'" json:"status"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Vehicle) TableName() string {
	return "Vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.VehicleID == uuid.Nil {
		v.VehicleID = uuid.New()
	}
	return nil
}
