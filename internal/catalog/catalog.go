package catalog

import (
	"context"

	"drively-backend/internal/booking"
	"drively-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultMaxRentalHours caps a rental when a class has no configured limit.
const DefaultMaxRentalHours = 720 // 30 days

// GormCatalog serves vehicle pricing and ownership to the booking engine
// from the Vehicles table. Unlisted vehicles still resolve: reservations made
// while a vehicle was listed keep working through their lifecycle.
type GormCatalog struct {
	DB             *gorm.DB
	MaxRentalHours map[string]int64 // per vehicle class
}

func (c *GormCatalog) Lookup(ctx context.Context, vehicleID uuid.UUID) (booking.VehicleInfo, error) {
	var v domain.Vehicle
	if err := c.DB.WithContext(ctx).Where("vehicle_id = ?", vehicleID).First(&v).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return booking.VehicleInfo{}, booking.ErrVehicleNotFound
		}
		return booking.VehicleInfo{}, err
	}
	hours := c.MaxRentalHours[v.Class]
	if hours <= 0 {
		hours = DefaultMaxRentalHours
	}
	return booking.VehicleInfo{
		OwnerID:            v.OwnerID,
		HourlyRateCents:    v.HourlyRateCents,
		MinCollateralCents: v.MinCollateralCents,
		MaxRentalSeconds:   hours * 3600,
	}, nil
}
