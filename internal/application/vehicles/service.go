package vehicles

import (
	"context"
	"errors"

	"drively-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrVehicleNotFound = errors.New("Vehicle not found")
	ErrNotVehicleOwner = errors.New("Unauthorized vehicle update")
	ErrInvalidClass    = errors.New("Invalid vehicle class")
	ErrInvalidRate     = errors.New("Hourly rate must be positive")
	ErrPlateTaken      = errors.New("Plate is already registered")
	ErrAlreadyUnlisted = errors.New("Vehicle is not listed")
)

type Service struct {
	DB *gorm.DB
}

type RegisterVehicleInput struct {
	OwnerID            uuid.UUID
	Make               string
	Model              string
	Plate              string
	Class              string
	HourlyRateCents    int64
	MinCollateralCents int64
}

func validClass(class string) bool {
	switch class {
	case domain.ClassEconomy, domain.ClassStandard, domain.ClassPremium:
		return true
	}
	return false
}

// RegisterVehicle lists a new vehicle for the owner.
func (s *Service) RegisterVehicle(ctx context.Context, in RegisterVehicleInput) (*domain.Vehicle, error) {
	if in.Class == "" {
		in.Class = domain.ClassStandard
	}
	if !validClass(in.Class) {
		return nil, ErrInvalidClass
	}
	if in.HourlyRateCents <= 0 {
		return nil, ErrInvalidRate
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.Vehicle{}).Where("plate = ?", in.Plate).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrPlateTaken
	}

	v := &domain.Vehicle{
		OwnerID:            in.OwnerID,
		Make:               in.Make,
		Model:              in.Model,
		Plate:              in.Plate,
		Class:              in.Class,
		HourlyRateCents:    in.HourlyRateCents,
		MinCollateralCents: in.MinCollateralCents,
		Status:             domain.VehicleStatusListed,
	}
	if err := s.DB.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// GetVehicle fetches one vehicle by id.
func (s *Service) GetVehicle(ctx context.Context, vehicleID uuid.UUID) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := s.DB.WithContext(ctx).Where("vehicle_id = ?", vehicleID).First(&v).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}

// GetListedVehicles returns every vehicle currently open for reservation.
func (s *Service) GetListedVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	var vehicles []domain.Vehicle
	if err := s.DB.WithContext(ctx).
		Where("status = ?", domain.VehicleStatusListed).
		Order("created_at DESC").
		Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// GetOwnerVehicles returns all vehicles registered by one owner, listed or not.
func (s *Service) GetOwnerVehicles(ctx context.Context, ownerID uuid.UUID) ([]domain.Vehicle, error) {
	var vehicles []domain.Vehicle
	if err := s.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// UnlistVehicle takes a vehicle off the catalog. Existing reservations keep
// running; only new reservations are blocked.
func (s *Service) UnlistVehicle(ctx context.Context, vehicleID, actorID uuid.UUID, actorIsOperator bool) (*domain.Vehicle, error) {
	v, err := s.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !actorIsOperator && v.OwnerID != actorID {
		return nil, ErrNotVehicleOwner
	}
	if v.Status != domain.VehicleStatusListed {
		return nil, ErrAlreadyUnlisted
	}
	if err := s.DB.WithContext(ctx).Model(v).Update("status", domain.VehicleStatusUnlisted).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// IsListed reports whether the vehicle can accept new reservations.
func (s *Service) IsListed(ctx context.Context, vehicleID uuid.UUID) (bool, error) {
	v, err := s.GetVehicle(ctx, vehicleID)
	if err != nil {
		return false, err
	}
	return v.Status == domain.VehicleStatusListed, nil
}
