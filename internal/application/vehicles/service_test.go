package vehicles

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

func setupService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Vehicle{}))
	return &Service{DB: db}
}

func register(t *testing.T, s *Service, owner uuid.UUID, plate string) *domain.Vehicle {
	t.Helper()
	v, err := s.RegisterVehicle(context.Background(), RegisterVehicleInput{
		OwnerID:            owner,
		Make:               "Toyota",
		Model:              "Yaris",
		Plate:              plate,
		Class:              domain.ClassEconomy,
		HourlyRateCents:    900,
		MinCollateralCents: 20_000,
	})
	require.NoError(t, err)
	return v
}

func TestRegisterVehicle(t *testing.T) {
	s := setupService(t)
	owner := uuid.New()
	v := register(t, s, owner, "AB-123-CD")
	assert.Equal(t, domain.VehicleStatusListed, v.Status)
	assert.NotEqual(t, uuid.Nil, v.VehicleID)

	_, err := s.RegisterVehicle(context.Background(), RegisterVehicleInput{
		OwnerID: owner, Make: "X", Model: "Y", Plate: "AB-123-CD", HourlyRateCents: 100,
	})
	assert.Equal(t, ErrPlateTaken, err)
}

func TestRegisterVehicle_Validation(t *testing.T) {
	s := setupService(t)
	_, err := s.RegisterVehicle(context.Background(), RegisterVehicleInput{
		OwnerID: uuid.New(), Plate: "P1", Class: "hovercraft", HourlyRateCents: 100,
	})
	assert.Equal(t, ErrInvalidClass, err)

	_, err = s.RegisterVehicle(context.Background(), RegisterVehicleInput{
		OwnerID: uuid.New(), Plate: "P2", HourlyRateCents: 0,
	})
	assert.Equal(t, ErrInvalidRate, err)
}

func TestUnlistVehicle(t *testing.T) {
	s := setupService(t)
	owner := uuid.New()
	v := register(t, s, owner, "AB-123-CD")

	_, err := s.UnlistVehicle(context.Background(), v.VehicleID, uuid.New(), false)
	assert.Equal(t, ErrNotVehicleOwner, err)

	out, err := s.UnlistVehicle(context.Background(), v.VehicleID, owner, false)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleStatusUnlisted, out.Status)

	_, err = s.UnlistVehicle(context.Background(), v.VehicleID, owner, false)
	assert.Equal(t, ErrAlreadyUnlisted, err)

	listed, err := s.IsListed(context.Background(), v.VehicleID)
	require.NoError(t, err)
	assert.False(t, listed)
}

func TestUnlistVehicle_OperatorOverride(t *testing.T) {
	s := setupService(t)
	v := register(t, s, uuid.New(), "XY-999-ZZ")
	out, err := s.UnlistVehicle(context.Background(), v.VehicleID, uuid.New(), true)
	require.NoError(t, err)
	assert.Equal(t, domain.VehicleStatusUnlisted, out.Status)
}

func TestGetListedVehicles(t *testing.T) {
	s := setupService(t)
	owner := uuid.New()
	v1 := register(t, s, owner, "P-1")
	register(t, s, owner, "P-2")
	_, err := s.UnlistVehicle(context.Background(), v1.VehicleID, owner, false)
	require.NoError(t, err)

	listed, err := s.GetListedVehicles(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "P-2", listed[0].Plate)

	mine, err := s.GetOwnerVehicles(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestGetVehicle_NotFound(t *testing.T) {
	s := setupService(t)
	_, err := s.GetVehicle(context.Background(), uuid.New())
	assert.Equal(t, ErrVehicleNotFound, err)
}
