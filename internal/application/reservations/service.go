package reservations

import (
	"context"
	"time"

	vehsvc "drively-backend/internal/application/vehicles"
	"drively-backend/internal/booking"

	"github.com/google/uuid"
)

// Service fronts the in-memory reservation engine for the HTTP layer. It adds
// the catalog listing gate and the wall clock; everything else is the engine.
type Service struct {
	Engine   *booking.Engine
	Vehicles *vehsvc.Service
	Now      func() int64 // unix seconds; nil means time.Now
}

func (s *Service) now() int64 {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().Unix()
}

type ReserveInput struct {
	VehicleID    uuid.UUID
	RenterID     uuid.UUID
	StartTime    int64
	StopTime     int64
	PaymentCents int64
}

// Reserve books an interval on a listed vehicle. Unlisted vehicles reject new
// reservations even though their existing ones keep running.
func (s *Service) Reserve(ctx context.Context, in ReserveInput) (booking.Reservation, error) {
	listed, err := s.Vehicles.IsListed(ctx, in.VehicleID)
	if err != nil {
		if err == vehsvc.ErrVehicleNotFound {
			return booking.Reservation{}, booking.ErrVehicleNotFound
		}
		return booking.Reservation{}, err
	}
	if !listed {
		return booking.Reservation{}, booking.ErrVehicleUnavailable
	}
	return s.Engine.Reserve(ctx, in.VehicleID, in.RenterID, in.StartTime, in.StopTime, in.PaymentCents, s.now())
}

func (s *Service) Pickup(ctx context.Context, reservationID uint64, caller uuid.UUID) error {
	return s.Engine.Pickup(ctx, reservationID, caller, s.now())
}

func (s *Service) Return(ctx context.Context, reservationID uint64, caller uuid.UUID, extraPaymentCents int64) error {
	return s.Engine.Return(ctx, reservationID, caller, s.now(), extraPaymentCents)
}

func (s *Service) AcknowledgeReturn(ctx context.Context, vehicleID uuid.UUID, reservationID uint64, caller uuid.UUID) error {
	return s.Engine.AcknowledgeReturn(ctx, vehicleID, reservationID, caller, s.now())
}

func (s *Service) Cancel(ctx context.Context, vehicleID uuid.UUID, reservationID uint64, caller uuid.UUID) error {
	return s.Engine.Cancel(ctx, vehicleID, reservationID, caller)
}

func (s *Service) CancelRange(ctx context.Context, vehicleID, caller uuid.UUID, start, stop int64) (int, error) {
	return s.Engine.CancelRange(ctx, vehicleID, caller, start, stop)
}

func (s *Service) SettlePayment(ctx context.Context, reservationID uint64, caller uuid.UUID) error {
	return s.Engine.SettlePayment(ctx, reservationID, caller, s.now())
}

func (s *Service) ClaimCollateral(ctx context.Context, reservationID uint64, caller uuid.UUID) error {
	return s.Engine.ClaimCollateral(ctx, reservationID, caller, s.now())
}

func (s *Service) IsAvailable(ctx context.Context, vehicleID uuid.UUID, start, stop int64) (bool, error) {
	return s.Engine.IsAvailable(ctx, vehicleID, start, stop)
}

func (s *Service) RenterAt(vehicleID uuid.UUID, ts int64) (uuid.UUID, bool) {
	return s.Engine.RenterAt(vehicleID, ts)
}

func (s *Service) ReservationCount(vehicleID uuid.UUID) int {
	return s.Engine.ReservationCount(vehicleID)
}

func (s *Service) ReservationAtRank(vehicleID uuid.UUID, rank int) (booking.Reservation, error) {
	return s.Engine.ReservationAtRank(vehicleID, rank)
}

func (s *Service) RenterReservationCount(renter uuid.UUID) int {
	return s.Engine.RenterReservationCount(renter)
}

func (s *Service) GetReservation(reservationID uint64) (booking.Reservation, error) {
	return s.Engine.GetReservation(reservationID)
}
