package reservations

import (
	"context"
	"errors"
	"strconv"
	"time"

	"drively-backend/internal/application/emails"
	ressvc "drively-backend/internal/application/reservations"
	"drively-backend/internal/booking"
	"drively-backend/internal/middleware"
	"drively-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *ressvc.Service
	Emails  emails.Sender // nil disables receipt emails
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch err {
	case booking.ErrVehicleNotFound, booking.ErrReservationNotFound:
		return fiber.StatusNotFound
	case booking.ErrNotAuthorized:
		return fiber.StatusForbidden
	case booking.ErrVehicleUnavailable, booking.ErrAlreadyProcessed, booking.ErrInvalidState:
		return fiber.StatusConflict
	case booking.ErrInvalidInterval, booking.ErrDurationExceeded, booking.ErrPastDated,
		booking.ErrInsufficientPayment, booking.ErrLateFeeUnpaid, booking.ErrOutsideWindow,
		booking.ErrIndexOutOfBounds:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		msg = "Internal Server Error"
	}
	return response.Error(c, msg, code, nil)
}

// ReserveRequest body for POST /api/v1/reservations.
type ReserveRequest struct {
	VehicleID    string `json:"vehicle_id"`
	StartTime    int64  `json:"start_time"`
	StopTime     int64  `json:"stop_time"`
	PaymentCents int64  `json:"payment_cents"`
}

// Reserve POST /api/v1/reservations — book an interval, escrowing rent plus collateral.
func (h *Handlers) Reserve(c *fiber.Ctx) error {
	caller, err := sessionUserID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req ReserveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return response.Error(c, "Invalid vehicle_id", fiber.StatusBadRequest, nil)
	}

	r, err := h.Service.Reserve(c.Context(), ressvc.ReserveInput{
		VehicleID:    vehicleID,
		RenterID:     caller,
		StartTime:    req.StartTime,
		StopTime:     req.StopTime,
		PaymentCents: req.PaymentCents,
	})
	if err != nil {
		return fail(c, err)
	}
	h.sendReceipt(c, r)
	return response.SuccessCreated(c, "Reservation created", fiber.Map{"reservation": r}, nil)
}

// sendReceipt emails the booking receipt in the background. Failures are
// logged, never surfaced to the renter.
func (h *Handlers) sendReceipt(c *fiber.Ctx, r booking.Reservation) {
	if h.Emails == nil {
		return
	}
	email := sessionUserEmail(c)
	if email == "" {
		return
	}
	receipt := emails.ReceiptData{
		ReservationID:   r.ID,
		StartTime:       time.Unix(r.StartTime, 0),
		StopTime:        time.Unix(r.StopTime, 0),
		RentPriceCents:  r.RentPriceCents,
		CollateralCents: r.CollateralCents,
	}
	if v, err := h.Service.Vehicles.GetVehicle(c.Context(), r.VehicleID); err == nil {
		receipt.VehicleMake = v.Make
		receipt.VehicleModel = v.Model
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := h.Emails.SendReservationReceipt(ctx, email, receipt); err != nil {
			log.Warn().Err(err).Uint64("reservation_id", receipt.ReservationID).Msg("receipt email failed")
		}
	}()
}

// Pickup POST /api/v1/reservations/:reservation_id/pickup.
func (h *Handlers) Pickup(c *fiber.Ctx) error {
	caller, id, ok := callerAndID(c)
	if !ok {
		return nil
	}
	if err := h.Service.Pickup(c.Context(), id, caller); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Vehicle picked up", nil, nil)
}

// ReturnRequest body; extra payment covers a late-fee shortfall.
type ReturnRequest struct {
	ExtraPaymentCents int64 `json:"extra_payment_cents"`
}

// Return POST /api/v1/reservations/:reservation_id/return.
func (h *Handlers) Return(c *fiber.Ctx) error {
	caller, id, ok := callerAndID(c)
	if !ok {
		return nil
	}
	var req ReturnRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
		}
	}
	if err := h.Service.Return(c.Context(), id, caller, req.ExtraPaymentCents); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Vehicle returned", nil, nil)
}

// Acknowledge POST /api/v1/reservations/:reservation_id/acknowledge — owner
// confirms the return, releasing the rent payout.
func (h *Handlers) Acknowledge(c *fiber.Ctx) error {
	caller, id, ok := callerAndID(c)
	if !ok {
		return nil
	}
	r, err := h.Service.GetReservation(id)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Service.AcknowledgeReturn(c.Context(), r.VehicleID, id, caller); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Return acknowledged", nil, nil)
}

// Cancel DELETE /api/v1/reservations/:reservation_id — refund the rent and
// free the interval. Only pending reservations can be cancelled.
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	caller, id, ok := callerAndID(c)
	if !ok {
		return nil
	}
	r, err := h.Service.GetReservation(id)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Service.Cancel(c.Context(), r.VehicleID, id, caller); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Reservation cancelled", nil, nil)
}

// CancelRangeRequest body for POST /api/v1/reservations/cancel-range.
type CancelRangeRequest struct {
	VehicleID string `json:"vehicle_id"`
	StartTime int64  `json:"start_time"`
	StopTime  int64  `json:"stop_time"`
}

// CancelRange POST /api/v1/reservations/cancel-range — cancel every pending
// reservation starting inside [start_time, stop_time).
func (h *Handlers) CancelRange(c *fiber.Ctx) error {
	caller, err := sessionUserID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CancelRangeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return response.Error(c, "Invalid vehicle_id", fiber.StatusBadRequest, nil)
	}
	n, err := h.Service.CancelRange(c.Context(), vehicleID, caller, req.StartTime, req.StopTime)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Reservations cancelled", fiber.Map{"cancelled": n}, nil)
}

// Settle POST /api/v1/reservations/:reservation_id/settle — release the rent
// payout for a completed or lapsed reservation.
func (h *Handlers) Settle(c *fiber.Ctx) error {
	caller, id, ok := callerAndID(c)
	if !ok {
		return nil
	}
	if err := h.Service.SettlePayment(c.Context(), id, caller); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Payment settled", nil, nil)
}

// ClaimCollateral POST /api/v1/reservations/:reservation_id/claim-collateral.
func (h *Handlers) ClaimCollateral(c *fiber.Ctx) error {
	caller, id, ok := callerAndID(c)
	if !ok {
		return nil
	}
	if err := h.Service.ClaimCollateral(c.Context(), id, caller); err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Collateral claimed", nil, nil)
}

// Get GET /api/v1/reservations/:reservation_id.
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := reservationID(c)
	if err != nil {
		return response.Error(c, "Invalid reservation_id", fiber.StatusBadRequest, nil)
	}
	r, err := h.Service.GetReservation(id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Reservation fetched", fiber.Map{"reservation": r}, nil)
}

// Availability GET /api/v1/reservations/availability?vehicle_id=&start=&stop=.
func (h *Handlers) Availability(c *fiber.Ctx) error {
	vehicleID, err := uuid.Parse(c.Query("vehicle_id"))
	if err != nil {
		return response.Error(c, "Invalid vehicle_id", fiber.StatusBadRequest, nil)
	}
	start, err1 := strconv.ParseInt(c.Query("start"), 10, 64)
	stop, err2 := strconv.ParseInt(c.Query("stop"), 10, 64)
	if err1 != nil || err2 != nil {
		return response.Error(c, "start and stop are required", fiber.StatusBadRequest, nil)
	}
	free, err := h.Service.IsAvailable(c.Context(), vehicleID, start, stop)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Availability checked", fiber.Map{"available": free}, nil)
}

// VehicleSchedule GET /api/v1/reservations/vehicle/:vehicle_id — count plus
// optional rank and point-in-time lookups via query params.
func (h *Handlers) VehicleSchedule(c *fiber.Ctx) error {
	vehicleID, err := uuid.Parse(c.Params("vehicle_id"))
	if err != nil {
		return response.Error(c, "Invalid vehicle_id", fiber.StatusBadRequest, nil)
	}

	data := fiber.Map{"count": h.Service.ReservationCount(vehicleID)}

	if rankStr := c.Query("rank"); rankStr != "" {
		rank, err := strconv.Atoi(rankStr)
		if err != nil {
			return response.Error(c, "Invalid rank", fiber.StatusBadRequest, nil)
		}
		r, err := h.Service.ReservationAtRank(vehicleID, rank)
		if err != nil {
			return fail(c, err)
		}
		data["reservation"] = r
	}

	if atStr := c.Query("at"); atStr != "" {
		ts, err := strconv.ParseInt(atStr, 10, 64)
		if err != nil {
			return response.Error(c, "Invalid at timestamp", fiber.StatusBadRequest, nil)
		}
		if renter, ok := h.Service.RenterAt(vehicleID, ts); ok {
			data["renter_at"] = renter.String()
		} else {
			data["renter_at"] = nil
		}
	}

	return response.Success(c, "Schedule fetched", data, nil)
}

// MyCount GET /api/v1/reservations/mine/count — the session user's pending
// and active reservation count.
func (h *Handlers) MyCount(c *fiber.Ctx) error {
	caller, err := sessionUserID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	return response.Success(c, "Reservation count fetched", fiber.Map{
		"count": h.Service.RenterReservationCount(caller),
	}, nil)
}

// --- helpers ---

func sessionUserID(c *fiber.Ctx) (uuid.UUID, error) {
	user := middleware.GetUser(c)
	m, ok := user.(map[string]interface{})
	if !ok {
		return uuid.Nil, errors.New("Unauthorized")
	}
	idStr, _ := m["user_id"].(string)
	return uuid.Parse(idStr)
}

func sessionUserEmail(c *fiber.Ctx) string {
	m, ok := middleware.GetUser(c).(map[string]interface{})
	if !ok {
		return ""
	}
	email, _ := m["email"].(string)
	return email
}

func reservationID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("reservation_id"), 10, 64)
}

// callerAndID resolves the session user and the path reservation id, writing
// the error response itself when either is missing.
func callerAndID(c *fiber.Ctx) (uuid.UUID, uint64, bool) {
	caller, err := sessionUserID(c)
	if err != nil {
		_ = response.Unauthorized(c, "Unauthorized")
		return uuid.Nil, 0, false
	}
	id, err := reservationID(c)
	if err != nil {
		_ = response.Error(c, "Invalid reservation_id", fiber.StatusBadRequest, nil)
		return uuid.Nil, 0, false
	}
	return caller, id, true
}
