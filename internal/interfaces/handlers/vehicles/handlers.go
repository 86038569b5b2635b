package vehicles

import (
	"errors"

	vehsvc "drively-backend/internal/application/vehicles"
	"drively-backend/internal/constants"
	"drively-backend/internal/middleware"
	"drively-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *vehsvc.Service
}

// RegisterRequest body for POST /api/v1/vehicles/register.
type RegisterRequest struct {
	Make               string `json:"make"`
	Model              string `json:"model"`
	Plate              string `json:"plate"`
	Class              string `json:"class"`
	HourlyRateCents    int64  `json:"hourly_rate_cents"`
	MinCollateralCents int64  `json:"min_collateral_cents"`
}

// Register POST /api/v1/vehicles/register — list a vehicle owned by the session user.
func (h *Handlers) Register(c *fiber.Ctx) error {
	actor, _, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.Make == "" || req.Model == "" || req.Plate == "" {
		return response.Error(c, "make, model and plate are required", fiber.StatusBadRequest, nil)
	}

	v, err := h.Service.RegisterVehicle(c.Context(), vehsvc.RegisterVehicleInput{
		OwnerID:            actor,
		Make:               req.Make,
		Model:              req.Model,
		Plate:              req.Plate,
		Class:              req.Class,
		HourlyRateCents:    req.HourlyRateCents,
		MinCollateralCents: req.MinCollateralCents,
	})
	if err != nil {
		switch err {
		case vehsvc.ErrInvalidClass, vehsvc.ErrInvalidRate:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case vehsvc.ErrPlateTaken:
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Vehicle registered", fiber.Map{"vehicle": v}, nil)
}

// GetListed GET /api/v1/vehicles — all vehicles open for reservation.
func (h *Handlers) GetListed(c *fiber.Ctx) error {
	vehicles, err := h.Service.GetListedVehicles(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Vehicles fetched", fiber.Map{"vehicles": vehicles}, nil)
}

// GetMine GET /api/v1/vehicles/mine — the session user's fleet.
func (h *Handlers) GetMine(c *fiber.Ctx) error {
	actor, _, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	vehicles, err := h.Service.GetOwnerVehicles(c.Context(), actor)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Vehicles fetched", fiber.Map{"vehicles": vehicles}, nil)
}

// GetByID GET /api/v1/vehicles/:vehicle_id.
func (h *Handlers) GetByID(c *fiber.Ctx) error {
	vehicleID, err := uuid.Parse(c.Params("vehicle_id"))
	if err != nil {
		return response.Error(c, "Invalid vehicle_id", fiber.StatusBadRequest, nil)
	}
	v, err := h.Service.GetVehicle(c.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, vehsvc.ErrVehicleNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Vehicle fetched", fiber.Map{"vehicle": v}, nil)
}

// Unlist POST /api/v1/vehicles/:vehicle_id/unlist — owner or operator only.
func (h *Handlers) Unlist(c *fiber.Ctx) error {
	actorID, role, err := actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	vehicleID, err := uuid.Parse(c.Params("vehicle_id"))
	if err != nil {
		return response.Error(c, "Invalid vehicle_id", fiber.StatusBadRequest, nil)
	}
	v, err := h.Service.UnlistVehicle(c.Context(), vehicleID, actorID, role == constants.Operator)
	if err != nil {
		switch err {
		case vehsvc.ErrVehicleNotFound:
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case vehsvc.ErrNotVehicleOwner:
			return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
		case vehsvc.ErrAlreadyUnlisted:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Vehicle unlisted", fiber.Map{"vehicle": v}, nil)
}

// actor pulls the session user's id and role from Locals.
func actor(c *fiber.Ctx) (uuid.UUID, string, error) {
	user := middleware.GetUser(c)
	m, ok := user.(map[string]interface{})
	if !ok {
		return uuid.Nil, "", errors.New("Unauthorized")
	}
	idStr, _ := m["user_id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, "", errors.New("Unauthorized")
	}
	role, _ := m["role"].(string)
	return id, role, nil
}
