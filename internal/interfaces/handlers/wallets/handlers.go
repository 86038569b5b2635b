package wallets

import (
	"context"
	"errors"

	"drively-backend/internal/middleware"
	"drively-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Balancer exposes the wallet balance lookup (funds.GormVault in production).
type Balancer interface {
	BalanceCents(ctx context.Context, account uuid.UUID) (int64, error)
}

type Handlers struct {
	Vault Balancer
}

// Balance GET /api/v1/wallets/me — the session user's spendable balance.
func (h *Handlers) Balance(c *fiber.Ctx) error {
	caller, err := sessionUserID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	balance, err := h.Vault.BalanceCents(c.Context(), caller)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Balance fetched", fiber.Map{"balance_cents": balance}, nil)
}

func sessionUserID(c *fiber.Ctx) (uuid.UUID, error) {
	user := middleware.GetUser(c)
	m, ok := user.(map[string]interface{})
	if !ok {
		return uuid.Nil, errors.New("Unauthorized")
	}
	idStr, _ := m["user_id"].(string)
	return uuid.Parse(idStr)
}
