package wallets

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"drively-backend/internal/domain"
	"drively-backend/internal/funds"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBalance(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Wallet{}))

	vault := &funds.GormVault{DB: db, EscrowAccount: uuid.New()}
	account := uuid.New()
	require.NoError(t, vault.Credit(context.Background(), account, 12_345))

	h := &Handlers{Vault: vault}
	app := fiber.New()
	app.Get("/me", func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"user_id": account.String(), "role": "renter"})
		return h.Balance(c)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, float64(12_345), out["data"].(map[string]interface{})["balance_cents"])
}

func TestBalance_Unauthorized(t *testing.T) {
	h := &Handlers{}
	app := fiber.New()
	app.Get("/me", h.Balance)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
