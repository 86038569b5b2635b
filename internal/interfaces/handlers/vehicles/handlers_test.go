package vehicles

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	vehsvc "drively-backend/internal/application/vehicles"
	"drively-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupHandlers(t *testing.T) *Handlers {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Vehicle{}))
	return &Handlers{Service: &vehsvc.Service{DB: db}}
}

// withUser injects a session user into Locals ahead of the handler.
func withUser(id uuid.UUID, role string, next fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id": id.String(),
			"role":    role,
		})
		return next(c)
	}
}

func registerVehicle(t *testing.T, app *fiber.App, plate string) map[string]interface{} {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{
		"make":                 "Toyota",
		"model":                "Yaris",
		"plate":                plate,
		"class":                "economy",
		"hourly_rate_cents":    900,
		"min_collateral_cents": 20000,
	})
	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	data, _ := out["data"].(map[string]interface{})
	vehicle, _ := data["vehicle"].(map[string]interface{})
	require.NotNil(t, vehicle)
	return vehicle
}

func TestRegister(t *testing.T) {
	h := setupHandlers(t)
	owner := uuid.New()
	app := fiber.New()
	app.Post("/register", withUser(owner, "owner", h.Register))

	vehicle := registerVehicle(t, app, "AB-123-CD")
	assert.Equal(t, owner.String(), vehicle["owner_id"])
	assert.Equal(t, "listed", vehicle["status"])
}

func TestRegister_MissingFields(t *testing.T) {
	h := setupHandlers(t)
	app := fiber.New()
	app.Post("/register", withUser(uuid.New(), "owner", h.Register))

	body, _ := json.Marshal(map[string]interface{}{"make": "Toyota"})
	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRegister_DuplicatePlate(t *testing.T) {
	h := setupHandlers(t)
	app := fiber.New()
	app.Post("/register", withUser(uuid.New(), "owner", h.Register))

	registerVehicle(t, app, "AB-123-CD")

	body, _ := json.Marshal(map[string]interface{}{
		"make": "Honda", "model": "Jazz", "plate": "AB-123-CD", "hourly_rate_cents": 800,
	})
	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestUnlist(t *testing.T) {
	h := setupHandlers(t)
	owner := uuid.New()
	app := fiber.New()
	app.Post("/register", withUser(owner, "owner", h.Register))
	app.Post("/:vehicle_id/unlist", withUser(owner, "owner", h.Unlist))

	vehicle := registerVehicle(t, app, "AB-123-CD")
	id := vehicle["vehicle_id"].(string)

	req := httptest.NewRequest("POST", "/"+id+"/unlist", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Second unlist is a 400 (already unlisted).
	req = httptest.NewRequest("POST", "/"+id+"/unlist", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUnlist_NotOwner(t *testing.T) {
	h := setupHandlers(t)
	owner := uuid.New()
	stranger := uuid.New()
	app := fiber.New()
	app.Post("/register", withUser(owner, "owner", h.Register))
	app.Post("/:vehicle_id/unlist", withUser(stranger, "owner", h.Unlist))

	vehicle := registerVehicle(t, app, "AB-123-CD")
	id := vehicle["vehicle_id"].(string)

	req := httptest.NewRequest("POST", "/"+id+"/unlist", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestUnlist_OperatorAllowed(t *testing.T) {
	h := setupHandlers(t)
	owner := uuid.New()
	operator := uuid.New()
	app := fiber.New()
	app.Post("/register", withUser(owner, "owner", h.Register))
	app.Post("/:vehicle_id/unlist", withUser(operator, "operator", h.Unlist))

	vehicle := registerVehicle(t, app, "AB-123-CD")
	id := vehicle["vehicle_id"].(string)

	req := httptest.NewRequest("POST", "/"+id+"/unlist", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetListedAndByID(t *testing.T) {
	h := setupHandlers(t)
	owner := uuid.New()
	app := fiber.New()
	app.Post("/register", withUser(owner, "owner", h.Register))
	app.Get("/", h.GetListed)
	app.Get("/mine", withUser(owner, "owner", h.GetMine))
	app.Get("/:vehicle_id", h.GetByID)

	vehicle := registerVehicle(t, app, "AB-123-CD")
	id := vehicle["vehicle_id"].(string)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/mine", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/"+id, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/"+uuid.New().String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
