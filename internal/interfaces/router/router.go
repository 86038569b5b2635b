package router

import (
	"drively-backend/internal/application/emails"
	ressvc "drively-backend/internal/application/reservations"
	vehsvc "drively-backend/internal/application/vehicles"
	authsvc "drively-backend/internal/auth"
	"drively-backend/internal/booking"
	"drively-backend/internal/catalog"
	"drively-backend/internal/config"
	"drively-backend/internal/constants"
	"drively-backend/internal/database"
	"drively-backend/internal/funds"
	authhandler "drively-backend/internal/interfaces/handlers/auth"
	healthhandler "drively-backend/internal/interfaces/handlers/health"
	payhandler "drively-backend/internal/interfaces/handlers/payments"
	reshandler "drively-backend/internal/interfaces/handlers/reservations"
	vehhandler "drively-backend/internal/interfaces/handlers/vehicles"
	wallethandler "drively-backend/internal/interfaces/handlers/wallets"
	"drively-backend/internal/middleware"
	"drively-backend/internal/notify"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route registration.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Payments webhook is mounted before the session middleware so the raw
	// body reaches signature verification untouched.
	payWebhook := &payhandler.WebhookHandler{WebhookSecret: cfg.PaymentsSecret}
	app.Post("/api/v1/payments/webhook", func(c *fiber.Ctx) error {
		return payWebhook.HandleWebhook(c)
	})

	sessionHandler, rdb, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	app.Use(func(c *fiber.Ctx) error {
		user := c.Locals("user")
		if user == nil {
			c.Locals("user", nil)
		}
		return c.Next()
	})

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
		hh.DB = &gormDBPinger{db: db}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	var mailer emails.Sender
	if cfg.BrevoAPIKey != "" {
		mailer = &emails.BrevoClient{APIKey: cfg.BrevoAPIKey, MailFrom: cfg.MailFrom}
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		DB:         db,
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
		Emails:     mailer,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)
	authGroup.Delete("/logout-all", ah.LogoutAll)

	if db != nil {
		payWebhook.DB = db
	}

	if db != nil && rdb != nil {
		vault := &funds.GormVault{DB: db, EscrowAccount: cfg.EscrowAccountID}
		engine := booking.NewEngine(
			&catalog.GormCatalog{DB: db, MaxRentalHours: cfg.MaxRentalHours},
			vault,
			notify.Multi{
				&notify.EventStore{DB: db},
				&notify.RedisPublisher{Rdb: rdb, Channel: cfg.NotifyChannel},
			},
			cfg.OperatorID,
		)

		// Vehicles
		vs := &vehsvc.Service{DB: db}
		vh := &vehhandler.Handlers{Service: vs}
		vg := app.Group("/api/v1/vehicles", middleware.RequireAuth())
		vg.Post("/register", middleware.AuthorizePermission(constants.RegisterVehicle), vh.Register)
		vg.Get("/", vh.GetListed)
		vg.Get("/mine", vh.GetMine)
		vg.Get("/:vehicle_id", vh.GetByID)
		vg.Post("/:vehicle_id/unlist", middleware.AuthorizePermission(constants.UnlistVehicle), vh.Unlist)

		// Reservations
		rsvc := &ressvc.Service{Engine: engine, Vehicles: vs}
		rh := &reshandler.Handlers{Service: rsvc, Emails: mailer}
		rg := app.Group("/api/v1/reservations", middleware.RequireAuth())
		rg.Post("/", middleware.AuthorizePermission(constants.ReserveVehicle), rh.Reserve)
		rg.Post("/cancel-range", rh.CancelRange)
		rg.Get("/availability", rh.Availability)
		rg.Get("/mine/count", rh.MyCount)
		rg.Get("/vehicle/:vehicle_id", rh.VehicleSchedule)
		rg.Post("/:reservation_id/pickup", rh.Pickup)
		rg.Post("/:reservation_id/return", rh.Return)
		rg.Post("/:reservation_id/acknowledge", rh.Acknowledge)
		rg.Post("/:reservation_id/settle", middleware.AuthorizePermission(constants.RunSettlement), rh.Settle)
		rg.Post("/:reservation_id/claim-collateral", rh.ClaimCollateral)
		rg.Delete("/:reservation_id", rh.Cancel)
		rg.Get("/:reservation_id", rh.Get)

		// Wallets
		wh := &wallethandler.Handlers{Vault: vault}
		wg := app.Group("/api/v1/wallets", middleware.RequireAuth())
		wg.Get("/me", wh.Balance)
	}

	return app, db, rdb, nil
}
