package config

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	PaymentsSecret      string // webhook signing secret of the payment provider
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string
	AllowCrossSiteDev   bool
	EscrowAccountID     uuid.UUID // wallet holding all escrowed funds
	OperatorID          uuid.UUID // platform identity allowed to run settlement
	NotifyChannel       string
	BrevoAPIKey         string
	MailFrom            string
	MaxRentalHours      map[string]int64 // per vehicle class
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		PaymentsSecret:      viper.GetString("PAYMENTS_WEBHOOK_SECRET"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		EscrowAccountID:     accountID("ESCROW_ACCOUNT_ID"),
		OperatorID:          accountID("OPERATOR_ID"),
		NotifyChannel:       viper.GetString("NOTIFY_CHANNEL"),
		BrevoAPIKey:         viper.GetString("BREVO_API_KEY"),
		MailFrom:            viper.GetString("MAIL_FROM"),
		MaxRentalHours: map[string]int64{
			"economy":  viper.GetInt64("MAX_RENTAL_HOURS_ECONOMY"),
			"standard": viper.GetInt64("MAX_RENTAL_HOURS_STANDARD"),
			"premium":  viper.GetInt64("MAX_RENTAL_HOURS_PREMIUM"),
		},
	}, nil
}

// accountID parses a uuid env var; a missing or bad value yields a stable
// fallback derived from the variable name so dev setups work out of the box.
func accountID(key string) uuid.UUID {
	if id, err := uuid.Parse(viper.GetString(key)); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("drively:"+key))
}
