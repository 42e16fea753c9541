package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the backend reads.
	EnvPrefix = "XFERY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "XFERY_DB_DSN"
	EnvDBHost = "XFERY_DB_HOST"
	EnvDBUser = "XFERY_DB_USER"
	EnvDBName = "XFERY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	Supplier     SupplierConfig
	Checkout     CheckoutConfig
	Fetch        FetchConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"XFERY_APP_ENV" required:"true"`
	Port         string `envconfig:"XFERY_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"XFERY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"XFERY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"XFERY_DB_DSN"`
	Driver string `envconfig:"XFERY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"XFERY_DB_HOST"`
	LegacyPort     int    `envconfig:"XFERY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"XFERY_DB_USER"`
	LegacyPassword string `envconfig:"XFERY_DB_PASSWORD"`
	LegacyName     string `envconfig:"XFERY_DB_NAME"`
	LegacySSLMode  string `envconfig:"XFERY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"XFERY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"XFERY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"XFERY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"XFERY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"XFERY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"XFERY_REDIS_ADDR"`
	Password     string        `envconfig:"XFERY_REDIS_PASSWORD"`
	DB           int           `envconfig:"XFERY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"XFERY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"XFERY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"XFERY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"XFERY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"XFERY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"XFERY_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"XFERY_JWT_ISSUER" default:"xfery"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"XFERY_STRIPE_API_KEY" required:"true"`
	WebhookSecret string `envconfig:"XFERY_STRIPE_WEBHOOK_SECRET" required:"true"`
	Env           string `envconfig:"XFERY_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// SupplierConfig carries the dropshipping supplier API credentials.
type SupplierConfig struct {
	AccessToken string        `envconfig:"XFERY_CJ_ACCESS_TOKEN" required:"true"`
	BaseURL     string        `envconfig:"XFERY_CJ_BASE_URL" default:"https://developers.cjdropshipping.com/api2.0/v1"`
	Timeout     time.Duration `envconfig:"XFERY_CJ_TIMEOUT" default:"15s"`
	// The supplier serves product search noticeably slower than the rest
	// of its API, so the search path gets its own budget.
	SearchTimeout time.Duration `envconfig:"XFERY_CJ_SEARCH_TIMEOUT" default:"30s"`
}

// CheckoutConfig carries the hosted-checkout redirect targets and the
// external payment-update endpoint called during order confirmation.
type CheckoutConfig struct {
	SuccessURL           string `envconfig:"XFERY_CHECKOUT_SUCCESS_URL" default:"https://xfery.com/createOrder/paid"`
	CancelURL            string `envconfig:"XFERY_CHECKOUT_CANCEL_URL" default:"https://xfery.com/cancel"`
	PaymentUpdateBaseURL string `envconfig:"XFERY_PAYMENT_UPDATE_BASE_URL" required:"true"`
	Currency             string `envconfig:"XFERY_CHECKOUT_CURRENCY" default:"USD"`
}

// FetchConfig tunes the rate-limited supplier fetch pool.
type FetchConfig struct {
	Concurrency int           `envconfig:"XFERY_FETCH_CONCURRENCY" default:"2"`
	Interval    time.Duration `envconfig:"XFERY_FETCH_INTERVAL" default:"1s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"XFERY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
