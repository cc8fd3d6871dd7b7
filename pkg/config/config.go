package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "BAZARLINE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
	Checkout CheckoutConfig
	Manager  ManagerConfig
	Poller   PollerConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BAZARLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"BAZARLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BAZARLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BAZARLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type JWTConfig struct {
	Secret            string `envconfig:"BAZARLINE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BAZARLINE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BAZARLINE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BAZARLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BAZARLINE_REDIS_ADDR"`
	Password     string        `envconfig:"BAZARLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BAZARLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BAZARLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BAZARLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BAZARLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BAZARLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BAZARLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// UpstreamConfig points at the shop platform APIs (orders, profile,
// order management, manager status).
type UpstreamConfig struct {
	BaseURL        string        `envconfig:"BAZARLINE_UPSTREAM_BASE_URL" required:"true"`
	Timeout        time.Duration `envconfig:"BAZARLINE_UPSTREAM_TIMEOUT" default:"15s"`
	RetryAttempts  int           `envconfig:"BAZARLINE_UPSTREAM_RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"BAZARLINE_UPSTREAM_RETRY_BASE_DELAY" default:"200ms"`
}

type CheckoutConfig struct {
	DeliveryFee        int64         `envconfig:"BAZARLINE_CHECKOUT_DELIVERY_FEE" default:"150"`
	Currency           string        `envconfig:"BAZARLINE_CHECKOUT_CURRENCY" default:"KGS"`
	TaxRateBasisPoints int64         `envconfig:"BAZARLINE_CHECKOUT_TAX_RATE_BPS" default:"0"`
	DeliveryWindowDays int           `envconfig:"BAZARLINE_CHECKOUT_DELIVERY_WINDOW_DAYS" default:"5"`
	SessionTTL         time.Duration `envconfig:"BAZARLINE_CHECKOUT_SESSION_TTL" default:"30m"`
}

func (c CheckoutConfig) validate() error {
	if c.DeliveryFee < 0 {
		return fmt.Errorf("delivery fee must be non-negative")
	}
	if c.TaxRateBasisPoints < 0 {
		return fmt.Errorf("tax rate must be non-negative")
	}
	if c.DeliveryWindowDays <= 0 {
		return fmt.Errorf("delivery window must be positive")
	}
	return nil
}

type ManagerConfig struct {
	CheckTimeout time.Duration `envconfig:"BAZARLINE_MANAGER_CHECK_TIMEOUT" default:"10s"`
}

type PollerConfig struct {
	Interval time.Duration `envconfig:"BAZARLINE_POLLER_INTERVAL" default:"30s"`
	Enabled  bool          `envconfig:"BAZARLINE_POLLER_ENABLED" default:"true"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BAZARLINE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
