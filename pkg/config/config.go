package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Chip         ChipConfig
	Cart         CartConfig
	Cron         CronConfig
	Storefront   StorefrontConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GOLDSTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"GOLDSTORE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GOLDSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GOLDSTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	DSN    string `envconfig:"GOLDSTORE_DB_DSN"`
	Driver string `envconfig:"GOLDSTORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GOLDSTORE_DB_HOST"`
	LegacyPort     int    `envconfig:"GOLDSTORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GOLDSTORE_DB_USER"`
	LegacyPassword string `envconfig:"GOLDSTORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"GOLDSTORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"GOLDSTORE_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"GOLDSTORE_SQLITE_PATH" default:"goldstore.db"`

	MaxOpenConns    int           `envconfig:"GOLDSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GOLDSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GOLDSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GOLDSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GOLDSTORE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GOLDSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"GOLDSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GOLDSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GOLDSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GOLDSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GOLDSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GOLDSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GOLDSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GOLDSTORE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GOLDSTORE_AUTO_MIGRATE" default:"false"`
	SetupRoutes bool `envconfig:"GOLDSTORE_SETUP_ROUTES" default:"true"`
}

// ChipConfig holds the payment gateway credentials.
type ChipConfig struct {
	BaseURL       string        `envconfig:"GOLDSTORE_CHIP_BASE_URL" default:"https://api.chip-in.asia/api"`
	SecretKey     string        `envconfig:"GOLDSTORE_CHIP_SECRET_KEY" required:"true"`
	WebhookSecret string        `envconfig:"GOLDSTORE_CHIP_WEBHOOK_SECRET" required:"true"`
	Timeout       time.Duration `envconfig:"GOLDSTORE_CHIP_TIMEOUT" default:"10s"`
	WebhookTTL    time.Duration `envconfig:"GOLDSTORE_CHIP_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

// CartConfig signs the cart session tokens handed to anonymous shoppers.
type CartConfig struct {
	TokenSecret string        `envconfig:"GOLDSTORE_CART_TOKEN_SECRET" required:"true"`
	TokenIssuer string        `envconfig:"GOLDSTORE_CART_TOKEN_ISSUER" default:"goldstore-cart"`
	TokenTTL    time.Duration `envconfig:"GOLDSTORE_CART_TOKEN_TTL" default:"720h"`
	StorageTTL  time.Duration `envconfig:"GOLDSTORE_CART_STORAGE_TTL" default:"720h"`
}

// RateLimitConfig throttles the order-creating endpoints per client IP and customer email.
type RateLimitConfig struct {
	Window     time.Duration `envconfig:"GOLDSTORE_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit    int           `envconfig:"GOLDSTORE_RATE_LIMIT_IP" default:"30"`
	EmailLimit int           `envconfig:"GOLDSTORE_RATE_LIMIT_EMAIL" default:"10"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"GOLDSTORE_CRON_INTERVAL" default:"15m"`
	ReconcileAfter   time.Duration `envconfig:"GOLDSTORE_CRON_RECONCILE_AFTER" default:"30m"`
	ReconcileWindow  time.Duration `envconfig:"GOLDSTORE_CRON_RECONCILE_WINDOW" default:"72h"`
	ReconcileLimit   int           `envconfig:"GOLDSTORE_CRON_RECONCILE_LIMIT" default:"50"`
	PriceSampler     bool          `envconfig:"GOLDSTORE_CRON_PRICE_SAMPLER" default:"true"`
	PaymentReconcile bool          `envconfig:"GOLDSTORE_CRON_PAYMENT_RECONCILE" default:"true"`
}

type StorefrontConfig struct {
	PublicOrigin string   `envconfig:"GOLDSTORE_PUBLIC_ORIGIN" default:"http://localhost:3000"`
	CORSOrigins  []string `envconfig:"GOLDSTORE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if strings.EqualFold(db.Driver, DriverSQLite) {
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
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
