package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App            AppConfig
	DB             DBConfig
	Redis          RedisConfig
	FeatureFlags   FeatureFlagsConfig
	Fulfillment    FulfillmentConfig
	Reconciliation ReconciliationConfig
	CORS           CORSConfig
	Cron           CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if !c.DB.IsSQLite() && !strings.EqualFold(c.DB.Driver, DBDriverPostgres) {
		return fmt.Errorf("%s must be %q or %q", EnvDBDriver, DBDriverPostgres, DBDriverSQLite)
	}
	switch strings.ToLower(c.Fulfillment.IDAllocator) {
	case IDAllocatorSequence, IDAllocatorRedis:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvFulfillmentIDAllocator, IDAllocatorSequence, IDAllocatorRedis)
	}
	if c.DB.IsSQLite() && strings.EqualFold(c.Fulfillment.IDAllocator, IDAllocatorSequence) {
		return fmt.Errorf("%s=%s requires postgres; use %q with sqlite", EnvFulfillmentIDAllocator, IDAllocatorSequence, IDAllocatorRedis)
	}
	if c.Fulfillment.MaxAllocAttempts < 1 {
		return fmt.Errorf("%s must be at least 1", EnvFulfillmentMaxAttempts)
	}
	if c.Reconciliation.Concurrency < 1 {
		return fmt.Errorf("%s must be at least 1", EnvReconciliationConcurrency)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"POS_APP_ENV" required:"true"`
	Port         string `envconfig:"POS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"POS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"POS_DB_DSN"`
	Driver string `envconfig:"POS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"POS_DB_HOST"`
	LegacyPort     int    `envconfig:"POS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"POS_DB_USER"`
	LegacyPassword string `envconfig:"POS_DB_PASSWORD"`
	LegacyName     string `envconfig:"POS_DB_NAME"`
	LegacySSLMode  string `envconfig:"POS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"POS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the store runs on the embedded SQLite driver (kiosk mode).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"POS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"POS_REDIS_ADDR"`
	Password     string        `envconfig:"POS_REDIS_PASSWORD"`
	DB           int           `envconfig:"POS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"POS_AUTO_MIGRATE" default:"false"`
}

type FulfillmentConfig struct {
	IDAllocator      string        `envconfig:"POS_FULFILLMENT_ID_ALLOCATOR" default:"sequence"`
	MaxAllocAttempts int           `envconfig:"POS_FULFILLMENT_MAX_ALLOC_ATTEMPTS" default:"3"`
	IdempotencyTTL   time.Duration `envconfig:"POS_FULFILLMENT_IDEMPOTENCY_TTL" default:"24h"`
}

type ReconciliationConfig struct {
	Concurrency  int           `envconfig:"POS_RECONCILIATION_CONCURRENCY" default:"8"`
	Timeout      time.Duration `envconfig:"POS_RECONCILIATION_TIMEOUT" default:"30s"`
	DrainTimeout time.Duration `envconfig:"POS_RECONCILIATION_DRAIN_TIMEOUT" default:"15s"`
	MaxAttempts  int           `envconfig:"POS_RECONCILIATION_MAX_ATTEMPTS" default:"3"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"POS_CORS_ALLOWED_ORIGINS" default:"*"`
}

type CronConfig struct {
	Interval          time.Duration `envconfig:"POS_CRON_INTERVAL" default:"15m"`
	LockTTL           time.Duration `envconfig:"POS_CRON_LOCK_TTL" default:"5m"`
	LowStockThreshold int64         `envconfig:"POS_CRON_LOW_STOCK_THRESHOLD" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DBDriverSQLite)
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
