package config

// EnvPrefix is passed to envconfig; every field carries its full POS_* name.
const EnvPrefix = "POS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	IDAllocatorSequence = "sequence"
	IDAllocatorRedis    = "redis"
)

const (
	EnvAppEnv   = "POS_APP_ENV"
	EnvPort     = "POS_APP_PORT"
	EnvLogLevel = "POS_LOG_LEVEL"

	EnvDBDSN    = "POS_DB_DSN"
	EnvDBDriver = "POS_DB_DRIVER"
	EnvDBHost   = "POS_DB_HOST"
	EnvDBPort   = "POS_DB_PORT"
	EnvDBUser   = "POS_DB_USER"
	EnvDBPass   = "POS_DB_PASSWORD"
	EnvDBName   = "POS_DB_NAME"

	EnvRedisURL = "POS_REDIS_URL"

	EnvFulfillmentIDAllocator    = "POS_FULFILLMENT_ID_ALLOCATOR"
	EnvFulfillmentMaxAttempts    = "POS_FULFILLMENT_MAX_ALLOC_ATTEMPTS"
	EnvReconciliationConcurrency = "POS_RECONCILIATION_CONCURRENCY"
	EnvCORSAllowedOrigins        = "POS_CORS_ALLOWED_ORIGINS"
	EnvCronLowStockThreshold     = "POS_CRON_LOW_STOCK_THRESHOLD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
