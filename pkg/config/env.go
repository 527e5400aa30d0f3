package config

const (
	EnvPrefix = "GOLDSTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "GOLDSTORE_APP_ENV"
	EnvPort     = "GOLDSTORE_APP_PORT"
	EnvLogLevel = "GOLDSTORE_LOG_LEVEL"

	EnvDBDSN  = "GOLDSTORE_DB_DSN"
	EnvDBHost = "GOLDSTORE_DB_HOST"
	EnvDBUser = "GOLDSTORE_DB_USER"
	EnvDBName = "GOLDSTORE_DB_NAME"

	EnvRedisURL = "GOLDSTORE_REDIS_URL"

	EnvChipSecretKey     = "GOLDSTORE_CHIP_SECRET_KEY"
	EnvChipWebhookSecret = "GOLDSTORE_CHIP_WEBHOOK_SECRET"

	EnvCartTokenSecret = "GOLDSTORE_CART_TOKEN_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
