package config

const (
	EnvPrefix = "FEEDMILL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv    = "FEEDMILL_APP_ENV"
	EnvPort      = "FEEDMILL_APP_PORT"
	EnvDBDSN     = "FEEDMILL_DB_DSN"
	EnvDBHost    = "FEEDMILL_DB_HOST"
	EnvDBUser    = "FEEDMILL_DB_USER"
	EnvDBName    = "FEEDMILL_DB_NAME"
	EnvUseSQLite = "FEEDMILL_USE_SQLITE"

	EnvRedisURL          = "FEEDMILL_REDIS_URL"
	EnvJWTSecret         = "FEEDMILL_JWT_SECRET"
	EnvCustomerJWTSecret = "FEEDMILL_CUSTOMER_JWT_SECRET"
	EnvJWTIssuer         = "FEEDMILL_JWT_ISSUER"
	EnvJWTExpMins        = "FEEDMILL_JWT_EXPIRATION_MINUTES"
	EnvCORSOrigins       = "FEEDMILL_CORS_ALLOWED_ORIGINS"

	defaultSQLiteDSN = "file:feedmill.db?_foreign_keys=on"
)
