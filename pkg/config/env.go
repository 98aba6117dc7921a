package config

const (
	EnvPrefix = "TRAILTEAMS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv     = "TRAILTEAMS_APP_ENV"
	EnvPort       = "TRAILTEAMS_APP_PORT"
	EnvLogLevel   = "TRAILTEAMS_LOG_LEVEL"
	EnvDBDSN      = "TRAILTEAMS_DB_DSN"
	EnvDBDriver   = "TRAILTEAMS_DB_DRIVER"
	EnvDBHost     = "TRAILTEAMS_DB_HOST"
	EnvDBUser     = "TRAILTEAMS_DB_USER"
	EnvDBName     = "TRAILTEAMS_DB_NAME"
	EnvRedisURL   = "TRAILTEAMS_REDIS_URL"
	EnvJWTSecret  = "TRAILTEAMS_JWT_SECRET"
	EnvJWTIssuer  = "TRAILTEAMS_JWT_ISSUER"
	EnvJWTExpMins = "TRAILTEAMS_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite  = "TRAILTEAMS_USE_SQLITE"

	EnvPubSubTeamEventsTopic = "TRAILTEAMS_PUBSUB_TEAM_EVENTS_TOPIC"
	EnvJoinRateLimitWindow   = "TRAILTEAMS_JOIN_RATE_LIMIT_WINDOW"
)

var hostDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
