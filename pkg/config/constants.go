package config

const (
	EnvPrefix = "CARTLY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "CARTLY_APP_ENV"
	EnvPort     = "CARTLY_APP_PORT"
	EnvRedisURL = "CARTLY_REDIS_URL"

	EnvDBDSN  = "CARTLY_DB_DSN"
	EnvDBHost = "CARTLY_DB_HOST"
	EnvDBUser = "CARTLY_DB_USER"
	EnvDBName = "CARTLY_DB_NAME"

	EnvSupabaseURL       = "CARTLY_SUPABASE_URL"
	EnvSupabaseAnonKey   = "CARTLY_SUPABASE_ANON_KEY"
	EnvSupabaseJWTSecret = "CARTLY_SUPABASE_JWT_SECRET"
	EnvAlgoliaAppID      = "CARTLY_ALGOLIA_APP_ID"
	EnvAlgoliaAPIKey     = "CARTLY_ALGOLIA_API_KEY"
)

// legacyDBEnvVars are the discrete connection vars accepted when
// CARTLY_DB_DSN is unset.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
