package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	Supabase      SupabaseConfig
	Algolia       AlgoliaConfig
	Search        SearchConfig
	AuthRateLimit AuthRateLimitConfig
	Cleanup       CleanupConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"CARTLY_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARTLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CARTLY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CARTLY_DB_DSN"`
	Driver string `envconfig:"CARTLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARTLY_DB_HOST"`
	LegacyPort     int    `envconfig:"CARTLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARTLY_DB_USER"`
	LegacyPassword string `envconfig:"CARTLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARTLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARTLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARTLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CARTLY_REDIS_ADDR"`
	Password     string        `envconfig:"CARTLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SupabaseConfig holds the hosted auth provider settings. JWTSecret is the
// project's HS256 signing secret so access tokens can be verified locally
// without a round trip.
type SupabaseConfig struct {
	URL           string        `envconfig:"CARTLY_SUPABASE_URL" required:"true"`
	AnonKey       string        `envconfig:"CARTLY_SUPABASE_ANON_KEY" required:"true"`
	ServiceKey    string        `envconfig:"CARTLY_SUPABASE_SERVICE_KEY"`
	JWTSecret     string        `envconfig:"CARTLY_SUPABASE_JWT_SECRET" required:"true"`
	Timeout       time.Duration `envconfig:"CARTLY_SUPABASE_TIMEOUT" default:"10s"`
	TokenCacheTTL time.Duration `envconfig:"CARTLY_SUPABASE_TOKEN_CACHE_TTL" default:"5m"`
}

// Issuer returns the expected iss claim for project access tokens.
func (s SupabaseConfig) Issuer() string {
	return strings.TrimRight(s.URL, "/") + "/auth/v1"
}

type AlgoliaConfig struct {
	AppID        string        `envconfig:"CARTLY_ALGOLIA_APP_ID" required:"true"`
	APIKey       string        `envconfig:"CARTLY_ALGOLIA_API_KEY" required:"true"`
	IndexName    string        `envconfig:"CARTLY_ALGOLIA_INDEX_NAME" default:"products"`
	BaseURL      string        `envconfig:"CARTLY_ALGOLIA_BASE_URL"`
	Timeout      time.Duration `envconfig:"CARTLY_ALGOLIA_TIMEOUT" default:"10s"`
	MaxResults   int           `envconfig:"CARTLY_ALGOLIA_MAX_RESULTS" default:"10"`
	DefaultStore int           `envconfig:"CARTLY_DEFAULT_STORE_NUMBER" default:"86"`
}

type SearchConfig struct {
	CacheTTLDays    int           `envconfig:"CARTLY_SEARCH_CACHE_TTL_DAYS" default:"7"`
	RateLimitWindow time.Duration `envconfig:"CARTLY_SEARCH_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitMax    int           `envconfig:"CARTLY_SEARCH_RATE_LIMIT_MAX" default:"30"`
}

// CacheTTL returns the search cache lifetime configured in days.
func (s SearchConfig) CacheTTL() time.Duration {
	if s.CacheTTLDays <= 0 {
		return 0
	}
	return time.Duration(s.CacheTTLDays) * 24 * time.Hour
}

type AuthRateLimitConfig struct {
	SignInWindow     time.Duration `envconfig:"CARTLY_AUTH_SIGNIN_WINDOW" default:"5m"`
	SignInIPLimit    int           `envconfig:"CARTLY_AUTH_SIGNIN_IP_LIMIT" default:"20"`
	SignInEmailLimit int           `envconfig:"CARTLY_AUTH_SIGNIN_EMAIL_LIMIT" default:"5"`
	SignUpWindow     time.Duration `envconfig:"CARTLY_AUTH_SIGNUP_WINDOW" default:"1h"`
	SignUpIPLimit    int           `envconfig:"CARTLY_AUTH_SIGNUP_IP_LIMIT" default:"10"`
	SignUpEmailLimit int           `envconfig:"CARTLY_AUTH_SIGNUP_EMAIL_LIMIT" default:"3"`
}

type CleanupConfig struct {
	AnonymousRetentionDays int           `envconfig:"CARTLY_CLEANUP_ANONYMOUS_RETENTION_DAYS" default:"30"`
	Interval               time.Duration `envconfig:"CARTLY_CLEANUP_INTERVAL" default:"1h"`
	LockTTL                time.Duration `envconfig:"CARTLY_CLEANUP_LOCK_TTL" default:"10m"`
}

// AnonymousRetention returns the retention window configured in days.
func (c CleanupConfig) AnonymousRetention() time.Duration {
	if c.AnonymousRetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.AnonymousRetentionDays) * 24 * time.Hour
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CARTLY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CARTLY_AUTO_MIGRATE" default:"false"`
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
