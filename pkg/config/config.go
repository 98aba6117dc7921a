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
	JWT           JWTConfig
	FeatureFlags  FeatureFlagsConfig
	Identity      IdentityConfig
	Teams         TeamsConfig
	JoinRateLimit JoinRateLimitConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRAILTEAMS_APP_ENV" required:"true"`
	Port         string `envconfig:"TRAILTEAMS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRAILTEAMS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRAILTEAMS_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"TRAILTEAMS_LOG_FORMAT" default:"json"`
	CORSOrigins  string `envconfig:"TRAILTEAMS_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma-separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	origins := []string{}
	for _, part := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

type ServiceConfig struct {
	Kind string `envconfig:"TRAILTEAMS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TRAILTEAMS_DB_DSN"`
	Driver string `envconfig:"TRAILTEAMS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TRAILTEAMS_DB_HOST"`
	Port     int    `envconfig:"TRAILTEAMS_DB_PORT" default:"5432"`
	User     string `envconfig:"TRAILTEAMS_DB_USER"`
	Password string `envconfig:"TRAILTEAMS_DB_PASSWORD"`
	Name     string `envconfig:"TRAILTEAMS_DB_NAME"`
	SSLMode  string `envconfig:"TRAILTEAMS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRAILTEAMS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRAILTEAMS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRAILTEAMS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRAILTEAMS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQuery logs statements slower than this at warn level; zero disables it.
	SlowQuery time.Duration `envconfig:"TRAILTEAMS_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRAILTEAMS_REDIS_URL"`
	Address      string        `envconfig:"TRAILTEAMS_REDIS_ADDR"`
	Password     string        `envconfig:"TRAILTEAMS_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRAILTEAMS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRAILTEAMS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRAILTEAMS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRAILTEAMS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRAILTEAMS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRAILTEAMS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TRAILTEAMS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TRAILTEAMS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TRAILTEAMS_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite         bool `envconfig:"TRAILTEAMS_USE_SQLITE" default:"false"`
	AutoMigrate       bool `envconfig:"TRAILTEAMS_AUTO_MIGRATE" default:"false"`
	AllowVisitorIDHdr bool `envconfig:"TRAILTEAMS_ALLOW_VISITOR_HEADER" default:"true"`
}

// IdentityConfig tunes the open id to user id resolver.
type IdentityConfig struct {
	CacheTTL        time.Duration `envconfig:"TRAILTEAMS_IDENTITY_CACHE_TTL" default:"24h"`
	DefaultNickname string        `envconfig:"TRAILTEAMS_IDENTITY_DEFAULT_NICKNAME" default:"徒步爱好者"`
}

type TeamsConfig struct {
	InviteCodeAttempts int           `envconfig:"TRAILTEAMS_INVITE_CODE_ATTEMPTS" default:"10"`
	IdempotencyTTL     time.Duration `envconfig:"TRAILTEAMS_IDEMPOTENCY_TTL" default:"24h"`
}

// JoinRateLimitConfig throttles invite-code guessing per caller.
type JoinRateLimitConfig struct {
	Window    time.Duration `envconfig:"TRAILTEAMS_JOIN_RATE_LIMIT_WINDOW" default:"1m"`
	UserLimit int           `envconfig:"TRAILTEAMS_JOIN_RATE_LIMIT_USER_LIMIT" default:"10"`
	IPLimit   int           `envconfig:"TRAILTEAMS_JOIN_RATE_LIMIT_IP_LIMIT" default:"60"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"TRAILTEAMS_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	TeamEventsTopic        string `envconfig:"TRAILTEAMS_PUBSUB_TEAM_EVENTS_TOPIC" default:"tt-team-events"`
	TeamEventsSubscription string `envconfig:"TRAILTEAMS_PUBSUB_TEAM_EVENTS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TRAILTEAMS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TRAILTEAMS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TRAILTEAMS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite || strings.EqualFold(db.Driver, DriverSQLite) {
		db.DSN = "file:trailteams.db?cache=shared&_foreign_keys=on"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range hostDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
