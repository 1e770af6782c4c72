package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix  = ""
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	JWT           JWTConfig
	Redis         RedisConfig
	AuthRateLimit AuthRateLimitConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CLINICDESK_APP_ENV" default:"dev"`
	Port         string `envconfig:"CLINICDESK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CLINICDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CLINICDESK_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"CLINICDESK_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the configured comma-separated origin list.
func (a AppConfig) AllowedOrigins() []string {
	parts := strings.Split(a.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

type DBConfig struct {
	Driver string `envconfig:"CLINICDESK_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"CLINICDESK_DB_DSN" default:"clinicdesk.db"`

	MaxOpenConns    int           `envconfig:"CLINICDESK_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"CLINICDESK_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"CLINICDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLINICDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate() error {
	switch db.Driver {
	case DBDriverSQLite, DBDriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
	if db.DSN == "" {
		return fmt.Errorf("CLINICDESK_DB_DSN is required")
	}
	return nil
}

type JWTConfig struct {
	Secret            string `envconfig:"CLINICDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CLINICDESK_JWT_ISSUER" default:"clinicdesk"`
	ExpirationMinutes int    `envconfig:"CLINICDESK_JWT_EXPIRATION_MINUTES" default:"480"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CLINICDESK_REDIS_URL"`
	PoolSize     int           `envconfig:"CLINICDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLINICDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLINICDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLINICDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CLINICDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CLINICDESK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CLINICDESK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CLINICDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CLINICDESK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CLINICDESK_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CLINICDESK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CronConfig struct {
	Enabled         bool          `envconfig:"CLINICDESK_CRON_ENABLED" default:"true"`
	Interval        time.Duration `envconfig:"CLINICDESK_CRON_INTERVAL" default:"1h"`
	ShutdownTimeout time.Duration `envconfig:"CLINICDESK_CRON_SHUTDOWN_TIMEOUT" default:"30s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CLINICDESK_AUTO_MIGRATE" default:"false"`
}
