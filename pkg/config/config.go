package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix  = "HANDICRAFT"
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Inventory InventoryConfig
}

// Load reads the process environment. Call godotenv.Load first when a .env file is used.
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
	Env          string `envconfig:"HANDICRAFT_APP_ENV" default:"dev"`
	Name         string `envconfig:"HANDICRAFT_APP_NAME" default:"Handicraft Ops v1.0"`
	Port         string `envconfig:"HANDICRAFT_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"HANDICRAFT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HANDICRAFT_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"HANDICRAFT_AUTO_MIGRATE" default:"false"`
	SeedDefaults bool   `envconfig:"HANDICRAFT_SEED_DEFAULTS" default:"true"`

	AdminEmail    string `envconfig:"HANDICRAFT_ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"HANDICRAFT_ADMIN_PASSWORD" default:"admin123"`
	CORSOrigins   string `envconfig:"HANDICRAFT_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"HANDICRAFT_DB_DSN"`

	Host     string `envconfig:"HANDICRAFT_DB_HOST"`
	Port     int    `envconfig:"HANDICRAFT_DB_PORT" default:"5432"`
	User     string `envconfig:"HANDICRAFT_DB_USER"`
	Password string `envconfig:"HANDICRAFT_DB_PASSWORD"`
	Name     string `envconfig:"HANDICRAFT_DB_NAME"`
	SSLMode  string `envconfig:"HANDICRAFT_DB_SSLMODE" default:"disable"`
	TimeZone string `envconfig:"HANDICRAFT_DB_TIMEZONE" default:"UTC"`

	MaxOpenConns    int           `envconfig:"HANDICRAFT_DB_MAX_OPEN_CONNS" default:"100"`
	MaxIdleConns    int           `envconfig:"HANDICRAFT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HANDICRAFT_DB_CONN_MAX_LIFETIME" default:"1h"`
	SlowThreshold   time.Duration `envconfig:"HANDICRAFT_DB_SLOW_THRESHOLD" default:"1s"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database config: set HANDICRAFT_DB_DSN or HANDICRAFT_DB_HOST/USER/NAME")
	}
	d.DSN = fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
	return nil
}

// RedisConfig is optional; an empty URL and address disables idempotency replay.
type RedisConfig struct {
	URL            string        `envconfig:"HANDICRAFT_REDIS_URL"`
	Address        string        `envconfig:"HANDICRAFT_REDIS_ADDR"`
	Password       string        `envconfig:"HANDICRAFT_REDIS_PASSWORD"`
	DB             int           `envconfig:"HANDICRAFT_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"HANDICRAFT_REDIS_POOL_SIZE" default:"10"`
	DialTimeout    time.Duration `envconfig:"HANDICRAFT_REDIS_DIAL_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"HANDICRAFT_IDEMPOTENCY_TTL" default:"24h"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret          string `envconfig:"HANDICRAFT_JWT_SECRET" default:"change-me-in-production"`
	Issuer          string `envconfig:"HANDICRAFT_JWT_ISSUER" default:"go-handicraft-ops"`
	ExpirationHours int    `envconfig:"HANDICRAFT_JWT_EXPIRATION_HOURS" default:"24"`
}

func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(j.ExpirationHours) * time.Hour
}

type InventoryConfig struct {
	LowStockThreshold int `envconfig:"HANDICRAFT_LOW_STOCK_THRESHOLD" default:"10"`
}
