// Package config loads the service configuration from the environment (and an
// optional .env file) through viper.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends selectable with DB_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	// EnvDevelopment is the only environment that seeds demo data by default
	// and accepts DefaultJWTSecret.
	EnvDevelopment   = "development"
	DefaultJWTSecret = "change-me"
)

// Config groups every setting of the service.
type Config struct {
	App      AppConfig
	JWT      JWTConfig
	DB       DBConfig
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
	Forms    FormsConfig
}

// AppConfig holds process level settings.
type AppConfig struct {
	Port         string
	Env          string // development -> console logs, anything else -> JSON
	LogLevel     string
	SeedDemoData bool
}

// JWTConfig holds the signing secret and token lifetime.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// DBConfig selects the repository backend. With DriverMemory the DSN is ignored.
type DBConfig struct {
	Driver string
	DSN    string
}

// RabbitMQConfig enables rating event publishing when URL is set.
type RabbitMQConfig struct {
	URL string
}

// RedisConfig enables the rating summary cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// FormsConfig tunes form submission.
type FormsConfig struct {
	SubmitDelay time.Duration
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("DB_DRIVER", DriverMemory)
	v.SetDefault("DATABASE_DSN", "file:storerating.db?cache=shared")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TTL", "5m")
	v.SetDefault("SUBMIT_DELAY", "0s")
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside development.
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Port:         v.GetString("APP_PORT"),
			Env:          v.GetString("APP_ENV"),
			LogLevel:     v.GetString("LOG_LEVEL"),
			SeedDemoData: seedDemoData(v),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		DB: DBConfig{
			Driver: v.GetString("DB_DRIVER"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		RabbitMQ: RabbitMQConfig{URL: v.GetString("RABBITMQ_URL")},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      v.GetDuration("REDIS_TTL"),
		},
		Forms: FormsConfig{SubmitDelay: v.GetDuration("SUBMIT_DELAY")},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// seedDemoData follows SEED_DEMO_DATA when given and otherwise seeds only in
// development.
func seedDemoData(v *viper.Viper) bool {
	if v.GetString("SEED_DEMO_DATA") != "" {
		return v.GetBool("SEED_DEMO_DATA")
	}
	return v.GetString("APP_ENV") == EnvDevelopment
}

// UsesDefaultJWTSecret reports whether tokens are signed with the built-in secret.
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWT.Secret == DefaultJWTSecret
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: JWT_SECRET must not be empty")
	}
	if c.UsesDefaultJWTSecret() && c.App.Env != EnvDevelopment {
		return fmt.Errorf("config: JWT_SECRET must be set when APP_ENV is %q", c.App.Env)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("config: JWT_TTL must be positive, got %s", c.JWT.TTL)
	}
	switch c.DB.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Forms.SubmitDelay < 0 {
		return fmt.Errorf("config: SUBMIT_DELAY must not be negative")
	}
	return nil
}
