package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Password PasswordConfig
	Dispatch DispatchConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("robocourier", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env      string `envconfig:"ROBOCOURIER_APP_ENV" default:"dev"`
	Port     string `envconfig:"ROBOCOURIER_APP_PORT" default:"8080"`
	LogLevel string `envconfig:"ROBOCOURIER_LOG_LEVEL" default:"info"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, "prod")
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	Driver      string `envconfig:"ROBOCOURIER_DB_DRIVER" default:"sqlite"`
	DSN         string `envconfig:"ROBOCOURIER_DB_DSN" default:"file:robocourier.db"`
	AutoMigrate bool   `envconfig:"ROBOCOURIER_DB_AUTO_MIGRATE" default:"true"`

	MaxOpenConns    int           `envconfig:"ROBOCOURIER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ROBOCOURIER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ROBOCOURIER_DB_CONN_MAX_LIFETIME" default:"1h"`
}

func (db DBConfig) validate() error {
	switch strings.ToLower(db.Driver) {
	case DriverPostgres, DriverSQLite:
		return nil
	}
	return fmt.Errorf("unsupported database driver %q", db.Driver)
}

type RedisConfig struct {
	URL          string        `envconfig:"ROBOCOURIER_REDIS_URL"`
	Address      string        `envconfig:"ROBOCOURIER_REDIS_ADDR"`
	Password     string        `envconfig:"ROBOCOURIER_REDIS_PASSWORD"`
	DB           int           `envconfig:"ROBOCOURIER_REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"ROBOCOURIER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ROBOCOURIER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ROBOCOURIER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type AuthConfig struct {
	// SessionBackend selects where issued bearers live: "memory" or "redis".
	SessionBackend string        `envconfig:"ROBOCOURIER_AUTH_SESSION_BACKEND" default:"memory"`
	BearerTTL      time.Duration `envconfig:"ROBOCOURIER_AUTH_BEARER_TTL" default:"24h"`
	BearerLength   int           `envconfig:"ROBOCOURIER_AUTH_BEARER_LENGTH" default:"32"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ROBOCOURIER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ROBOCOURIER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ROBOCOURIER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ROBOCOURIER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ROBOCOURIER_ARGON_KEY_LEN" default:"32"`
}

type DispatchConfig struct {
	// Permissive disables the strict successor check on PATCHed
	// transitions. The robot-busy check always applies.
	Permissive  bool `envconfig:"ROBOCOURIER_DISPATCH_PERMISSIVE" default:"false"`
	TokenLength int  `envconfig:"ROBOCOURIER_DISPATCH_TOKEN_LENGTH" default:"10"`
}
