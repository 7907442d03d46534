// Package config loads the service configuration.
//
// Values are layered: built-in defaults, then an optional YAML file named by
// WTW_CONFIG_FILE, then WTW_-prefixed environment variables (a `.env` file is
// loaded into the environment first). Nested keys use a double underscore:
// WTW_SERVER__READ_TIMEOUT sets server.read_timeout.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "WTW_"
	fileEnvVar = "WTW_CONFIG_FILE"

	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	App       AppConfig       `koanf:"app" validate:"required"`
	Server    ServerConfig    `koanf:"server" validate:"required"`
	GRPC      GRPCConfig      `koanf:"grpc"`
	Storage   StorageConfig   `koanf:"storage"`
	Auth      AuthConfig      `koanf:"auth"`
	Redis     RedisConfig     `koanf:"redis"`
	Films     FilmsConfig     `koanf:"films"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Log       LogConfig       `koanf:"log"`
}

type AppConfig struct {
	Name string `koanf:"name" validate:"required"`
	Env  string `koanf:"env" validate:"required,oneof=development production test"`
}

type ServerConfig struct {
	Port               int           `koanf:"port" validate:"required,gt=0,lt=65536"`
	ReadTimeout        time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout        time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
}

// GRPCConfig configures the gRPC health endpoint. Port 0 disables it.
type GRPCConfig struct {
	Port           int           `koanf:"port" validate:"gte=0,lt=65536"`
	HealthInterval time.Duration `koanf:"health_interval" validate:"gt=0"`
}

type StorageConfig struct {
	Driver          string        `koanf:"driver" validate:"required,oneof=memory postgres"`
	DSN             string        `koanf:"dsn" validate:"required_if=Driver postgres"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
	Migrate         bool          `koanf:"migrate"`
}

type AuthConfig struct {
	JWTSecret  string        `koanf:"jwt_secret" validate:"required,min=16"`
	TokenTTL   time.Duration `koanf:"token_ttl" validate:"gt=0"`
	BcryptCost int           `koanf:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// RedisConfig points at the token revocation store. An empty address keeps
// revocations in process memory.
type RedisConfig struct {
	Address  string `koanf:"address" validate:"omitempty,hostname_port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

type FilmsConfig struct {
	PromoID      string `koanf:"promo_id" validate:"omitempty,uuid"`
	DefaultLimit int    `koanf:"default_limit" validate:"gt=0"`
	CommentLimit int    `koanf:"comment_limit" validate:"gt=0"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name" validate:"required_if=Enabled true"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `koanf:"pretty"`
}

var defaults = map[string]any{
	"app.name":                  "what-to-watch",
	"app.env":                   "development",
	"server.port":               8080,
	"server.read_timeout":       "5s",
	"server.write_timeout":      "10s",
	"server.idle_timeout":       "120s",
	"server.shutdown_timeout":   "10s",
	"grpc.port":                 9090,
	"grpc.health_interval":      "15s",
	"storage.driver":            DriverMemory,
	"storage.max_open_conns":    25,
	"storage.max_idle_conns":    25,
	"storage.conn_max_lifetime": "5m",
	"storage.migrate":           true,
	"auth.token_ttl":            "24h",
	"auth.bcrypt_cost":          10,
	"films.default_limit":       60,
	"films.comment_limit":       50,
	"telemetry.enabled":         false,
	"telemetry.service_name":    "what-to-watch",
	"log.level":                 "info",
	"log.pretty":                false,
}

// Load builds the configuration from defaults, the optional config file and
// the environment, and validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if path := os.Getenv(fileEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
