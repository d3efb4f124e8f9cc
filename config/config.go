// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Xantonozar/billkhata-go/logger"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// APIConfig holds connection details for the external BillKhata REST API.
type APIConfig struct {
	BaseURL        string `mapstructure:"BASE_URL" yaml:"base_url"`
	Key            string `mapstructure:"KEY" yaml:"key"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// RealtimeConfig selects and tunes the realtime invalidation channel.
type RealtimeConfig struct {
	// Transport selects the subscriber implementation: "redis" or "websocket".
	Transport string `mapstructure:"TRANSPORT" yaml:"transport"`
	// WebsocketURL is the gateway URL when Transport is "websocket".
	WebsocketURL string `mapstructure:"WEBSOCKET_URL" yaml:"websocket_url"`
	// EventBufferSize is the per-subscription delivery buffer.
	EventBufferSize int `mapstructure:"EVENT_BUFFER_SIZE" yaml:"event_buffer_size"`
	// SubscribeTimeoutSeconds bounds subscription establishment.
	SubscribeTimeoutSeconds int `mapstructure:"SUBSCRIBE_TIMEOUT_SECONDS" yaml:"subscribe_timeout_seconds"`
}

// RedisConfig holds Redis connection details for the pub/sub transport.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS" yaml:"address"`
	Password string `mapstructure:"PASSWORD" yaml:"password"`
	DB       int    `mapstructure:"DB" yaml:"db"`
}

// MetricsConfig holds the Prometheus endpoint address.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"ENABLED" yaml:"enabled"`
	Addr    string `mapstructure:"ADDR" yaml:"addr"`
}

// RoomConfig names the room and user the pipeline runs for.
type RoomConfig struct {
	KhataID string `mapstructure:"KHATA_ID" yaml:"khata_id"`
	UserID  string `mapstructure:"USER_ID" yaml:"user_id"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Environment Environment    `mapstructure:"ENVIRONMENT" yaml:"environment"`
	API         APIConfig      `mapstructure:"API" yaml:"api"`
	Realtime    RealtimeConfig `mapstructure:"REALTIME" yaml:"realtime"`
	Redis       RedisConfig    `mapstructure:"REDIS" yaml:"redis"`
	Metrics     MetricsConfig  `mapstructure:"METRICS" yaml:"metrics"`
	Room        RoomConfig     `mapstructure:"ROOM" yaml:"room"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, binds environment variables to config struct fields,
// unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("ENVIRONMENT", EnvDevelopment)
	v.SetDefault("API.TIMEOUT_SECONDS", 10)
	v.SetDefault("REALTIME.TRANSPORT", "redis")
	v.SetDefault("REALTIME.EVENT_BUFFER_SIZE", 100)
	v.SetDefault("REALTIME.SUBSCRIBE_TIMEOUT_SECONDS", 10)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("METRICS.ENABLED", true)
	v.SetDefault("METRICS.ADDR", ":9090")
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"ENVIRONMENT", "ENVIRONMENT"},
		{"API.BASE_URL", "BILLKHATA_API_URL"},
		{"API.KEY", "BILLKHATA_API_KEY"},
		{"API.TIMEOUT_SECONDS", "BILLKHATA_API_TIMEOUT_SECONDS"},
		{"REALTIME.TRANSPORT", "REALTIME_TRANSPORT"},
		{"REALTIME.WEBSOCKET_URL", "REALTIME_WEBSOCKET_URL"},
		{"REALTIME.EVENT_BUFFER_SIZE", "REALTIME_EVENT_BUFFER_SIZE"},
		{"REALTIME.SUBSCRIBE_TIMEOUT_SECONDS", "REALTIME_SUBSCRIBE_TIMEOUT_SECONDS"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"METRICS.ENABLED", "METRICS_ENABLED"},
		{"METRICS.ADDR", "METRICS_ADDR"},
		{"ROOM.KHATA_ID", "KHATA_ID"},
		{"ROOM.USER_ID", "KHATA_USER_ID"},
	}
	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Environment,
		"apiURL", cfg.API.BaseURL,
		"apiKey", logger.MaskAPIKey(cfg.API.Key),
		"realtimeTransport", cfg.Realtime.Transport,
	)

	return &cfg, nil
}

// Validate fails fast on configuration the application cannot run without.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("BILLKHATA_API_URL is required")
	}
	if c.Room.KhataID == "" {
		return fmt.Errorf("KHATA_ID is required")
	}
	switch c.Realtime.Transport {
	case "redis":
		if c.Redis.Address == "" {
			return fmt.Errorf("REDIS_ADDRESS is required for the redis realtime transport")
		}
	case "websocket":
		if c.Realtime.WebsocketURL == "" {
			return fmt.Errorf("REALTIME_WEBSOCKET_URL is required for the websocket realtime transport")
		}
	default:
		return fmt.Errorf("unknown realtime transport %q (expected redis or websocket)", c.Realtime.Transport)
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("API timeout must be positive")
	}
	return nil
}
