package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nulzo/task-router-api/internal/core/domain"
)

type Config struct {
	Server    ServerConfig          `mapstructure:"server"`
	Database  DatabaseConfig        `mapstructure:"database"`
	Redis     RedisConfig           `mapstructure:"redis"`
	RateLimit RateLimitConfig       `mapstructure:"rate_limit"`
	Auth      AuthConfig            `mapstructure:"auth"`
	Transport TransportConfig       `mapstructure:"transport"`
	Sim       SimConfig             `mapstructure:"sim"`
	Providers []domain.ProviderSpec `mapstructure:"providers"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type AuthConfig struct {
	// StaticKeys are accepted alongside database-issued keys.
	StaticKeys []string `mapstructure:"static_keys"`
	Enabled    bool     `mapstructure:"enabled"`
}

// TransportConfig selects how provider calls leave the process: the
// simulated transport ("sim", default) or OpenAI-compatible HTTP
// endpoints ("openai").
type TransportConfig struct {
	Mode      string                    `mapstructure:"mode"`
	Endpoints map[string]EndpointConfig `mapstructure:"endpoints"`
}

type EndpointConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	APIKey       string `mapstructure:"api_key"`
	Organization string `mapstructure:"organization"`
}

// SimConfig shapes the simulated transport used by the dev server.
type SimConfig struct {
	Seed      int64                  `mapstructure:"seed"`
	Providers map[string]SimBehavior `mapstructure:"providers"`
}

type SimBehavior struct {
	LatencyMS   int     `mapstructure:"latency_ms"`
	JitterMS    int     `mapstructure:"jitter_ms"`
	FailureRate float64 `mapstructure:"failure_rate"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./internal/config")

	// Default Values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("database.dsn", "router.db")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("transport.mode", "sim")
	v.SetDefault("sim.seed", 1)

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile := v.GetString("CONFIG_FILE"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// Resolve ENV: indirected transport credentials
	for name, ep := range cfg.Transport.Endpoints {
		if strings.HasPrefix(ep.APIKey, "ENV:") {
			envVar := strings.TrimPrefix(ep.APIKey, "ENV:")
			// Check process environment first (explicit override)
			val := os.Getenv(envVar)
			if val == "" {
				val = v.GetString(envVar)
			}
			ep.APIKey = val
			cfg.Transport.Endpoints[name] = ep
		}
	}

	return &cfg, nil
}
