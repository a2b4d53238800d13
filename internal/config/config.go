package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	BackendURL      string   `mapstructure:"BACKEND_URL"`
	BackendTimeout  int      `mapstructure:"BACKEND_TIMEOUT_SECONDS"`
	SessionSecret   string   `mapstructure:"SESSION_SECRET"`
	SessionTTLHours int      `mapstructure:"SESSION_TTL_HOURS"`
	RoomCapacity    int      `mapstructure:"ROOM_CAPACITY"`
	LocalitiesURL   string   `mapstructure:"LOCALITIES_URL"`
	CountriesURL    string   `mapstructure:"COUNTRIES_URL"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("BACKEND_TIMEOUT_SECONDS", 15)
	v.SetDefault("SESSION_TTL_HOURS", 8)
	v.SetDefault("ROOM_CAPACITY", 4)
	v.SetDefault("LOCALITIES_URL", "https://servicodados.ibge.gov.br/api/v1/localidades")
	v.SetDefault("COUNTRIES_URL", "https://restcountries.com/v3.1")
	v.SetDefault("CORS_ORIGINS", "http://localhost:4200")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("BACKEND_URL")
	v.BindEnv("BACKEND_TIMEOUT_SECONDS")
	v.BindEnv("SESSION_SECRET")
	v.BindEnv("SESSION_TTL_HOURS")
	v.BindEnv("ROOM_CAPACITY")
	v.BindEnv("LOCALITIES_URL")
	v.BindEnv("COUNTRIES_URL")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the gateway is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// BackendClientTimeout returns the upstream HTTP timeout as a duration.
func (c *Config) BackendClientTimeout() time.Duration {
	if c.BackendTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.BackendTimeout) * time.Second
}

// SessionTTL returns the gateway session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Validate checks that the configuration is safe to run. In production a
// real SESSION_SECRET must be set so that gateway session tokens cannot be
// forged; in development a throwaway secret is generated at startup.
func (c *Config) Validate() error {
	if c.IsProduction() && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required in production")
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters, got %d", len(c.SessionSecret))
	}
	if c.RoomCapacity <= 0 {
		return fmt.Errorf("ROOM_CAPACITY must be positive, got %d", c.RoomCapacity)
	}
	return nil
}
