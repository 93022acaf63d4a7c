package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every knob the service needs. The token signing material and
// the PIX window live here, not in package globals, so tests can run several
// authorities with different keys side by side.
type Config struct {
	ServerPort       string `mapstructure:"SERVER_PORT"`
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	TokenKey         string `mapstructure:"TOKEN_SIGNING_KEY"`
	TokenPrefix      string `mapstructure:"TOKEN_PREFIX"`
	TokenTTLMinutes  int    `mapstructure:"TOKEN_TTL_MINUTES"`
	PixWindowMinutes int    `mapstructure:"PIX_WINDOW_MINUTES"`
	SinkAccount      int64  `mapstructure:"SINK_ACCOUNT"`
}

// TokenTTL returns the session token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// PixWindow returns how long a generated PIX payload stays redeemable.
func (c Config) PixWindow() time.Duration {
	return time.Duration(c.PixWindowMinutes) * time.Minute
}

// Load reads configuration from an optional .env file in path and from the
// environment. Environment variables win over file values.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("TOKEN_PREFIX", "Bearer")
	v.SetDefault("TOKEN_TTL_MINUTES", 60)
	v.SetDefault("PIX_WINDOW_MINUTES", 30)
	v.SetDefault("SINK_ACCOUNT", 99)

	for _, key := range []string{
		"SERVER_PORT", "DATABASE_URL", "TOKEN_SIGNING_KEY", "TOKEN_PREFIX",
		"TOKEN_TTL_MINUTES", "PIX_WINDOW_MINUTES", "SINK_ACCOUNT",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing .env file is fine; anything else is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.TokenKey == "" {
		return Config{}, errors.New("TOKEN_SIGNING_KEY is required")
	}
	if cfg.TokenTTLMinutes <= 0 {
		cfg.TokenTTLMinutes = 60
	}
	if cfg.PixWindowMinutes <= 0 {
		cfg.PixWindowMinutes = 30
	}

	return cfg, nil
}
