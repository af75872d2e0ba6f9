// Package config loads runtime settings for the user management server.
// Values come from the environment (cleanenv), then command-line flags
// overlay them. The signing material itself is validated where it is
// consumed, in the auth package; config only applies the test-mode
// fallback and checks what the process cannot start without.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Environment names recognized by the server. Anything other than
// EnvTesting is treated as a real deployment: no fallback signing
// material, a database DSN is required.
const (
	EnvDev     = "dev"
	EnvTesting = "testing"
)

// Fixed signing material applied only in the testing environment.
const (
	testingSecret   = "ThisIsAVeryLongSecretKeyThatIsAtLeast32CharactersLongForTesting!"
	testingIssuer   = "TestIssuer"
	testingAudience = "TestAudience"
)

type Config struct {
	Env  string `env:"APP_ENV" env-default:"dev"`
	HTTP HTTPConfig
	PG   PGConfig
	JWT  JWTConfig
}

type HTTPConfig struct {
	Addr         string        `env:"HTTP_ADDR" env-default:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type PGConfig struct {
	DSN string `env:"DATABASE_DSN" env-default:""`
}

type JWTConfig struct {
	Secret   string        `env:"JWT_SECRET" env-default:""`
	Issuer   string        `env:"JWT_ISSUER" env-default:""`
	Audience string        `env:"JWT_AUDIENCE" env-default:""`
	TokenTTL time.Duration `env:"JWT_TOKEN_TTL" env-default:"24h"`
}

// Load builds a Config from the environment and command-line flags.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	parseFlags(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Env == EnvTesting {
		if c.JWT.Secret == "" {
			c.JWT.Secret = testingSecret
		}
		if c.JWT.Issuer == "" {
			c.JWT.Issuer = testingIssuer
		}
		if c.JWT.Audience == "" {
			c.JWT.Audience = testingAudience
		}
		return nil
	}
	if c.PG.DSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	return nil
}
