package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type Config struct {
	Port                  string        `env:"PORT,default=8080"`
	DatabaseURL           string        `env:"DATABASE_URL,required=true"`
	RedisURL              string        `env:"REDIS_URL,required=true"`
	JWTSecret             string        `env:"JWT_SECRET,required=true"`
	TokenTTL              time.Duration `env:"TOKEN_TTL,default=24h"`
	LogLevel              string        `env:"LOG_LEVEL,default=info"`
	AllowedOrigins        string        `env:"ALLOWED_ORIGINS"`
	SendBuffer            int           `env:"SEND_BUFFER,default=256"`
	NotificationPageLimit int           `env:"NOTIFICATION_PAGE_LIMIT,default=50"`
}

// Load reads .env.local or .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		// a missing .env is fine, variables may come from the environment
		_ = godotenv.Load()
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SendBuffer <= 0 {
		return fmt.Errorf("SEND_BUFFER must be positive, got %d", c.SendBuffer)
	}
	if c.NotificationPageLimit <= 0 {
		return fmt.Errorf("NOTIFICATION_PAGE_LIMIT must be positive, got %d", c.NotificationPageLimit)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// Origins returns the configured websocket origins. Empty means any origin is accepted.
func (c *Config) Origins() []string {
	origins := lo.Compact(lo.Map(strings.Split(c.AllowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))
	if len(origins) == 0 {
		return nil
	}
	return origins
}
