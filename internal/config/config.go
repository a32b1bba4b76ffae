package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN     string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL     string `env:"RABBITMQ_URL,required=true"`
	RedisURL        string `env:"REDIS_URL,required=true"`
	AuthServerURL   string `env:"AUTH_SERVER_URL"`
	RateLimitPerSec int    `env:"RATE_LIMIT_PER_SEC,default=60"`
	APIPort         int    `env:"API_PORT,default=8080"`
	MetricsPort     int    `env:"METRICS_PORT,default=9100"`
	LogLevel        string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
