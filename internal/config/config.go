package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN         string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL         string `env:"RABBITMQ_URL,required=true"`
	RedisURL            string `env:"REDIS_URL,required=true"`
	TemplateServiceURL  string `env:"TEMPLATE_SERVICE_URL,required=true"`
	TransportWebhookURL string `env:"TRANSPORT_WEBHOOK_URL,required=true"`
	TickIntervalSeconds int    `env:"TICK_INTERVAL_SECONDS,default=300"`
	ProcessBatchSize    int    `env:"PROCESS_BATCH_SIZE,default=50"`
	RateLimitPerSec     int    `env:"RATE_LIMIT_PER_SEC,default=25"`
	APIPort             int    `env:"API_PORT,default=8080"`
	LogLevel            string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
