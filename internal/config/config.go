package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DataConfig struct {
	// Dir holds the four collection files (users.json, products.json,
	// carts.json, orders.json). Created and seeded on first run.
	Dir string `env:"DATA_DIR" envDefault:"./data"`
}

type RedisConfig struct {
	// Addr empty disables the product cache and worker idempotency checks.
	Addr     string `env:"REDIS_ADDR" envDefault:""`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type RabbitMQConfig struct {
	// URL empty disables order event publishing and the notifier worker.
	URL string `env:"RABBITMQ_URL" envDefault:""`
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET" envDefault:"super-secret-key"`
	Expiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
