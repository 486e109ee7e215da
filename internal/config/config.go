package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr string `env:"ADDR" envDefault:"0.0.0.0:8080"`
	// Host is this deployment's public origin; frame actions declaring any
	// other origin are rejected.
	Host             string        `env:"HOST,required"`
	HubURL           string        `env:"HUB_URL" envDefault:"https://nemes.farcaster.xyz:2281"`
	RedisAddr        string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword    string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB"`
	CronSecret       string        `env:"CRON_SECRET,required"`
	OpenAIKey        string        `env:"OPENAI_API_KEY"`
	RolloverLookback time.Duration `env:"ROLLOVER_LOOKBACK" envDefault:"10m"`
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
