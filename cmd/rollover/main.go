// Command rollover runs one rollover pass outside the HTTP trigger, for
// manual invocation or a host cron job.
package main

import (
	"context"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/tugofwar/frame/internal/adapters/renderer/openai"
	"github.com/tugofwar/frame/internal/adapters/repository/redis"
	"github.com/tugofwar/frame/internal/config"
	"github.com/tugofwar/frame/internal/core/ports"
	"github.com/tugofwar/frame/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer client.Close()

	var renderer ports.ImageRenderer
	if cfg.OpenAIKey != "" {
		renderer, err = openai.NewRenderer(cfg.OpenAIKey)
		if err != nil {
			log.Fatal(err)
		}
	}

	pollRepo := redis.NewPollRepository(client)
	scoreRepo := redis.NewScoreRepository(client)
	rolloverService := services.NewRolloverService(pollRepo, scoreRepo, renderer, cfg.RolloverLookback)

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Println("Starting interval rollover job...")

	if err := rolloverService.Rollover(ctx, time.Now()); err != nil {
		log.Fatalf("Error rolling over interval: %v", err)
	}

	log.Println("Interval rollover completed successfully.")
}
