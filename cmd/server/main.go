package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/tugofwar/frame/internal/adapters/handler/http"
	"github.com/tugofwar/frame/internal/adapters/hub"
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

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Fatal(err)
	}

	pollRepo := redis.NewPollRepository(client)
	scoreRepo := redis.NewScoreRepository(client)
	verifier := hub.NewVerifier(cfg.HubURL, cfg.Host)

	var renderer ports.ImageRenderer
	if cfg.OpenAIKey != "" {
		renderer, err = openai.NewRenderer(cfg.OpenAIKey)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("Warning: OPENAI_API_KEY not set, scoreboard rendering disabled")
	}

	voteService := services.NewVoteService(pollRepo)
	rolloverService := services.NewRolloverService(pollRepo, scoreRepo, renderer, cfg.RolloverLookback)

	handler := http.NewHandler(
		http.NewVoteHandler(verifier, voteService, cfg.Host),
		http.NewCronHandler(rolloverService, cfg.CronSecret),
		http.NewImageHandler(rolloverService),
	)
	server := &stdhttp.Server{Addr: cfg.Addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
