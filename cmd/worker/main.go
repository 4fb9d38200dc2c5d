package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/queue"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewGorm(cfg)
	if err != nil {
		log.Fatalf("Failed to open ORM connection: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	twists, err := service.NewTwistService()
	if err != nil {
		log.Fatalf("Failed to create twist service: %v", err)
	}

	// The worker never enqueues follow-up jobs, so no notifier here.
	recipes := service.NewRecipeService(db, nil)
	w := worker.New(recipes, twists, queue.New(redisClient))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Worker error: %v", err)
	}
	log.Println("Worker stopped")
}
