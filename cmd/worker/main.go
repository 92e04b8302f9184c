package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ets-berkeley-edu/ripley/internal/canvas"
	"github.com/ets-berkeley-edu/ripley/internal/config"
	"github.com/ets-berkeley-edu/ripley/internal/dataloch"
	"github.com/ets-berkeley-edu/ripley/internal/jobs"
)

func init() {
	if _, err := os.Stat("/.dockerenv"); os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			log.Printf("no .env file loaded: %v\n", err)
		}
	}
	log.SetPrefix("[ripley-worker] ")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v\n", err)
	}

	loch, err := dataloch.New(cfg.DataLochDSN)
	if err != nil {
		log.Fatalf("error initializing data loch client: %v\n", err)
	}
	defer loch.Close()

	queue := jobs.NewQueue(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	runner := &jobs.Runner{
		Canvas: canvas.New(cfg.CanvasAPIURL, cfg.CanvasAccessToken, cfg.CanvasAccountID),
		Loch:   loch,
	}
	worker := jobs.NewWorker(queue)
	runner.RegisterAll(worker)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("worker error: %v\n", err)
	}
	log.Println("worker exiting")
}
