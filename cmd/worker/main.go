package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/config"
	"github.com/davaardana/dacoklinik-web/internal/notifications"
	"github.com/davaardana/dacoklinik-web/internal/observability"
	"github.com/davaardana/dacoklinik-web/internal/queue/redisclient"
	"github.com/davaardana/dacoklinik-web/internal/queue/worker"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	client := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}

	prom := observability.NewProm(prometheus.NewRegistry())

	w := worker.New(worker.Config{
		PopTimeout: 2 * time.Second,
	}, client, notifications.NewLogNotifier(log), log, prom)

	log.Info("worker has started")

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	log.Info("worker shutdown complete")
}
