package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/config"
	"github.com/davaardana/dacoklinik-web/internal/db"
	httpx "github.com/davaardana/dacoklinik-web/internal/http"
	"github.com/davaardana/dacoklinik-web/internal/observability"
	"github.com/davaardana/dacoklinik-web/internal/queue"
	"github.com/davaardana/dacoklinik-web/internal/queue/redisclient"
	"github.com/davaardana/dacoklinik-web/internal/security"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "dacoklinik-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				tctx, cancel := config.WithTimeout(3 * time.Second)
				defer cancel()
				_ = shutdownTracer(tctx)
			}()
		}
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg.DBURL); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	hasher := security.NewHasher(cfg.BcryptCost)

	if err := db.EnsureAdminUser(ctx, pool, hasher, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	// the alert producer is best-effort; a dead redis only costs alerts
	redisClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	alerter := queue.NewProducer(redisClient, cfg.StockAlertThreshold, log, prom)

	router := httpx.NewRouter(httpx.Deps{
		Log:      log,
		Pool:     pool,
		Cfg:      cfg,
		Alerter:  alerter,
		Prom:     prom,
		Registry: registry,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(sctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
