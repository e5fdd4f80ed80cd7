package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/auth"
	"github.com/davaardana/dacoklinik-web/internal/cache"
	"github.com/davaardana/dacoklinik-web/internal/config"
	"github.com/davaardana/dacoklinik-web/internal/http/handlers"
	"github.com/davaardana/dacoklinik-web/internal/http/middlewares"
	"github.com/davaardana/dacoklinik-web/internal/observability"
	"github.com/davaardana/dacoklinik-web/internal/queue"
	"github.com/davaardana/dacoklinik-web/internal/repo/postgres"
	"github.com/davaardana/dacoklinik-web/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB, the forms are small

// Deps carries the process-wide collaborators the router wires into
// handlers. Alerter may be nil when redis is not configured.
type Deps struct {
	Log     *slog.Logger
	Pool    *pgxpool.Pool
	Cfg     config.Config
	Alerter *queue.Producer

	// optional shared metrics; the router builds its own registry when unset
	Prom     *observability.Prom
	Registry *prometheus.Registry
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("dacoklinik-api"))

	registry := d.Registry
	prom := d.Prom

	if registry == nil || prom == nil {
		// own registry so tests can build routers repeatedly
		registry = prometheus.NewRegistry()
		prom = observability.NewProm(registry)
	}
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	ping := func() error {
		if d.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return d.Pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/api/health", health.Health)

	// wire up repositories

	usersRepo := postgres.NewUsersRepo(d.Pool)
	recordsRepo := postgres.NewRecordsRepo(d.Pool)
	medicinesRepo := postgres.NewMedicinesRepo(d.Pool)

	jwtManager := auth.NewManager(d.Cfg.JWTSecret, d.Cfg.TokenTTL)
	hasher := security.NewHasher(d.Cfg.BcryptCost)
	summaryCache := cache.New(30 * time.Second)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, hasher)
	recordsHandler := handlers.NewRecordsHandler(recordsRepo, summaryCache)
	medicinesHandler := handlers.NewMedicinesHandler(medicinesRepo, d.Alerter)
	dashboardHandler := handlers.NewDashboardHandler(recordsRepo, summaryCache, prom)

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
		authGroup.PUT("/change-password", authHandler.ChangePassword)
	}

	guard := middlewares.NewAuthMiddleware(jwtManager)

	api := r.Group("/api", guard.RequireAuth())
	{
		api.GET("/medical", recordsHandler.ListRecords)
		api.POST("/medical", recordsHandler.CreateRecord)
		api.PUT("/medical/:id", recordsHandler.UpdateRecord)
		api.DELETE("/medical/:id", recordsHandler.DeleteRecord)

		api.GET("/medicine", medicinesHandler.ListMedicines)
		api.POST("/medicine", medicinesHandler.CreateMedicine)
		api.PUT("/medicine/:id", medicinesHandler.UpdateMedicine)
		api.DELETE("/medicine/:id", medicinesHandler.DeleteMedicine)

		api.GET("/dashboard/summary", dashboardHandler.Summary)
	}

	return r
}
