package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/api"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/api/handler"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/api/middleware"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/application"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/config"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/infrastructure/notification"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/infrastructure/postgres"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/infrastructure/proof"
	redisinfra "github.com/pet-informatica-uem/site-pet-backend-sub000/internal/infrastructure/redis"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/pkg/logger"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/pkg/metrics"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/worker"
)

func main() {
	cfg := config.Load()
	defer logger.Sync()

	// PostgreSQL
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("falha ao conectar no PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("falha ao executar migrações", zap.Error(err))
	}

	catalog := postgres.NewEventRepository(db)
	ledger := postgres.NewRegistrationRepository(db)

	// Redis é opcional: sem ele a aplicação degrada para operar sem
	// lock distribuído e sem cache de disponibilidade.
	var (
		lockManager application.LockManager
		cache       application.AvailabilityCache
	)
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis indisponível, seguindo sem lock e sem cache", zap.Error(err))
	} else {
		defer redisClient.Close()
		lockManager = application.NewRedisLockManager(redisinfra.NewLockManager(redisClient))
		cache = redisinfra.NewAvailabilityCache(redisClient)
	}

	m := metrics.Init()

	// Serviços
	eventService := application.NewEventService(catalog, ledger, cache)
	registrationService := application.NewRegistrationService(catalog, ledger, lockManager, cache)

	proofStore := proof.NewLocalStore(cfg.Proof.Dir, cfg.Proof.MaxSizeBytes)
	notifier := notification.NewLogNotifier()

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	healthHandler := handler.NewHealthHandler()
	eventHandler := handler.NewEventHandler(eventService)
	registrationHandler := handler.NewRegistrationHandler(registrationService, eventService, proofStore, notifier)

	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")

	v1.GET("/events", eventHandler.List)
	v1.GET("/events/:id", eventHandler.GetByID)
	v1.GET("/events/:id/availability", eventHandler.Availability)

	v1.POST("/events/:id/registrations", registrationHandler.Register)
	v1.GET("/events/:id/registrations/:user_id", registrationHandler.GetByUser)
	v1.DELETE("/events/:id/registrations/:user_id", registrationHandler.Cancel)
	v1.PATCH("/events/:id/registrations/:user_id/seat-type", registrationHandler.ChangeSeatType)

	admin := v1.Group("/admin", middleware.RequireStaff())
	admin.POST("/events", eventHandler.Create)
	admin.PUT("/events/:id", eventHandler.Update)
	admin.DELETE("/events/:id", eventHandler.Delete)
	admin.GET("/events/:id/registrations", registrationHandler.ListByEvent)
	admin.POST("/events/:id/registrations/:user_id/payment", registrationHandler.MarkPaid)
	admin.POST("/events/:id/registrations/:user_id/presence", registrationHandler.MarkPresent)

	// Worker de cache de disponibilidade
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	refresher := worker.NewAvailabilityRefresher(eventService, cfg.Worker.AvailabilityRefreshInterval)
	go refresher.Start(workerCtx)

	// Servidor com desligamento gracioso
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("falha ao iniciar o servidor", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("desligando o servidor...")
	refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("falha no desligamento do servidor", zap.Error(err))
	}

	logger.Info("servidor finalizado")
}
