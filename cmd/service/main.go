package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jmwislek/order-notify-service/internal/cache"
	"github.com/jmwislek/order-notify-service/internal/config"
	httphandler "github.com/jmwislek/order-notify-service/internal/http"
	"github.com/jmwislek/order-notify-service/internal/models"
	"github.com/jmwislek/order-notify-service/internal/notify"
	"github.com/jmwislek/order-notify-service/internal/observability"
	"github.com/jmwislek/order-notify-service/internal/orders"
	"github.com/jmwislek/order-notify-service/internal/service"
	"github.com/jmwislek/order-notify-service/internal/store"
	"github.com/jmwislek/order-notify-service/internal/users"
	"github.com/jmwislek/order-notify-service/internal/weather"
)

func main() {
	// .env is optional; deployments set environment variables directly
	_ = godotenv.Load()

	logger, err := observability.NewLogger("order-notify-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	weatherClient := weather.NewAPIClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.WeatherAPITimeout)

	var cacheSvc cache.Cache
	var memcacheCloser *cache.Memcached
	switch cfg.CacheBackend {
	case "memcached":
		mc, err := cache.NewMemcached(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached cache", zap.Error(err))
		}
		memcacheCloser = mc
		cacheSvc = mc
		logger.Info("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	default:
		cacheSvc = cache.NewInMemory()
		logger.Info("cache backend: in_memory")
	}
	readingService := service.NewReadingService(weatherClient, cacheSvc, cfg.CacheTTL)

	db := store.NewMemory[models.User]()
	db.Connect()
	userRepo := users.NewRepository(db)

	orderProcessor := orders.NewProcessor(weatherClient, notify.NewLogSender(logger))

	healthConfig := &httphandler.HealthConfig{
		DegradedWindow:   cfg.DegradedWindow,
		DegradedErrorPct: cfg.DegradedErrorPct,
		StoreConnected:   db.Connected,
	}
	if memcacheCloser != nil {
		healthConfig.CachePing = memcacheCloser.Ping
	}

	handler := httphandler.NewHandler(readingService, orderProcessor, userRepo, healthConfig, logger, cfg.CityMinLength, cfg.CityMaxLength)

	observability.RegisterRateLimitGauges(cfg.DegradedWindow)
	if len(cfg.TrackedCities) > 0 {
		observability.SetTrackedCities(cfg.TrackedCities)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.WarmingCities) > 0 {
		warmer := cache.NewWarmer(readingService, logger)
		warmCtx, warmCancel := context.WithTimeout(ctx, 30*time.Second)
		if err := warmer.Warm(warmCtx, cfg.WarmingCities); err != nil {
			logger.Warn("cache warming failed", zap.Error(err))
		}
		warmCancel()
		if cfg.WarmingInterval > 0 {
			// Stops with the signal context during shutdown.
			go func() {
				_ = warmer.WarmPeriodic(ctx, cfg.WarmingCities, cfg.WarmingInterval)
			}()
		}
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	api := router.PathPrefix("/api").Subrouter()
	api.Use(httphandler.RateLimitMiddleware(limiter))
	api.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	api.HandleFunc("/orders", handler.ProcessOrder).Methods("POST")
	api.HandleFunc("/weather/{city}", handler.GetWeather).Methods("GET")
	api.HandleFunc("/users", handler.CreateUser).Methods("POST")
	api.HandleFunc("/users/{id}", handler.GetUser).Methods("GET")
	api.HandleFunc("/price", handler.GetPrice).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	handler.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	logger.Info("waiting for in-flight requests", zap.Int64("count", httphandler.InFlightCount()))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, 50*time.Millisecond); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if memcacheCloser != nil {
		if err := memcacheCloser.Close(); err != nil {
			logger.Error("memcached close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
