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

	"github.com/jmwislek/order-notify-service/internal/config"
	httphandler "github.com/jmwislek/order-notify-service/internal/http"
	"github.com/jmwislek/order-notify-service/internal/observability"
	"github.com/jmwislek/order-notify-service/internal/site"
)

func main() {
	// .env is optional; deployments set environment variables directly
	_ = godotenv.Load()

	logger, err := observability.NewLogger("cv-website")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	siteHandler, err := site.NewHandler(cfg.WebsiteResourcesDir, cfg.OwnerName, cfg.OwnerTitle, logger)
	if err != nil {
		logger.Fatal("site handler", zap.Error(err))
	}

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.HandleFunc("/", siteHandler.Index).Methods("GET")
	router.HandleFunc("/resume.pdf", siteHandler.ResumePDF).Methods("GET")
	router.PathPrefix("/resources/").Handler(siteHandler.Resources()).Methods("GET")
	router.HandleFunc("/health", siteHandler.GetHealth).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.WebsitePort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("website starting",
			zap.String("addr", ":"+cfg.WebsitePort),
			zap.String("resources_dir", cfg.WebsiteResourcesDir))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
