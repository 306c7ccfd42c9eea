package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ondrasimku/info-service-go/internal/config"
	httphandler "github.com/ondrasimku/info-service-go/internal/http"
	"github.com/ondrasimku/info-service-go/internal/log"
	"github.com/ondrasimku/info-service-go/internal/metrics"
	"github.com/ondrasimku/info-service-go/internal/storage/local"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := log.NewLogger(cfg.LogLevel)

	storage := local.NewLocalStorage(cfg.DataPath, logger)
	info, err := storage.Load(context.Background())
	if err != nil {
		logger.Error("Failed to persist info document", "path", storage.Path(), "error", err)
		os.Exit(1)
	}
	logger.Info("Loaded info document", "path", storage.Path(), "title", info.Title, "updatedDate", info.UpdatedDate)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	router, err := httphandler.NewRouter(storage, info, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: router,
	}

	go func() {
		logger.Info("Starting info service", "addr", cfg.HTTPAddr(), "publicDir", cfg.PublicDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exited")
}
