package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"dermascan/app/bootstrap"
	"dermascan/app/echo-server/router"
	"dermascan/internal/middleware"
	"dermascan/internal/rest"
	"dermascan/pkg/config"
	"dermascan/pkg/logger"
	"dermascan/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting DermaScan", "version", cfg.App.Version, "env", cfg.App.Environment)

	metrics.Init()

	// Init service
	diagnosisService, clf, err := bootstrap.BuildDiagnosisService(cfg)
	if err != nil {
		logger.Fatal("Failed to load model", "error", err)
	}
	defer func() {
		if err := clf.Close(); err != nil {
			logger.Error("Failed to release classifier", "error", err)
		}
	}()

	// Init handler
	diagnosisHandler := rest.NewDiagnosisHandler(
		diagnosisService,
		cfg.Server.RequestTimeout,
		cfg.Server.UploadExtensions,
		cfg.Server.MaxImagePixels,
	)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))

	// Setup routes
	router.SetupDiagnosisRoutes(e, diagnosisHandler, cfg.Server.BodyLimit())
	router.SetupProbeRoutes(e, diagnosisHandler)
	router.SetupMetricsRoutes(e)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
