package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/whattheyhold/config"
	"github.com/epeers/whattheyhold/docs"
	"github.com/epeers/whattheyhold/internal/app"
	"github.com/epeers/whattheyhold/internal/database"
	"github.com/epeers/whattheyhold/internal/handlers"
	"github.com/epeers/whattheyhold/internal/middleware"
	"github.com/epeers/whattheyhold/internal/refresher"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title WhatTheyHold API
// @version 1.0
// @description Fund composition lookups: holdings, country and sector weights, screening and Thai feeder funds.
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := app.ConfigureLogging(cfg); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	// Create context for initialization
	ctx := context.Background()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize services
	svc := app.NewServices(cfg, db.Pool)

	// Initialize handlers
	fundHandler := handlers.NewFundHandler(svc.Funds, svc.FundRepo)
	thaiHandler := handlers.NewThaiFundHandler(svc.Thai)
	analyticsHandler := handlers.NewAnalyticsHandler(svc.Analytics)

	// Setup Gin router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())

	handlers.RegisterRoutes(router, fundHandler, thaiHandler, analyticsHandler)

	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Background refresh of popular funds
	var scheduler *refresher.Scheduler
	if cfg.RefreshSchedule != "" {
		r := refresher.New(svc.Funds, cfg.RefreshTickers, cfg.RefreshPause)
		scheduler, err = refresher.NewScheduler(cfg.RefreshSchedule, r)
		if err != nil {
			log.Fatalf("Failed to create refresh scheduler: %v", err)
		}
		scheduler.Start()
		log.Infof("Refreshing %d funds on schedule %q", len(r.Tickers()), cfg.RefreshSchedule)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.WithCORS(router, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
