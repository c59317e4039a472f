package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"immoprice/server/config"
	"immoprice/server/internal/api"
	"immoprice/server/internal/database"
	"immoprice/server/internal/estimator"
	"immoprice/server/internal/features"
	"immoprice/server/internal/prediction"
	"immoprice/server/internal/processor"
	"immoprice/server/internal/queue"
	"immoprice/server/internal/reference"
	"immoprice/server/internal/scheduler"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Reference table must be in place before the listener starts
	store, err := reference.NewStore(cfg.Data.ReferencePath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load reference table")
	}

	encoder := features.DefaultEncoder()
	gateway, err := prediction.LoadGateway(cfg.Data.ScalerPath, cfg.Data.ModelPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load prediction artifacts")
	}
	if err := gateway.CheckSchema(encoder.Schema()); err != nil {
		logger.WithError(err).Fatal("Prediction artifacts do not match the feature schema")
	}

	logger.Infof("Using database at: %s", cfg.Data.DatabasePath)
	db, err := database.NewDatabase(cfg.Data.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Prediction log pipeline
	predictionQueue := queue.NewPredictionQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(db.GetDB(), predictionQueue, cfg, logger)
	batchProcessor.Start()
	predictionQueue.Start()

	reloadScheduler := scheduler.NewScheduler(store, time.Duration(cfg.Data.ReloadInterval)*time.Minute, logger)
	reloadScheduler.Start()

	svc := estimator.NewService(store, encoder, gateway, cfg.Limits(), logger)
	handler := api.NewHandler(svc, db, predictionQueue, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	api.SetupRoutes(router, handler)
	api.SetupReferenceRoutes(router, store, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	reloadScheduler.Stop()
	batchProcessor.Stop()
	predictionQueue.Close()
}
