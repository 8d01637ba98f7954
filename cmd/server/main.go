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

	"propertycrm/server/config"
	"propertycrm/server/internal/api"
	"propertycrm/server/internal/database"
	"propertycrm/server/internal/leads"
	"propertycrm/server/internal/matching"
	"propertycrm/server/internal/processor"
	"propertycrm/server/internal/queue"
	"propertycrm/server/internal/recommendation"
	"propertycrm/server/internal/scheduler"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.WithError(err).Warnf("Unknown log level %q, using info", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	weights, err := cfg.Weights()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load scoring weights")
	}

	logger.Infof("Using database at: %s", cfg.Database.Path)
	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	leadService := leads.NewService(db, logger)
	manager := recommendation.NewManager(db, matching.NewEngine(weights), recommendation.Options{
		Workers:   cfg.BatchProcessing.ProcessorCount,
		RateLimit: cfg.BatchProcessing.RateLimit,
		RateBurst: cfg.BatchProcessing.RateBurst,
	}, logger)

	regenQueue := queue.NewRegenerationQueue(cfg.BatchProcessing.MaxBatchSize, logger)
	batchProcessor := processor.NewBatchProcessor(manager, regenQueue, cfg, logger)
	batchProcessor.Start()

	sched := scheduler.NewScheduler(manager, cfg.Scheduler.RecomputeHour, logger)
	if cfg.Scheduler.Enabled {
		sched.Start()
	} else {
		logger.Info("Scheduler disabled")
	}

	if err := api.RegisterValidators(); err != nil {
		logger.WithError(err).Fatal("Failed to register request validators")
	}

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.Server.CORSAllowedOrigins)))

	handler := api.NewHandler(api.Dependencies{
		Properties:      db,
		Leads:           leadService,
		Recommendations: manager,
		Queue:           regenQueue,
		BatchRunner:     sched,
		BatchSize:       cfg.BatchProcessing.MaxBatchSize,
	}, logger)
	api.SetupRoutes(router, handler)

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

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	sched.Stop()
	batchProcessor.Stop()
	logger.Info("Server exited")
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
