package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"milestone-service/config"
	"milestone-service/internal/dispute"
	"milestone-service/internal/handler"
	"milestone-service/internal/httpserver"
	"milestone-service/internal/mqhandler"
	"milestone-service/internal/plan"
	"milestone-service/internal/repository"
	"milestone-service/internal/transition"
	"milestone-service/internal/viewcache"
	"milestone-service/pkg/db"
	"milestone-service/pkg/logger"
	"milestone-service/pkg/mq"
	"milestone-service/pkg/outbox"
	"milestone-service/pkg/redis"
	"milestone-service/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting milestone-service...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
		zap.Bool("enforce_vendor_check", cfg.Engine.EnforceVendorCheck),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis
	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// Repositories
	outboxRepo := outbox.NewRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn, outboxRepo, log)
	planRepo := repository.NewPlanRepository(dbConn, log)

	// View cache + engine
	views := viewcache.NewCache(rdb, log)
	engine := transition.NewEngine(projectRepo, views, log, cfg.Engine.EnforceVendorCheck)

	// MQ publisher + outbox dispatcher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	dispatcherCtx, dispatcherCancel := context.WithCancel(context.Background())
	defer dispatcherCancel()

	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	go dispatcher.Start(dispatcherCtx)

	// Dispute summarization pipeline
	planResolver := plan.NewResolver(planRepo, rdb, log)

	generator, err := dispute.NewAnthropicGenerator(cfg.Anthropic, log)
	if err != nil {
		log.Fatal("Failed to init text generator", zap.Error(err))
	}

	gate, err := dispute.NewGate(generator, log)
	if err != nil {
		log.Fatal("Failed to init dispute gate", zap.Error(err))
	}

	retryCounter := util.NewRetryCounter(rdb, 30*time.Minute)
	rejectedHandler := mqhandler.NewMilestoneRejectedHandler(planResolver, gate, projectRepo, publisher, retryCounter, log)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, "milestone.rejected.q", "milestone.rejected", log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(rejectedHandler.Handle)

	go func() {
		log.Info("Starting milestone.rejected consumer...")
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("milestone.rejected consumer failed", zap.Error(err))
		}
	}()

	// HTTP server
	transitionHandler := handler.NewTransitionHandler(engine, log)
	projectHandler := handler.NewProjectHandler(projectRepo, views, log)
	replayService := outbox.NewReplayService(outboxRepo, publisher, log)
	outboxHandler := handler.NewOutboxHandler(replayService, log)
	router := httpserver.NewRouter(transitionHandler, projectHandler, outboxHandler, cfg.JWT.Secret, log, dbConn, consumer)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("milestone-service is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
		zap.String("mq_queue", "milestone.rejected.q"),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down milestone-service gracefully...")

	consumer.Stop()
	dispatcherCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	dbConn.Close()

	log.Info("milestone-service shutdown complete")
}
