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

	"payout-service/config"
	"payout-service/internal/api"
	"payout-service/internal/broker"
	"payout-service/internal/redisclient"
	"payout-service/internal/service"
	"payout-service/internal/store"
	"payout-service/internal/util"
	"payout-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting payout service")

	tp, err := util.InitTracer("payout-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPayout)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	cacheTTL := time.Duration(cfg.Business.PayoutCacheTTLSeconds) * time.Second
	ingestService := service.NewIngestService(db, redisClient, eventPublisher)
	poolService := service.NewPoolService(db, eventPublisher)
	creatorService := service.NewCreatorService(db, eventPublisher, cfg.Business.DefaultRevenueShare)
	orchestrator := service.NewPayoutOrchestrator(db, redisClient, eventPublisher, cacheTTL)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	recalcConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicPayout, cfg.Kafka.ConsumerGroup)
	recalcWorker := worker.NewRecalcWorker(recalcConsumer, orchestrator, db)
	go func() {
		if err := recalcWorker.Start(workerCtx); err != nil {
			log.Printf("Recalc worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(ingestService, poolService, creatorService, orchestrator, db, redisClient)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	recalcWorker.Stop()

	log.Println("Server exited")
}
