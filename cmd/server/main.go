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

	"trade-service/config"
	"trade-service/internal/api"
	"trade-service/internal/blob"
	"trade-service/internal/broker"
	"trade-service/internal/redisclient"
	"trade-service/internal/service"
	"trade-service/internal/store"
	"trade-service/internal/util"
	"trade-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting trade service")

	tp, err := util.InitTracer("trade-service", cfg.Observ.JaegerEndpoint)
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

	db, err := store.NewPostgresStore(cfg.Database.URL)
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

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicTrade)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	guards := service.Guards{
		AllowConsignToOrigin:   cfg.Business.AllowConsignToOrigin,
		RequireReadyForInvoice: cfg.Business.RequireReadyForInvoice,
	}

	tradeRequests := db.TradeRequests()
	dealers := db.Dealers()

	tradeService := service.NewTradeRequestService(tradeRequests, dealers, redisClient, eventPublisher, guards)
	invoiceService := service.NewInvoiceService(tradeRequests, eventPublisher, guards)
	dealerService := service.NewDealerService(dealers, redisClient)
	adminService := service.NewAdminService(tradeRequests, redisClient)
	photoStore := blob.NewMemoryStore(cfg.Blob.BaseURL)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	analyticsConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicTrade, cfg.Kafka.ConsumerGroup)
	analyticsWorker := worker.NewAnalyticsWorker(analyticsConsumer, redisClient)
	go func() {
		if err := analyticsWorker.Start(workerCtx); err != nil {
			log.Printf("Analytics worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(tradeService, invoiceService, dealerService, adminService, photoStore)
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
	analyticsWorker.Stop()

	log.Println("Server exited")
}
