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

	"voucher-service/config"
	"voucher-service/internal/api"
	"voucher-service/internal/broker"
	"voucher-service/internal/redisclient"
	"voucher-service/internal/service"
	"voucher-service/internal/store"
	"voucher-service/internal/util"
	"voucher-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting voucher service")

	tp, err := util.InitTracer("voucher-service", cfg.Observ.JaegerEndpoint)
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

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicTicket)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	inventoryService := service.NewInventoryService(db, redisClient, eventPublisher)
	issuanceService := service.NewIssuanceService(db, redisClient, eventPublisher,
		cfg.Business.MaxTicketsPerIssue,
		time.Duration(cfg.Business.IdempotencyTTLSeconds)*time.Second)
	redemptionService := service.NewRedemptionService(db, redisClient, eventPublisher)

	ctx := context.Background()
	if err := seedStockCache(ctx, db, redisClient); err != nil {
		log.Printf("Failed to seed stock cache: %v", err)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicTicket, cfg.Kafka.ConsumerGroup)
	cacheWorker := worker.NewCacheSyncWorker(consumer, db, redisClient)
	go func() {
		if err := cacheWorker.Start(workerCtx); err != nil {
			log.Printf("Cache sync worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(inventoryService, issuanceService, redemptionService)
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
	cacheWorker.Stop()

	log.Println("Server exited")
}

// seedStockCache primes the Redis stock counters from the database so
// the issuance pre-filter starts warm
func seedStockCache(ctx context.Context, db *store.Store, redisClient *redisclient.Client) error {
	products, err := db.ListProducts(ctx)
	if err != nil {
		return err
	}

	for _, product := range products {
		if err := redisClient.SetStock(ctx, product.ProductID, product.Stock); err != nil {
			log.Printf("Failed to seed stock for product %s: %v", product.ProductID, err)
		}
	}

	log.Printf("Stock cache seeded: %d products", len(products))
	return nil
}
