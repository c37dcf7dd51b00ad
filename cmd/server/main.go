package main

import (
	"context"
	"log"

	"go-ticket-ledger/config"
	"go-ticket-ledger/internal/cache"
	"go-ticket-ledger/internal/database"
	"go-ticket-ledger/internal/handler"
	"go-ticket-ledger/internal/queue"
	"go-ticket-ledger/internal/repository"
	"go-ticket-ledger/internal/service"
	"go-ticket-ledger/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	eventRepo := repository.NewEventRepository(pool)
	tierRepo := repository.NewTierRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)

	gate := cache.NewRedisTierGate(rdb)

	confirmationQueue, err := queue.NewRedisStreamConfirmationQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize confirmation queue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	confirmationWorker := worker.NewConfirmationWorker(reservationRepo, confirmationQueue)
	if err := confirmationWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start confirmation worker: %v", err)
	}

	ledgerService := service.NewLedgerService(pool, eventRepo, tierRepo, reservationRepo, gate, confirmationQueue)
	eventService := service.NewEventService(pool, eventRepo, tierRepo, gate)
	tierService := service.NewTierService(tierRepo)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewPurchaseHandler(ledgerService).RegisterRoutes(router)
	handler.NewEventHandler(eventService).RegisterRoutes(router)
	handler.NewTierHandler(tierService).RegisterRoutes(router)

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
