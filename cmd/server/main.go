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

	"tikiti/config"
	"tikiti/internal/database"
	"tikiti/internal/events"
	"tikiti/internal/queue"
	"tikiti/internal/repository"
	"tikiti/internal/router"
	"tikiti/internal/service"
	"tikiti/pkg/cache"
	"tikiti/pkg/momo"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db, &cfg.Admin)

	paymentRepo := repository.NewPaymentRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	eventRepo := repository.NewEventRepository(db)

	var publisher *events.Publisher
	if cfg.Kafka.Enabled() {
		publisher, err = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Printf("[Events] kafka publishing disabled: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	client := momo.NewClient(momo.Credentials{
		BaseURL:         cfg.Momo.BaseURL,
		Environment:     cfg.Momo.Environment,
		APIUserID:       cfg.Momo.APIUserID,
		APISecret:       cfg.Momo.APISecret,
		CollectionKey:   cfg.Momo.CollectionKey,
		DisbursementKey: cfg.Momo.DisbursementKey,
	}, cache.NewMemory())
	svc := service.NewPaymentService(client, paymentRepo, refundRepo, orderRepo, eventRepo, publisher, cfg.Momo.SiteURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := queue.NewWorkerPool(&service.Reconciler{Service: svc}, cfg.Queue.Workers, cfg.Queue.Buffer)
	pool.Start(ctx)
	sweeper := service.NewSweeper(paymentRepo, refundRepo, pool, cfg.Sweep.Interval, cfg.Sweep.Window)
	go sweeper.Run(ctx)

	engine := router.Setup(cfg, db, svc, pool)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	pool.Wait()
	fmt.Println("server stopped")
}
