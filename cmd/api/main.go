package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"subscription-service/internal/client"
	"subscription-service/internal/config"
	"subscription-service/internal/logger"
	"subscription-service/internal/repository"
	"subscription-service/internal/server"
	"subscription-service/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	db, err := client.InitMysqlClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	subscriptionRepo := repository.NewSubscriptionRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	periodRepo := repository.NewPeriodRepository(db)

	webhookService := service.NewWebhookService(db, webhookEventRepo, subscriptionRepo, periodRepo, log)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo)

	srv := server.NewServer(webhookService, subscriptionService, log)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
