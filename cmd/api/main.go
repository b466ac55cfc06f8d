package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront-demo/internal/client"
	"storefront-demo/internal/config"
	"storefront-demo/internal/logging"
	"storefront-demo/internal/repository"
	"storefront-demo/internal/server"
	"storefront-demo/internal/service"
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

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := client.InitDBClient(cfg.Database)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	if cfg.Environment.Name == "development" {
		if err := productRepo.Seed(context.Background()); err != nil {
			logger.Warn("seed products", zap.Error(err))
		}
	}

	cartService := service.NewCartService(cartRepo, productRepo)
	checkoutService := service.NewCheckoutService(
		db, logger, cfg.Payment.SessionTTL,
		productRepo, cartRepo, orderRepo, inventoryRepo, paymentRepo,
	)
	paymentService := service.NewPaymentService(
		db, logger, cfg.Payment.ProcessingDelay,
		paymentRepo, orderRepo, inventoryRepo, cartRepo, productRepo,
	)
	orderService := service.NewOrderService(logger, orderRepo)

	srv := server.NewServer(logger, productRepo, cartService, checkoutService, paymentService, orderService)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
