package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kart-checkout/internal/auth"
	"kart-checkout/internal/config"
	"kart-checkout/internal/database"
	"kart-checkout/internal/events"
	"kart-checkout/internal/handler"
	"kart-checkout/internal/payment"
	"kart-checkout/internal/repository"
	"kart-checkout/internal/router"
	"kart-checkout/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting kart-checkout API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	stockRepo := repository.NewStockRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	poRepo := repository.NewPurchaseOrderRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	shippingRepo := repository.NewShippingMethodRepository(pool, logger)

	// Initialize audit event publisher
	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	} else {
		publisher = events.NewNopPublisher()
		logger.Info().Msg("audit event publishing disabled (Kafka disabled)")
	}
	defer publisher.Close()

	// Initialize payment gateway client
	gateway := payment.NewHTTPGateway(cfg.Payment, logger)

	// Initialize services
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	couponService := service.NewCouponService(couponRepo, logger)
	checkoutService := service.NewCheckoutService(
		orderRepo, couponRepo, stockRepo, cartRepo,
		addressRepo, shippingRepo,
		cartService, couponService,
		gateway, publisher, logger,
	)
	stockService := service.NewStockService(stockRepo, logger)
	purchaseService := service.NewPurchaseOrderService(poRepo, stockRepo, publisher, logger)

	// Start the stale-order reconciliation sweep
	sweeper := service.NewSweeper(orderRepo, stockRepo, publisher, cfg.Sweep, logger)
	go sweeper.Run(ctx)

	// Initialize HTTP handlers
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, cfg.Auth.OperatorRole, logger)
	paymentHandler := handler.NewPaymentHandler(checkoutService, cfg.Payment.CallbackToken, logger)
	couponHandler := handler.NewCouponHandler(couponService, logger)
	purchaseHandler := handler.NewPurchaseOrderHandler(purchaseService, logger)
	stockHandler := handler.NewStockHandler(stockService, logger)

	// Initialize router
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)
	mux := router.New(
		checkoutHandler, paymentHandler, couponHandler, purchaseHandler, stockHandler,
		verifier, cfg.Auth.OperatorRole, logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop the sweeper before draining connections
		cancel()

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
