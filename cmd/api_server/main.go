package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/taxiops-finance-core/internal/api"
	"github.com/taxiops-finance-core/internal/api/service"
	"github.com/taxiops-finance-core/internal/config"
	"github.com/taxiops-finance-core/internal/data/mongo"
	"github.com/taxiops-finance-core/internal/data/postgres"
	"github.com/taxiops-finance-core/internal/engine"
	"github.com/taxiops-finance-core/internal/logger"
	"github.com/taxiops-finance-core/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	payableRepo := mongo.NewPayableRepository(log, mongoDB.Database())
	pettyCashRepo := mongo.NewPettyCashRepository(log, mongoDB.Database())
	splitRepo := mongo.NewSplitRepository(log, mongoDB.Database())

	// Initialize the effect engine and edit orchestrator
	effectEngine := engine.NewEffectEngine(accountRepo, outboxRepo, log)
	orchestrator := engine.NewOrchestrator(postgresDB.Pool(), effectEngine, transactionRepo, accountRepo, outboxRepo, log)

	// Initialize services
	services := api.Services{
		Account:     service.NewAccountService(accountRepo),
		Transaction: service.NewTransactionService(log, orchestrator, transactionRepo),
		Payable:     service.NewPayableService(log, payableRepo),
		PettyCash:   service.NewPettyCashService(log, pettyCashRepo),
		Split:       service.NewSplitService(log, splitRepo, transactionRepo),
	}

	// Initialize REST server
	server := api.NewServer(log, cfg, services)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
