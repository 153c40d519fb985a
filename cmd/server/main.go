package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"investment_manager/internal/api"
	"investment_manager/internal/config"
	"investment_manager/internal/events"
	"investment_manager/internal/events/kafka"
	"investment_manager/internal/processor"
	"investment_manager/internal/repository"
	"investment_manager/internal/repository/memory"
	"investment_manager/internal/repository/postgres"
	"investment_manager/pkg/crypto"
	"investment_manager/pkg/metrics"
)

const (
	appName = "investment_manager"
)

func main() {
	logger := setupLogger()
	logger.Info("Starting application",
		slog.String("name", appName))

	cfg := config.Load()

	metricsCollector := metrics.NewMetricsCollector(logger)
	signer := crypto.NewSigner(cfg.SigningSecret, logger)

	publisher, kafkaPublisher := setupPublisher(cfg, logger)
	dispatcher := events.NewDispatcher(publisher, cfg.EventWorkers, logger)

	store, accountRepo, investmentRepo, ledgerRepo := setupStorage(cfg, logger)

	invProcessor := processor.NewInvestmentProcessor(store, accountRepo, investmentRepo, ledgerRepo, dispatcher, logger)
	apiHandler := api.NewAPIHandler(invProcessor, metricsCollector, signer, logger)

	metricsServer := metricsCollector.StartMetricsServer(cfg.MetricsAddr)
	httpServer := startHTTPServer(cfg.HTTPAddr, apiHandler, logger)

	waitForShutdown(logger, httpServer, metricsServer, dispatcher, kafkaPublisher)
	logger.Info("Application shutdown complete")
}

func setupLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func setupPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, *kafka.Publisher) {
	if len(cfg.KafkaBrokers) > 0 {
		logger.Info("Using Kafka event publisher",
			slog.Any("brokers", cfg.KafkaBrokers))
		p := kafka.NewPublisher(cfg.KafkaBrokers)
		return p, p
	}

	logger.Info("No Kafka brokers configured, events go to the log")
	return &events.LogPublisher{Logger: logger}, nil
}

func setupStorage(cfg *config.Config, logger *slog.Logger) (
	repository.AtomicStore,
	repository.AccountRepository,
	repository.InvestmentRepository,
	repository.LedgerRepository,
) {
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("Failed to open database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			logger.Error("Failed to reach database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Using Postgres storage")
		return postgres.NewStore(db),
			postgres.NewAccountRepository(db),
			postgres.NewInvestmentRepository(db),
			postgres.NewLedgerRepository(db)
	}

	logger.Info("Using in-memory storage")
	store := memory.NewStore()
	return store,
		memory.NewAccountRepository(store),
		memory.NewInvestmentRepository(store),
		memory.NewLedgerRepository(store)
}

func startHTTPServer(addr string, apiHandler *api.APIHandler, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()

	apiHandler.RegisterRoutes(mux)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name": "%s", "status": "ok"}`, appName)
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	return server
}

func waitForShutdown(
	logger *slog.Logger,
	httpServer *http.Server,
	metricsServer *http.Server,
	dispatcher *events.Dispatcher,
	kafkaPublisher *kafka.Publisher,
) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}

	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
	}

	if err := dispatcher.Shutdown(ctx); err != nil {
		logger.Error("Event dispatcher shutdown failed", slog.String("error", err.Error()))
	}

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("Kafka publisher close failed", slog.String("error", err.Error()))
		}
	}
}
