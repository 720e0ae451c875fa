package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/efreitasn/gotrade/internal/broker"
	"github.com/efreitasn/gotrade/internal/config"
	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/efreitasn/gotrade/internal/handler"
	"github.com/efreitasn/gotrade/internal/service"
	"github.com/efreitasn/gotrade/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Instantiate stores: SQLite when DB_PATH is set, in-memory otherwise.
	var (
		accountStore service.AccountStore
		holdingStore service.HoldingStore
		orderStore   service.OrderStore
		quoteStore   service.QuoteStore
	)
	if cfg.DBPath != "" {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open database", slog.String("path", cfg.DBPath), slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
		accountStore = db.Accounts()
		holdingStore = db.Holdings()
		orderStore = db.Orders()
		quoteStore = db.Quotes()
	} else {
		accountStore = store.NewAccountStore()
		holdingStore = store.NewHoldingStore()
		orderStore = store.NewOrderStore()
		quoteStore = store.NewQuoteStore()
	}

	// Event publisher: Kafka streamer when brokers are configured.
	var publisher service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := broker.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaStreamerTopic)
		defer kp.Close()
		publisher = kp
	} else {
		publisher = broker.NopPublisher{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Recent price change list, wired to publish list events.
	recent := domain.NewRecentPriceChangeList(
		cfg.MaxQuotes,
		cfg.ListQuotePriceChangeFrequency,
		func(symbol string) {
			msg := broker.NewPriceChangeListUpdate(symbol)
			if err := publisher.PublishPriceChangeList(ctx, msg); err != nil {
				logger.Error("price change list publish failed", slog.String("symbol", symbol), slog.String("error", err.Error()))
			}
		},
	)

	// Services.
	quoteSvc := service.NewQuoteService(quoteStore, publisher, recent, cfg.UpdateQuotePrices, cfg.PublishQuotePriceChange, logger)
	tradeSvc := service.NewTradeService(accountStore, holdingStore, orderStore, quoteStore, quoteSvc, cfg.LongRun, logger)
	accountSvc := service.NewAccountService(accountStore, holdingStore, logger)
	summarySvc := service.NewMarketSummaryService(quoteStore, publisher, cfg.MarketSummaryInterval, logger)

	// Order queue: Kafka with a consumer group when brokers are
	// configured, in-process loopback otherwise.
	var queue service.OrderQueue
	if len(cfg.KafkaBrokers) > 0 {
		kq := broker.NewKafkaQueue(cfg.KafkaBrokers, cfg.KafkaQueueTopic)
		defer kq.Close()
		queue = kq

		reader := broker.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaQueueTopic, "gotrade")
		defer reader.Close()
		consumer := broker.NewConsumer(reader, tradeSvc, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("order consumer stopped", slog.String("error", err.Error()))
			}
		}()
	} else {
		lq := broker.NewLocalQueue(tradeSvc, logger)
		go func() {
			if err := lq.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("local order queue stopped", slog.String("error", err.Error()))
			}
		}()
		queue = lq
	}

	// Dispatcher (depends on trade service as completer and vice versa).
	dispatcher := service.NewDispatcher(queue, cfg.AsyncOrderDelay, cfg.AsyncWorkers, logger)
	dispatcher.SetCompleter(tradeSvc)
	tradeSvc.SetDispatcher(dispatcher)
	dispatcher.Start(ctx)

	// Seed the summary snapshot so early readers never see an empty cache.
	if _, err := summarySvc.Refresh(ctx); err != nil {
		logger.Error("initial market summary failed", slog.String("error", err.Error()))
	}

	// Router.
	router := handler.NewRouter(accountSvc, tradeSvc, quoteSvc, summarySvc, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops workers
	// and consumers).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
