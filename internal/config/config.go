package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the trading service.
type Config struct {
	Port     int
	LogLevel string
	DBPath   string

	MarketSummaryInterval         time.Duration
	UpdateQuotePrices             bool
	PublishQuotePriceChange       bool
	MaxQuotes                     int
	ListQuotePriceChangeFrequency int
	LongRun                       bool

	AsyncOrderDelay time.Duration
	AsyncWorkers    int

	KafkaBrokers       []string
	KafkaQueueTopic    string
	KafkaStreamerTopic string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	dbPath := getStr("DB_PATH", "")

	summaryInterval, err := getDuration("MARKET_SUMMARY_INTERVAL", 20*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_SUMMARY_INTERVAL: %w", err)
	}

	updatePrices, err := getBool("UPDATE_QUOTE_PRICES", true)
	if err != nil {
		return nil, fmt.Errorf("invalid UPDATE_QUOTE_PRICES: %w", err)
	}

	publishChanges, err := getBool("PUBLISH_QUOTE_PRICE_CHANGE", true)
	if err != nil {
		return nil, fmt.Errorf("invalid PUBLISH_QUOTE_PRICE_CHANGE: %w", err)
	}

	maxQuotes, err := getInt("MAX_QUOTES", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_QUOTES: %w", err)
	}
	if maxQuotes <= 0 {
		return nil, fmt.Errorf("invalid MAX_QUOTES: must be positive, got %d", maxQuotes)
	}

	listFrequency, err := getInt("LIST_QUOTE_PRICE_CHANGE_FREQUENCY", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid LIST_QUOTE_PRICE_CHANGE_FREQUENCY: %w", err)
	}
	if listFrequency <= 0 {
		return nil, fmt.Errorf("invalid LIST_QUOTE_PRICE_CHANGE_FREQUENCY: must be positive, got %d", listFrequency)
	}

	longRun, err := getBool("LONG_RUN", false)
	if err != nil {
		return nil, fmt.Errorf("invalid LONG_RUN: %w", err)
	}

	asyncDelay, err := getDuration("ASYNC_ORDER_DELAY", 500*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid ASYNC_ORDER_DELAY: %w", err)
	}

	asyncWorkers, err := getInt("ASYNC_WORKERS", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid ASYNC_WORKERS: %w", err)
	}
	if asyncWorkers <= 0 {
		return nil, fmt.Errorf("invalid ASYNC_WORKERS: must be positive, got %d", asyncWorkers)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:     port,
		LogLevel: logLevel,
		DBPath:   dbPath,

		MarketSummaryInterval:         summaryInterval,
		UpdateQuotePrices:             updatePrices,
		PublishQuotePriceChange:       publishChanges,
		MaxQuotes:                     maxQuotes,
		ListQuotePriceChangeFrequency: listFrequency,
		LongRun:                       longRun,

		AsyncOrderDelay: asyncDelay,
		AsyncWorkers:    asyncWorkers,

		KafkaBrokers:       getList("KAFKA_BROKERS"),
		KafkaQueueTopic:    getStr("KAFKA_QUEUE_TOPIC", "trade-orders"),
		KafkaStreamerTopic: getStr("KAFKA_STREAMER_TOPIC", "trade-events"),

		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseBool(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
