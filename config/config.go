package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string
	LogLevel    string

	// Upstream services
	AuthBaseURL    string
	AuctionBaseURL string

	// Realtime configuration
	RealtimeProvider   string // "pubnub" or "websocket"
	PubNubPublishKey   string
	PubNubSubscribeKey string
	WebsocketURL       string

	// Token store configuration
	TokenStore    string // "file" or "redis"
	TokenFilePath string
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Payment configuration
	PaymentProvider string // "razorpay" or "simulated"
	RazorpayKeyID   string

	// Timeout configuration
	RequestTimeout  time.Duration
	CheckoutTimeout time.Duration

	// Refresh configuration
	NotificationPoll time.Duration
	WalletPoll       time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "4545"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Upstream
		AuthBaseURL:    getEnv("AUTH_BASE_URL", "http://localhost:6001"),
		AuctionBaseURL: getEnv("AUCTION_BASE_URL", "http://localhost:5001"),

		// Realtime
		RealtimeProvider:   getEnv("REALTIME_PROVIDER", "websocket"),
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		WebsocketURL:       getEnv("WEBSOCKET_URL", "ws://localhost:5001/ws"),

		// Token store
		TokenStore:    getEnv("TOKEN_STORE", "file"),
		TokenFilePath: getEnv("TOKEN_FILE_PATH", ".pulasa/session.json"),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Payment
		PaymentProvider: getEnv("PAYMENT_PROVIDER", "simulated"),
		RazorpayKeyID:   getEnv("RAZORPAY_KEY_ID", ""),

		// Timeouts
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", "15s"),
		CheckoutTimeout: getEnvAsDuration("CHECKOUT_TIMEOUT", "10m"),

		// Refresh
		NotificationPoll: getEnvAsDuration("NOTIFICATION_POLL", "30s"),
		WalletPoll:       getEnvAsDuration("WALLET_POLL", "2m"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, fall back to the default
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
