package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MetricsMode selects where call/revenue samples come from
type MetricsMode string

const (
	// ModeSim generates samples locally with bounded random increments
	ModeSim MetricsMode = "sim"
	// ModeRemote fetches samples from the stats API
	ModeRemote MetricsMode = "remote"
)

// VapiCredentials identifies this deployment to the Vapi call service
type VapiCredentials struct {
	APIKey      string
	AssistantID string
	PublicKey   string
	PhoneNumber string
	BaseURL     string
}

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	// Metrics polling
	MetricsMode      MetricsMode
	PollInterval     time.Duration // metrics tick period
	CallPollInterval time.Duration // call status poll period
	StatsAPIBaseURL  string        // remote mode only

	// Call service
	Vapi VapiCredentials

	// WebSocket timing
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:            getEnv("PORT", "8080"),
		AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		StatsAPIBaseURL: getEnv("STATS_API_BASE_URL", ""),
		Vapi: VapiCredentials{
			APIKey:      getEnv("VAPI_API_KEY", ""),
			AssistantID: getEnv("VAPI_ASSISTANT_ID", ""),
			PublicKey:   getEnv("VAPI_PUBLIC_KEY", ""),
			PhoneNumber: getEnv("VAPI_PHONE_NUMBER", ""),
			BaseURL:     getEnv("VAPI_BASE_URL", "https://api.vapi.ai"),
		},
	}

	mode := MetricsMode(getEnv("METRICS_MODE", string(ModeSim)))
	if mode != ModeSim && mode != ModeRemote {
		return nil, fmt.Errorf("invalid METRICS_MODE: %q", mode)
	}
	if mode == ModeRemote && config.StatsAPIBaseURL == "" {
		return nil, fmt.Errorf("STATS_API_BASE_URL is required when METRICS_MODE=remote")
	}
	config.MetricsMode = mode

	pollInterval, err := strconv.Atoi(getEnv("POLL_INTERVAL", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	config.PollInterval = time.Duration(pollInterval) * time.Second

	callPollInterval, err := strconv.Atoi(getEnv("CALL_POLL_INTERVAL", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid CALL_POLL_INTERVAL: %w", err)
	}
	config.CallPollInterval = time.Duration(callPollInterval) * time.Second

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
