package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration
type Config struct {
	Port                  string
	GinMode               string
	DBDriver              string
	DatabaseURL           string
	ChangeMonitorInterval time.Duration
	PingInterval          time.Duration
	PongTimeout           time.Duration
	AllowedOrigins        []string
	RateLimit             float64
	RateBurst             int
	LogLevel              string
}

// BoardConfig holds the configuration of the terminal order board
type BoardConfig struct {
	BaseURL              string
	ConnectedInterval    time.Duration
	DisconnectedInterval time.Duration
	ReconnectDelay       time.Duration
	CoalesceWindow       time.Duration
	StatusBucket         string
	SourceFilter         string
	SortKey              string
	PageSize             int
	LogLevel             string
}

// loadEnv -> load .env.<GO_ENV> dulu, lalu .env
func loadEnv() {
	env := getEnv("GO_ENV", "development")
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}
}

// Load loads the server configuration from the environment
func Load() (*Config, error) {
	loadEnv()

	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		GinMode:               getEnv("GIN_MODE", "debug"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL:           getEnv("DATABASE_URL", "restaurant.db"),
		ChangeMonitorInterval: getDuration("CHANGE_MONITOR_INTERVAL", 500*time.Millisecond),
		PingInterval:          getDuration("WS_PING_INTERVAL", 25*time.Second),
		PongTimeout:           getDuration("WS_PONG_TIMEOUT", 60*time.Second),
		AllowedOrigins:        getList("CORS_ALLOWED_ORIGINS", []string{"http://127.0.0.1:5500", "http://localhost:8080"}),
		RateLimit:             getFloat("RATE_LIMIT_RPS", 50),
		RateBurst:             getInt("RATE_LIMIT_BURST", 100),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql, postgres or sqlite, got %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.PingInterval <= 0 || c.PongTimeout <= c.PingInterval {
		return fmt.Errorf("WS_PONG_TIMEOUT must be longer than WS_PING_INTERVAL")
	}
	if c.ChangeMonitorInterval <= 0 {
		return fmt.Errorf("CHANGE_MONITOR_INTERVAL must be positive")
	}
	return nil
}

// IsRelease returns true if gin runs in release mode
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// LoadBoard loads the order board configuration from the environment
func LoadBoard() (*BoardConfig, error) {
	loadEnv()

	cfg := &BoardConfig{
		BaseURL:              getEnv("DASHBOARD_URL", "http://localhost:8080"),
		ConnectedInterval:    getDuration("POLL_CONNECTED_INTERVAL", 30*time.Second),
		DisconnectedInterval: getDuration("POLL_DISCONNECTED_INTERVAL", 3*time.Second),
		ReconnectDelay:       getDuration("WS_RECONNECT_DELAY", 2*time.Second),
		CoalesceWindow:       getDuration("INVALIDATION_WINDOW", 100*time.Millisecond),
		StatusBucket:         getEnv("BOARD_BUCKET", "active"),
		SourceFilter:         getEnv("BOARD_SOURCE", "all"),
		SortKey:              getEnv("BOARD_SORT", "status"),
		PageSize:             getInt("BOARD_PAGE_SIZE", 12),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *BoardConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("DASHBOARD_URL is required")
	}
	if c.DisconnectedInterval <= 0 || c.ConnectedInterval < c.DisconnectedInterval {
		return fmt.Errorf("POLL_CONNECTED_INTERVAL must not be shorter than POLL_DISCONNECTED_INTERVAL")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("BOARD_PAGE_SIZE must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration for %s (%q), using %s", key, value, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid integer for %s (%q), using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: invalid number for %s (%q), using %g", key, value, fallback)
		return fallback
	}
	return f
}

func getList(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
