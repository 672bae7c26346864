// Package config loads process configuration from the environment.
// An optional .env file in the working directory is read first; variables
// already present in the environment take precedence over it.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stock_fetcher/internal/feature/marketdata/adapters/googlefinance"
	"stock_fetcher/internal/feature/marketdata/adapters/twelvedata"
	"stock_fetcher/internal/feature/marketdata/usecase"
	"stock_fetcher/internal/platform/cache"
	"stock_fetcher/internal/platform/redis"
	"stock_fetcher/internal/shared/ratelimiter"
)

// Supported values of MARKET_PROVIDER.
const (
	ProviderYahoo      = "yahoo"
	ProviderTwelveData = "twelvedata"
)

// Supported values of CACHE_BACKEND.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the fully resolved process configuration.
type Config struct {
	Provider        string
	TwelveData      twelvedata.Config
	GoogleFinance   string
	ProviderTimeout time.Duration
	ScrapeTimeout   time.Duration
	Governor        ratelimiter.Config
	CacheTTL        time.Duration
	CacheBackend    string
	Redis           redis.Config
	JWTSecret       string
	LogLevel        string
	Port            string
}

// Load reads .env (if present) and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone.
// Malformed numeric or duration values are reported together.
func FromEnv() (Config, error) {
	var errs []error

	gov := ratelimiter.DefaultConfig()
	gov.MaxRequestsPerMinute = intVar("MAX_REQUESTS_PER_MINUTE", gov.MaxRequestsPerMinute, &errs)
	gov.BaseDelay = durationVar("BASE_DELAY", gov.BaseDelay, &errs)

	cfg := Config{
		Provider:        strings.ToLower(stringVar("MARKET_PROVIDER", ProviderYahoo)),
		TwelveData:      twelvedata.LoadConfig(),
		GoogleFinance:   stringVar("GOOGLE_FINANCE_BASE_URL", googlefinance.DefaultBaseURL),
		ProviderTimeout: durationVar("PROVIDER_TIMEOUT", usecase.DefaultProviderTimeout, &errs),
		ScrapeTimeout:   durationVar("SCRAPE_TIMEOUT", googlefinance.DefaultTimeout, &errs),
		Governor:        gov,
		CacheTTL:        durationVar("CACHE_TTL", cache.DefaultTTL, &errs),
		CacheBackend:    strings.ToLower(stringVar("CACHE_BACKEND", CacheMemory)),
		Redis: redis.Config{
			Host:     stringVar("REDIS_HOST", "localhost"),
			Port:     stringVar("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		LogLevel:  stringVar("LOG_LEVEL", "info"),
		Port:      stringVar("PORT", "8080"),
	}

	switch cfg.Provider {
	case ProviderYahoo, ProviderTwelveData:
	default:
		errs = append(errs, fmt.Errorf("MARKET_PROVIDER: unsupported provider %q", cfg.Provider))
	}
	switch cfg.CacheBackend {
	case CacheMemory, CacheRedis:
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND: unsupported backend %q", cfg.CacheBackend))
	}
	if cfg.Provider == ProviderTwelveData && cfg.TwelveData.TwelveDataAPIKey == "" {
		errs = append(errs, errors.New("TWELVE_DATA_API_KEY is required for the twelvedata provider"))
	}
	if gov.MaxRequestsPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("MAX_REQUESTS_PER_MINUTE: must be positive, got %d", gov.MaxRequestsPerMinute))
	}

	return cfg, errors.Join(errs...)
}

func stringVar(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intVar(key string, def int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

// durationVar accepts Go durations ("750ms") and bare numbers of seconds ("0.1").
func durationVar(key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return time.Duration(secs * float64(time.Second))
}
