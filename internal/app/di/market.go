// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	redisv9 "github.com/redis/go-redis/v9"

	"stock_fetcher/internal/app/config"
	"stock_fetcher/internal/feature/marketdata/adapters/googlefinance"
	"stock_fetcher/internal/feature/marketdata/adapters/twelvedata"
	"stock_fetcher/internal/feature/marketdata/adapters/yahoo"
	"stock_fetcher/internal/feature/marketdata/usecase"
	"stock_fetcher/internal/platform/cache"
	infrahttp "stock_fetcher/internal/platform/http"
	"stock_fetcher/internal/platform/http/handler"
	"stock_fetcher/internal/platform/metrics"
	infraredis "stock_fetcher/internal/platform/redis"
	"stock_fetcher/internal/shared/ratelimiter"
)

// MarketData is the wired marketdata feature plus the resources it owns.
type MarketData struct {
	Usecase  *usecase.FetchUsecase
	Governor *ratelimiter.Governor
	// Checks are dependency probes for /healthz.
	Checks map[string]handler.Check
	// Close releases the Redis connection, if any.
	Close func()
}

// NewMarketProvider creates the primary provider selected by MARKET_PROVIDER.
func NewMarketProvider(cfg config.Config) usecase.MarketProvider {
	if cfg.Provider == config.ProviderTwelveData {
		httpClient := infrahttp.NewHTTPClient(cfg.TwelveData.Timeout)
		return twelvedata.NewTwelveDataMarket(cfg.TwelveData, httpClient)
	}
	return yahoo.NewMarket(yahoo.DefaultBackend(), nil)
}

// NewScraper creates the Google Finance fallback scraper.
func NewScraper(cfg config.Config) *googlefinance.Scraper {
	client := infrahttp.NewHTTPClient(cfg.ScrapeTimeout, infrahttp.WithUserAgent(googlefinance.UserAgent))
	return googlefinance.NewScraper(cfg.GoogleFinance, client)
}

// NewCache creates the response cache selected by CACHE_BACKEND.
// If Redis is unreachable it falls back to the in-process cache.
func NewCache(ctx context.Context, cfg config.Config) (usecase.ResponseCache, *redisv9.Client) {
	if cfg.CacheBackend == config.CacheRedis {
		rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
		if err == nil {
			return cache.NewRedisCache(rdb, cfg.CacheTTL, "marketdata"), rdb
		}
		slog.Warn("Redis unavailable. Falling back to in-memory cache.", "error", err)
	}
	return cache.NewMemoryCache(cfg.CacheTTL), nil
}

// NewMarketData wires providers, governor, cache and metrics into a FetchUsecase.
// reg may be nil, in which case no Prometheus metrics are registered.
func NewMarketData(ctx context.Context, cfg config.Config, reg prometheus.Registerer) *MarketData {
	gov := ratelimiter.NewGovernor(cfg.Governor)
	respCache, rdb := NewCache(ctx, cfg)

	opts := []usecase.Option{usecase.WithProviderTimeout(cfg.ProviderTimeout)}
	if reg != nil {
		opts = append(opts, usecase.WithObserver(metrics.NewCollector(reg)))
		metrics.RegisterGovernor(reg, gov.Snapshot)
	}

	md := &MarketData{
		Usecase:  usecase.NewFetchUsecase(NewMarketProvider(cfg), NewScraper(cfg), gov, respCache, opts...),
		Governor: gov,
		Checks:   map[string]handler.Check{},
		Close:    func() {},
	}
	if rdb != nil {
		md.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		md.Close = func() {
			if err := rdb.Close(); err != nil {
				slog.Error("Failed to close Redis client", "error", err)
			}
		}
	}
	return md
}
