package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"stock_fetcher/internal/app/config"
	"stock_fetcher/internal/app/di"
	"stock_fetcher/internal/app/router"
	"stock_fetcher/internal/feature/marketdata/transport/handler"
	platformhandler "stock_fetcher/internal/platform/http/handler"
	"stock_fetcher/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	flush, lerr := logger.Setup(cfg.LogLevel)
	defer flush()
	if lerr != nil {
		slog.Warn("logger setup failed, using default", "error", lerr)
	}
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		flush()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Usecase（プロバイダ・レート制御・キャッシュ）
	md := di.NewMarketData(ctx, cfg, reg)
	defer md.Close()

	// JWT_SECRETチェック（未設定なら /api は認証なし）
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set. /api routes are unauthenticated.")
	}

	gin.SetMode(gin.ReleaseMode)
	r := router.NewRouter(router.Deps{
		MarketData:   handler.NewMarketDataHandler(md.Usecase),
		Health:       platformhandler.NewHealth(md.Checks),
		Gatherer:     reg,
		AuthRequired: cfg.JWTSecret != "",
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "provider", cfg.Provider, "cache", cfg.CacheBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	s := md.Usecase.Stats()
	slog.Info("server stopped", "requests", s.Requests, "success_rate", s.SuccessRate, "uptime", s.Uptime.String())
}
