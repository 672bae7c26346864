package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock_fetcher/internal/app/cli"
	"stock_fetcher/internal/app/config"
	"stock_fetcher/internal/app/di"
	"stock_fetcher/internal/feature/marketdata/domain/entity"
	"stock_fetcher/internal/platform/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 設定読み込み前でもログを構造化出力にする
	flush, err := logger.Setup(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger setup failed:", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	newRunner := func(ctx context.Context) (cli.Runner, func(), error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		md := di.NewMarketData(ctx, cfg, nil)
		return md.Usecase, md.Close, nil
	}
	secret := func() string {
		cfg, _ := config.Load()
		return cfg.JWTSecret
	}

	cmd := cli.NewRootCommand(newRunner, secret, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			b, _ := json.Marshal(entity.ErrorResult{Error: err.Error()})
			fmt.Fprintln(os.Stderr, string(b))
		}
		return 1
	}
	return 0
}
