package usecase

import (
	"context"
	"time"

	"stock_fetcher/internal/feature/marketdata/domain/entity"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=usecase

// MarketProvider は構造化データを返す一次プロバイダのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketProvider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (entity.Quote, error)
	Intraday(ctx context.Context, symbol string, interval entity.Interval) ([]entity.Bar, error)
	Daily(ctx context.Context, symbol string, days int) ([]entity.Bar, error)
	Search(ctx context.Context, query string, limit int) ([]entity.SearchMatch, error)
	Overview(ctx context.Context, symbol string) (entity.Overview, error)
}

// QuoteScraper は一次プロバイダ失敗時に使うフォールバックの取得元です。
type QuoteScraper interface {
	Name() string
	Quote(ctx context.Context, symbol string) (entity.Quote, error)
}

// Governor は外部呼び出しの頻度を制御します。
type Governor interface {
	WaitIfNeeded(ctx context.Context) error
	HandleError()
	ResetErrorCount()
}

// ResponseCache は検証済みレコードをJSONで保持するキャッシュです。
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, payload []byte)
}

// Observer は操作ごとの結果を外部（メトリクス等）に通知します。
type Observer interface {
	Observe(op string, d time.Duration, ok bool)
}
