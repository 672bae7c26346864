// Package usecase は株価データ取得のオーケストレーションを実装します。
// 各操作はキャッシュ参照、レート制御、プロバイダ呼び出し、検証、フォールバックの順に処理します。
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"stock_fetcher/internal/feature/marketdata/domain/entity"
	"stock_fetcher/internal/feature/marketdata/domain/validation"
)

// DefaultProviderTimeout は一次プロバイダ呼び出し1回あたりの上限時間です。
const DefaultProviderTimeout = 15 * time.Second

// 統計とメトリクスで使う操作名です。
const (
	opQuote         = "quote"
	opQuoteFallback = "quote_fallback"
	opIntraday      = "intraday"
	opDaily         = "daily"
	opSearch        = "search"
	opOverview      = "overview"
	opSectors       = "sectors"
	opBatch         = "batch"
)

// EmptyQueryMessage は空の検索クエリに対するエラーメッセージです。
const EmptyQueryMessage = "Empty search query"

// Option はFetchUsecaseの生成オプションです。
type Option func(*FetchUsecase)

// WithSectorSymbols はセクタースナップショットで取得する銘柄を差し替えます。
func WithSectorSymbols(symbols []string) Option {
	return func(uc *FetchUsecase) { uc.sectors = append([]string(nil), symbols...) }
}

// WithProviderTimeout はプロバイダ呼び出しのタイムアウトを設定します。
func WithProviderTimeout(d time.Duration) Option {
	return func(uc *FetchUsecase) {
		if d > 0 {
			uc.providerTimeout = d
		}
	}
}

// WithClock は現在時刻の取得関数を差し替えます（テスト用）。
func WithClock(now func() time.Time) Option {
	return func(uc *FetchUsecase) { uc.now = now }
}

// WithObserver は操作結果の通知先を設定します。
func WithObserver(o Observer) Option {
	return func(uc *FetchUsecase) { uc.observer = o }
}

// FetchUsecase は株価データ取得のユースケースです。
// 統計情報はインスタンスごとに保持するため、複数のインスタンスは互いに干渉しません。
type FetchUsecase struct {
	primary  MarketProvider
	fallback QuoteScraper
	gov      Governor
	cache    ResponseCache
	stats    *Stats
	observer Observer

	sectors         []string
	providerTimeout time.Duration
	now             func() time.Time

	// 同一キーの同時リクエストを1回のプロバイダ呼び出しにまとめます。
	group singleflight.Group
}

// NewFetchUsecase は新しいFetchUsecaseを生成します。fallbackはnilでも構いません。
func NewFetchUsecase(primary MarketProvider, fallback QuoteScraper, gov Governor, cache ResponseCache, opts ...Option) *FetchUsecase {
	uc := &FetchUsecase{
		primary:         primary,
		fallback:        fallback,
		gov:             gov,
		cache:           cache,
		sectors:         append([]string(nil), entity.SectorSymbols...),
		providerTimeout: DefaultProviderTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.stats = NewStats(uc.now, uc.observer)
	return uc
}

// Stats は実行統計を返します。
func (uc *FetchUsecase) Stats() Summary {
	return uc.stats.Summary()
}

// Quote は単一銘柄の株価を取得します。
// 一次プロバイダが失敗した場合はスクレイパーを試し、それも失敗した場合は
// error に "Scraping failed" を設定したレコードを返します。
func (uc *FetchUsecase) Quote(ctx context.Context, symbol string) entity.Quote {
	symbol = normalizeSymbol(symbol)
	abort := func(error) entity.Quote { return entity.FailedQuote(symbol, uc.now()) }
	return cached(ctx, uc, opQuote, "quote:"+symbol, abort, func(ctx context.Context) (entity.Quote, bool) {
		if q, err := uc.primaryQuote(ctx, symbol); err == nil {
			return q, true
		}
		return uc.fallbackQuote(ctx, symbol)
	})
}

func (uc *FetchUsecase) primaryQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	start := uc.now()
	var q entity.Quote
	err := uc.governed(ctx, func(ctx context.Context) (err error) {
		q, err = uc.primary.Quote(ctx, symbol)
		return err
	})
	if err == nil {
		q = uc.shapeQuote(q, symbol, uc.primary.Name())
		err = validation.CheckQuote(q)
	}
	if err != nil {
		uc.fail(opQuote, symbol, start, err)
		return entity.Quote{}, err
	}
	uc.succeed(opQuote, symbol, start)
	return q, nil
}

func (uc *FetchUsecase) fallbackQuote(ctx context.Context, symbol string) (entity.Quote, bool) {
	if uc.fallback == nil {
		return entity.FailedQuote(symbol, uc.now()), false
	}

	start := uc.now()
	var q entity.Quote
	err := uc.governed(ctx, func(ctx context.Context) (err error) {
		q, err = uc.fallback.Quote(ctx, symbol)
		return err
	})
	if err == nil {
		q = uc.shapeQuote(q, symbol, uc.fallback.Name())
		err = validation.CheckQuote(q)
	}
	if err != nil {
		uc.fail(opQuoteFallback, symbol, start, err)
		return entity.FailedQuote(symbol, uc.now()), false
	}
	uc.succeed(opQuoteFallback, symbol, start)
	return q, true
}

// Intraday は直近5日間の分足データを取得します。未対応のintervalは5minとして扱います。
func (uc *FetchUsecase) Intraday(ctx context.Context, symbol, interval string) entity.Series {
	symbol = normalizeSymbol(symbol)
	iv := entity.ParseInterval(interval)
	key := fmt.Sprintf("intraday:%s:%s", symbol, iv)

	abort := func(err error) entity.Series {
		return entity.Series{Symbol: symbol, Interval: string(iv), Data: []entity.Bar{}, Error: err.Error()}
	}
	return cached(ctx, uc, opIntraday, key, abort, func(ctx context.Context) (entity.Series, bool) {
		start := uc.now()
		var bars []entity.Bar
		err := uc.governed(ctx, func(ctx context.Context) (err error) {
			bars, err = uc.primary.Intraday(ctx, symbol, iv)
			return err
		})
		if err == nil && len(bars) == 0 {
			err = entity.ErrNoData
		}
		if err != nil {
			kind := uc.fail(opIntraday, symbol, start, err)
			return entity.Series{Symbol: symbol, Interval: string(iv), Data: []entity.Bar{}, Error: errorMessage(kind, err)}, false
		}

		data := make([]entity.Bar, 0, len(bars))
		for _, b := range bars {
			b.Timestamp = b.Time.Format(time.RFC3339)
			b.Date = ""
			b.AdjClose = 0
			data = append(data, b)
		}
		uc.succeed(opIntraday, symbol, start)
		return entity.Series{Symbol: symbol, Interval: string(iv), Data: data, Count: len(data)}, true
	})
}

// Daily は直近days日分の日足データを取得します。daysが0以下の場合は30日とします。
func (uc *FetchUsecase) Daily(ctx context.Context, symbol string, days int) entity.Series {
	symbol = normalizeSymbol(symbol)
	if days <= 0 {
		days = entity.DefaultDays
	}
	key := fmt.Sprintf("daily:%s:%d", symbol, days)

	abort := func(err error) entity.Series {
		return entity.Series{Symbol: symbol, Period: entity.PeriodLabel(days), Data: []entity.Bar{}, Error: err.Error()}
	}
	return cached(ctx, uc, opDaily, key, abort, func(ctx context.Context) (entity.Series, bool) {
		start := uc.now()
		var bars []entity.Bar
		err := uc.governed(ctx, func(ctx context.Context) (err error) {
			bars, err = uc.primary.Daily(ctx, symbol, days)
			return err
		})
		if err == nil && len(bars) == 0 {
			err = entity.ErrNoData
		}
		if err != nil {
			kind := uc.fail(opDaily, symbol, start, err)
			return entity.Series{Symbol: symbol, Period: entity.PeriodLabel(days), Data: []entity.Bar{}, Error: errorMessage(kind, err)}, false
		}

		data := make([]entity.Bar, 0, len(bars))
		for _, b := range bars {
			b.Date = b.Time.Format("2006-01-02")
			b.Timestamp = ""
			data = append(data, b)
		}
		uc.succeed(opDaily, symbol, start)
		return entity.Series{Symbol: symbol, Period: entity.PeriodLabel(days), Data: data, Count: len(data)}, true
	})
}

// Search は銘柄を検索します。結果は最大10件です。
func (uc *FetchUsecase) Search(ctx context.Context, query string) entity.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return entity.SearchResult{Query: query, Results: []entity.SearchMatch{}, Error: EmptyQueryMessage}
	}
	key := "search:" + strings.ToLower(query)

	abort := func(err error) entity.SearchResult {
		return entity.SearchResult{Query: query, Results: []entity.SearchMatch{}, Error: err.Error()}
	}
	return cached(ctx, uc, opSearch, key, abort, func(ctx context.Context) (entity.SearchResult, bool) {
		start := uc.now()
		var matches []entity.SearchMatch
		err := uc.governed(ctx, func(ctx context.Context) (err error) {
			matches, err = uc.primary.Search(ctx, query, entity.MaxSearchResults)
			return err
		})
		if err != nil {
			kind := uc.fail(opSearch, query, start, err)
			return entity.SearchResult{Query: query, Results: []entity.SearchMatch{}, Error: errorMessage(kind, err)}, false
		}

		if len(matches) > entity.MaxSearchResults {
			matches = matches[:entity.MaxSearchResults]
		}
		results := make([]entity.SearchMatch, 0, len(matches))
		for _, m := range matches {
			results = append(results, withMatchDefaults(m))
		}
		uc.succeed(opSearch, query, start)
		return entity.SearchResult{Query: query, Results: results, Count: len(results)}, true
	})
}

// Overview は企業概要を取得します。
func (uc *FetchUsecase) Overview(ctx context.Context, symbol string) entity.Overview {
	symbol = normalizeSymbol(symbol)

	abort := func(err error) entity.Overview {
		return entity.Overview{Symbol: symbol, Timestamp: uc.now(), Error: err.Error()}
	}
	return cached(ctx, uc, opOverview, "overview:"+symbol, abort, func(ctx context.Context) (entity.Overview, bool) {
		start := uc.now()
		var o entity.Overview
		err := uc.governed(ctx, func(ctx context.Context) (err error) {
			o, err = uc.primary.Overview(ctx, symbol)
			return err
		})
		if err == nil {
			if o.Symbol == "" {
				o.Symbol = symbol
			}
			if o.Timestamp.IsZero() {
				o.Timestamp = uc.now()
			}
			o = o.WithDefaults()
			err = validation.CheckOverview(o)
		}
		if err != nil {
			kind := uc.fail(opOverview, symbol, start, err)
			return entity.Overview{Symbol: symbol, Timestamp: uc.now(), Error: errorMessage(kind, err)}, false
		}
		uc.succeed(opOverview, symbol, start)
		return o, true
	})
}

// Sectors はセクターETFの株価を順番に取得します。
// 個別セクターの失敗はログに出力してスキップし、スナップショット全体は中断しません。
// 価格が取得できなかったセクターも0のまま含めます。全セクターが失敗した場合は空のスナップショットを返し、キャッシュはしません。
func (uc *FetchUsecase) Sectors(ctx context.Context) entity.SectorSnapshot {
	abort := func(err error) entity.SectorSnapshot {
		return entity.SectorSnapshot{Sectors: []entity.Sector{}, Timestamp: uc.now(), Error: err.Error()}
	}
	return cached(ctx, uc, opSectors, "sectors", abort, func(ctx context.Context) (entity.SectorSnapshot, bool) {
		start := uc.now()
		sectors := make([]entity.Sector, 0, len(uc.sectors))
		for _, sym := range uc.sectors {
			var q entity.Quote
			err := uc.governed(ctx, func(ctx context.Context) (err error) {
				q, err = uc.primary.Quote(ctx, sym)
				return err
			})
			if err == nil && q.Error != "" {
				err = fmt.Errorf("%w: %s", entity.ErrInvalidRecord, q.Error)
			}
			if err != nil {
				slog.Error("failed to fetch sector", "symbol", sym, "error", err)
				continue
			}
			q = uc.shapeQuote(q, sym, uc.primary.Name())
			sectors = append(sectors, entity.Sector{
				Sector:        q.CompanyName,
				Symbol:        sym,
				Price:         q.Price,
				Change:        q.Change,
				ChangePercent: q.ChangePercent,
				Volume:        q.Volume,
				MarketCap:     q.MarketCap,
			})
		}

		uc.succeed(opSectors, "all", start)
		snap := entity.SectorSnapshot{Sectors: sectors, Count: len(sectors), Timestamp: uc.now()}
		return snap, len(sectors) > 0
	})
}

// BatchQuotes は複数銘柄の株価を順番に取得します。
// 個別銘柄の失敗はその銘柄のレコードに記録され、バッチ全体は中断しません。
// レート制御を正しく機能させるため並列化はしません。
func (uc *FetchUsecase) BatchQuotes(ctx context.Context, symbols []string) entity.BatchResult {
	start := uc.now()
	results := make([]entity.Quote, 0, len(symbols))
	for _, s := range symbols {
		results = append(results, uc.Quote(ctx, s))
	}

	uc.succeed(opBatch, fmt.Sprintf("%d symbols", len(symbols)), start)
	return entity.BatchResult{
		Symbols:   append([]string{}, symbols...),
		Results:   results,
		Count:     len(results),
		Timestamp: uc.now(),
	}
}

// cached は検証済みレコードをキャッシュから返し、なければfetchを実行します。
// fetchが成功（ok=true）した場合のみ結果をキャッシュに保存します。
// 同一キーの同時リクエストは1回のfetchにまとめます。fetchは呼び出し元のキャンセルから切り離して実行し
// （上限はprovider timeout）、各呼び出し元は自身のctxが終了した時点でabortの結果を返します。
func cached[T any](ctx context.Context, uc *FetchUsecase, op, key string, abort func(error) T, fetch func(context.Context) (T, bool)) T {
	if b, ok := uc.cache.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			uc.stats.Record(op, key+" (cached)", 0, true)
			return v
		}
		slog.Warn("discarding undecodable cache entry", "key", key)
	}
	if err := ctx.Err(); err != nil {
		return abandon(uc, op, key, abort, err)
	}

	fctx := context.WithoutCancel(ctx)
	ch := uc.group.DoChan(key, func() (any, error) {
		v, ok := fetch(fctx)
		if ok {
			b, err := json.Marshal(v)
			if err != nil {
				slog.Warn("failed to encode cache entry", "key", key, "error", err)
				return v, nil
			}
			uc.cache.Put(fctx, key, b)
		}
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val.(T)
	case <-ctx.Done():
		return abandon(uc, op, key, abort, ctx.Err())
	}
}

// abandon は呼び出し元のキャンセルを記録します。Governorには通知しません。
func abandon[T any](uc *FetchUsecase, op, key string, abort func(error) T, err error) T {
	uc.stats.Record(op, key, 0, false)
	slog.Warn("request cancelled by caller", "op", op, "key", key, "error", err)
	return abort(err)
}

// governed はレート制御の後、タイムアウト付きでプロバイダを呼び出します。
func (uc *FetchUsecase) governed(ctx context.Context, call func(context.Context) error) error {
	if err := uc.gov.WaitIfNeeded(ctx); err != nil {
		return err
	}
	cctx, cancel := context.WithTimeout(ctx, uc.providerTimeout)
	defer cancel()
	return call(cctx)
}

func (uc *FetchUsecase) succeed(op, subject string, start time.Time) {
	uc.stats.Record(op, subject, uc.now().Sub(start), true)
	uc.gov.ResetErrorCount()
}

// fail は失敗を記録し、エラーの種類を返します。
// プロバイダの不調と判断できる場合のみGovernorにエラーを通知します。
// 呼び出し元のキャンセルはcachedで扱うため、ここに届くのはプロバイダ側の失敗だけです。
func (uc *FetchUsecase) fail(op, subject string, start time.Time, err error) entity.ErrorKind {
	kind := entity.Classify(err)
	d := uc.now().Sub(start)
	uc.stats.Record(op, subject, d, false)
	slog.Error("fetch failed", "op", op, "subject", subject, "kind", kind.String(), "duration", d.Round(time.Millisecond).String(), "error", err)

	if kind != entity.KindNoData {
		uc.gov.HandleError()
	}
	return kind
}

func (uc *FetchUsecase) shapeQuote(q entity.Quote, symbol, source string) entity.Quote {
	if q.Symbol == "" {
		q.Symbol = symbol
	}
	if q.Source == "" {
		q.Source = source
	}
	if q.Timestamp.IsZero() {
		q.Timestamp = uc.now()
	}
	return q.WithDefaults()
}

func withMatchDefaults(m entity.SearchMatch) entity.SearchMatch {
	if m.Name == "" {
		m.Name = m.Symbol
	}
	for _, f := range []*string{&m.Exchange, &m.Type, &m.Sector, &m.Industry} {
		if *f == "" {
			*f = entity.UnknownValue
		}
	}
	return m
}

// errorMessage はエラーの種類に応じて利用者向けのメッセージを返します。
func errorMessage(kind entity.ErrorKind, err error) string {
	switch kind {
	case entity.KindNoData:
		return entity.NoDataMessage
	default:
		return err.Error()
	}
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
