// Package yahoo はpiquette/finance-goを使ってYahoo Financeから株価データを取得します。
package yahoo

import (
	"context"
	"fmt"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"stock_fetcher/internal/feature/marketdata/domain/entity"
	"stock_fetcher/internal/feature/marketdata/usecase"
)

// Name はレコードのsourceに記録されるプロバイダ名です。
const Name = "Yahoo Finance"

// intradayPeriod は分足を取得する期間です。
const intradayPeriod = 5 * 24 * time.Hour

var intervals = map[entity.Interval]datetime.Interval{
	entity.Interval1Min:  "1m",
	entity.Interval5Min:  "5m",
	entity.Interval15Min: "15m",
	entity.Interval30Min: "30m",
	entity.Interval60Min: "1h",
}

const dailyInterval datetime.Interval = "1d"

// BarIter はchart.Iterのうち本パッケージが利用するメソッドです。
type BarIter interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// Backend はfinance-goの呼び出し口です。テストでは差し替えます。
type Backend struct {
	Quote  func(symbol string) (*finance.Quote, error)
	Equity func(symbol string) (*finance.Equity, error)
	Chart  func(p *chart.Params) BarIter
}

// DefaultBackend はfinance-goのパッケージ関数をそのまま使うBackendを返します。
func DefaultBackend() Backend {
	return Backend{
		Quote:  quote.Get,
		Equity: equity.Get,
		Chart:  func(p *chart.Params) BarIter { return chart.Get(p) },
	}
}

// Market はYahoo FinanceのMarketProvider実装です。
type Market struct {
	backend Backend
	now     func() time.Time
}

var _ usecase.MarketProvider = (*Market)(nil)

// NewMarket はMarketを生成します。nowがnilの場合はtime.Nowを使います。
func NewMarket(backend Backend, now func() time.Time) *Market {
	if now == nil {
		now = time.Now
	}
	return &Market{backend: backend, now: now}
}

// Name はプロバイダ名を返します。
func (m *Market) Name() string { return Name }

// Quote は株価に加えて、取得できればバリュエーション指標も返します。
func (m *Market) Quote(ctx context.Context, symbol string) (entity.Quote, error) {
	eq, err := call(ctx, func() (*finance.Equity, error) { return m.backend.Equity(symbol) })
	if err != nil {
		return entity.Quote{}, fmt.Errorf("yahoo quote %s: %w", symbol, err)
	}
	if eq == nil {
		return entity.Quote{}, fmt.Errorf("yahoo quote %s: %w", symbol, entity.ErrNoData)
	}

	return entity.Quote{
		Symbol:           symbol,
		Price:            eq.RegularMarketPrice,
		Change:           eq.RegularMarketChange,
		ChangePercent:    eq.RegularMarketChangePercent,
		Volume:           int64(eq.RegularMarketVolume),
		MarketCap:        eq.MarketCap,
		PERatio:          eq.TrailingPE,
		EPS:              eq.EpsTrailingTwelveMonths,
		DividendYield:    eq.TrailingAnnualDividendYield,
		FiftyTwoWeekHigh: eq.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  eq.FiftyTwoWeekLow,
		CompanyName:      companyName(eq),
		Currency:         eq.CurrencyID,
		Exchange:         eq.FullExchangeName,
		Source:           Name,
	}, nil
}

// Intraday は直近5日間の分足を返します。
func (m *Market) Intraday(ctx context.Context, symbol string, interval entity.Interval) ([]entity.Bar, error) {
	iv, ok := intervals[interval]
	if !ok {
		iv = intervals[entity.DefaultInterval]
	}
	end := m.now()
	return m.bars(ctx, symbol, end.Add(-intradayPeriod), end, iv)
}

// Daily は直近days日間の日足を返します。
func (m *Market) Daily(ctx context.Context, symbol string, days int) ([]entity.Bar, error) {
	end := m.now()
	return m.bars(ctx, symbol, end.AddDate(0, 0, -days), end, dailyInterval)
}

func (m *Market) bars(ctx context.Context, symbol string, start, end time.Time, iv datetime.Interval) ([]entity.Bar, error) {
	p := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: iv,
	}
	bars, err := call(ctx, func() ([]entity.Bar, error) {
		it := m.backend.Chart(p)
		var out []entity.Bar
		for it.Next() {
			if b := it.Bar(); b != nil {
				out = append(out, toBar(b))
			}
		}
		return out, it.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s %s: %w", symbol, iv, err)
	}
	return bars, nil
}

func toBar(b *finance.ChartBar) entity.Bar {
	return entity.Bar{
		Time:     time.Unix(int64(b.Timestamp), 0).UTC(),
		Open:     toFloat(b.Open),
		High:     toFloat(b.High),
		Low:      toFloat(b.Low),
		Close:    toFloat(b.Close),
		AdjClose: toFloat(b.AdjClose),
		Volume:   int64(b.Volume),
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// Search はクエリの各トークンを銘柄コードとみなして照会します。
// finance-goには検索APIがないため、照会に失敗したトークンは読み飛ばします。
func (m *Market) Search(ctx context.Context, query string, limit int) ([]entity.SearchMatch, error) {
	var matches []entity.SearchMatch
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(query) {
		if len(matches) >= limit {
			break
		}
		sym := strings.ToUpper(tok)
		if seen[sym] {
			continue
		}
		seen[sym] = true

		q, err := call(ctx, func() (*finance.Quote, error) { return m.backend.Quote(sym) })
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if q == nil {
			continue
		}
		name := q.ShortName
		if name == "" {
			name = sym
		}
		matches = append(matches, entity.SearchMatch{
			Symbol:   sym,
			Name:     name,
			Exchange: q.FullExchangeName,
			Type:     string(q.QuoteType),
		})
	}
	return matches, nil
}

// Overview はequity情報から企業概要を組み立てます。
// Yahooのquote APIが返さない財務項目はゼロのままです。
func (m *Market) Overview(ctx context.Context, symbol string) (entity.Overview, error) {
	eq, err := call(ctx, func() (*finance.Equity, error) { return m.backend.Equity(symbol) })
	if err != nil {
		return entity.Overview{}, fmt.Errorf("yahoo overview %s: %w", symbol, err)
	}
	if eq == nil {
		return entity.Overview{}, fmt.Errorf("yahoo overview %s: %w", symbol, entity.ErrNoData)
	}
	return entity.Overview{
		Symbol:               symbol,
		CompanyName:          companyName(eq),
		MarketCap:            eq.MarketCap,
		PERatio:              eq.TrailingPE,
		ForwardPE:            eq.ForwardPE,
		PriceToBook:          eq.PriceToBook,
		DividendYield:        eq.TrailingAnnualDividendYield,
		FiftyTwoWeekHigh:     eq.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:      eq.FiftyTwoWeekLow,
		FiftyDayAverage:      eq.FiftyDayAverage,
		TwoHundredDayAverage: eq.TwoHundredDayAverage,
		Volume:               int64(eq.RegularMarketVolume),
		AvgVolume:            int64(eq.AverageDailyVolume3Month),
		SharesOutstanding:    int64(eq.SharesOutstanding),
		BookValue:            eq.BookValue,
	}, nil
}

func companyName(eq *finance.Equity) string {
	if eq.LongName != "" {
		return eq.LongName
	}
	return eq.ShortName
}

// call はcontext非対応のfinance-go呼び出しをゴルーチンで実行し、ctxの終了を待たずに戻れるようにします。
// 戻った後も呼び出し自体はHTTPクライアントのタイムアウトまで継続します。
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
