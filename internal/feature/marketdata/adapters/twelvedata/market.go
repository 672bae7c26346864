package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"stock_fetcher/internal/feature/marketdata/adapters/twelvedata/dto"
	"stock_fetcher/internal/feature/marketdata/domain/entity"
	"stock_fetcher/internal/feature/marketdata/usecase"
)

// Name はレコードのsourceに記録されるプロバイダ名です。
const Name = "Twelve Data"

// 分足は直近5営業日分（1日390分）を取得します。
const (
	intradayDays   = 5
	minutesPerDay  = 390
	dailyInterval  = "1day"
	datetimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
	// maxOutputSize はTwelve Dataが1回で返す最大本数です。
	maxOutputSize = 5000
)

var intervals = map[entity.Interval]struct {
	param   string
	minutes int
}{
	entity.Interval1Min:  {"1min", 1},
	entity.Interval5Min:  {"5min", 5},
	entity.Interval15Min: {"15min", 15},
	entity.Interval30Min: {"30min", 30},
	entity.Interval60Min: {"1h", 60},
}

// TwelveDataMarket はTwelve Data外部APIから株価データを取得するMarketProvider実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

// Option はTwelveDataMarketの生成オプションです。
type Option func(*TwelveDataMarket)

// WithClock は日足の期間計算に使う現在時刻を差し替えます（テスト用）。
func WithClock(now func() time.Time) Option {
	return func(t *TwelveDataMarket) { t.now = now }
}

// TwelveDataMarketがMarketProviderを実装していることをコンパイル時に検証します。
var _ usecase.MarketProvider = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client, opts ...Option) *TwelveDataMarket {
	t := &TwelveDataMarket{cfg: cfg, client: client, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name はプロバイダ名を返します。
func (t *TwelveDataMarket) Name() string { return Name }

// Quote は /quote エンドポイントから現在値を取得します。
func (t *TwelveDataMarket) Quote(ctx context.Context, symbol string) (entity.Quote, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var body dto.QuoteResponse
	if err := t.get(ctx, "quote", q, &body, &body.Envelope); err != nil {
		return entity.Quote{}, err
	}
	return entity.Quote{
		Symbol:           body.Symbol,
		Price:            body.Close.Float(),
		Change:           body.Change.Float(),
		ChangePercent:    body.PercentChange.Float(),
		Volume:           body.Volume.Int(),
		FiftyTwoWeekHigh: body.FiftyTwoWeek.High.Float(),
		FiftyTwoWeekLow:  body.FiftyTwoWeek.Low.Float(),
		CompanyName:      body.Name,
		Currency:         body.Currency,
		Exchange:         body.Exchange,
		Source:           Name,
	}, nil
}

// Intraday は直近5日間の分足を古い順に返します。
func (t *TwelveDataMarket) Intraday(ctx context.Context, symbol string, interval entity.Interval) ([]entity.Bar, error) {
	iv, ok := intervals[interval]
	if !ok {
		iv = intervals[entity.DefaultInterval]
	}
	return t.GetTimeSeries(ctx, symbol, iv.param, intradayDays*minutesPerDay/iv.minutes)
}

// Daily は直近days暦日分の日足を古い順に返します。
// outputsizeは営業日の本数になるため、start_dateで期間を指定します。end_dateは省略して現在までとします。
func (t *TwelveDataMarket) Daily(ctx context.Context, symbol string, days int) ([]entity.Bar, error) {
	now := t.now().UTC()
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", dailyInterval)
	q.Set("start_date", now.AddDate(0, 0, -days).Format(dateLayout))
	q.Set("outputsize", strconv.Itoa(maxOutputSize))
	return t.timeSeries(ctx, q)
}

// GetTimeSeries はTwelve Data APIから時系列株価データを取得し、
// 古い順に並べたentity.Barのスライスとして返します。
func (t *TwelveDataMarket) GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Bar, error) {
	q := url.Values{}
	// クエリパラメータを追加
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(outputsize))
	return t.timeSeries(ctx, q)
}

func (t *TwelveDataMarket) timeSeries(ctx context.Context, q url.Values) ([]entity.Bar, error) {
	var body dto.TimeSeriesResponse
	if err := t.get(ctx, "time_series", q, &body, &body.Envelope); err != nil {
		return nil, err
	}

	bars := make([]entity.Bar, 0, len(body.Values))
	for _, v := range body.Values {
		// タイムスタンプをパース
		tm, err := time.Parse(datetimeLayout, v.Datetime)
		if err != nil {
			tm, err = time.Parse(dateLayout, v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		o, err := strconv.ParseFloat(v.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("parse open %q: %w", v.Open, err)
		}
		h, err := strconv.ParseFloat(v.High, 64)
		if err != nil {
			return nil, fmt.Errorf("parse high %q: %w", v.High, err)
		}
		l, err := strconv.ParseFloat(v.Low, 64)
		if err != nil {
			return nil, fmt.Errorf("parse low %q: %w", v.Low, err)
		}
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		// 為替や指数では出来高が返らないことがある
		var vol64 int64
		if v.Volume != "" {
			vol64, err = strconv.ParseInt(v.Volume, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse volume %q: %w", v.Volume, err)
			}
		}

		bars = append(bars, entity.Bar{
			Time:   tm,
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: vol64,
		})
	}
	// APIは新しい順で返す
	slices.SortFunc(bars, func(a, b entity.Bar) int { return a.Time.Compare(b.Time) })
	return bars, nil
}

// Search は /symbol_search エンドポイントで銘柄を検索します。
func (t *TwelveDataMarket) Search(ctx context.Context, query string, limit int) ([]entity.SearchMatch, error) {
	q := url.Values{}
	q.Set("symbol", query)
	q.Set("outputsize", strconv.Itoa(limit))

	var body dto.SymbolSearchResponse
	if err := t.get(ctx, "symbol_search", q, &body, &body.Envelope); err != nil {
		return nil, err
	}
	matches := make([]entity.SearchMatch, 0, min(len(body.Data), limit))
	for _, d := range body.Data {
		if len(matches) == limit {
			break
		}
		matches = append(matches, entity.SearchMatch{
			Symbol:   d.Symbol,
			Name:     d.InstrumentName,
			Exchange: d.Exchange,
			Type:     d.InstrumentType,
		})
	}
	return matches, nil
}

// Overview は /profile と /statistics を組み合わせて企業概要を作成します。
func (t *TwelveDataMarket) Overview(ctx context.Context, symbol string) (entity.Overview, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var profile dto.ProfileResponse
	if err := t.get(ctx, "profile", q, &profile, &profile.Envelope); err != nil {
		return entity.Overview{}, err
	}
	var stats dto.StatisticsResponse
	if err := t.get(ctx, "statistics", q, &stats, &stats.Envelope); err != nil {
		return entity.Overview{}, err
	}

	s := stats.Statistics
	fin := s.Financials
	return entity.Overview{
		Symbol:               symbol,
		CompanyName:          profile.Name,
		Sector:               profile.Sector,
		Industry:             profile.Industry,
		MarketCap:            s.ValuationsMetrics.MarketCapitalization.Int(),
		EnterpriseValue:      s.ValuationsMetrics.EnterpriseValue.Int(),
		PERatio:              s.ValuationsMetrics.TrailingPE.Float(),
		ForwardPE:            s.ValuationsMetrics.ForwardPE.Float(),
		PEGRatio:             s.ValuationsMetrics.PEGRatio.Float(),
		PriceToBook:          s.ValuationsMetrics.PriceToBookMRQ.Float(),
		PriceToSales:         s.ValuationsMetrics.PriceToSalesTTM.Float(),
		DividendYield:        s.DividendsAndSplits.ForwardAnnualDividendYield.Float(),
		PayoutRatio:          s.DividendsAndSplits.PayoutRatio.Float(),
		Beta:                 s.StockPriceSummary.Beta.Float(),
		FiftyTwoWeekHigh:     s.StockPriceSummary.FiftyTwoWeekHigh.Float(),
		FiftyTwoWeekLow:      s.StockPriceSummary.FiftyTwoWeekLow.Float(),
		FiftyDayAverage:      s.StockPriceSummary.Day50MA.Float(),
		TwoHundredDayAverage: s.StockPriceSummary.Day200MA.Float(),
		AvgVolume:            s.StockStatistics.AvgVolume90Day.Int(),
		SharesOutstanding:    s.StockStatistics.SharesOutstanding.Int(),
		FloatShares:          s.StockStatistics.FloatShares.Int(),
		ReturnOnEquity:       fin.ReturnOnEquityTTM.Float(),
		ReturnOnAssets:       fin.ReturnOnAssetsTTM.Float(),
		ProfitMargins:        fin.ProfitMargin.Float(),
		OperatingMargins:     fin.OperatingMargin.Float(),
		Revenue:              fin.IncomeStatement.RevenueTTM.Int(),
		GrossProfits:         fin.IncomeStatement.GrossProfitTTM.Int(),
		EBITDA:               fin.IncomeStatement.EBITDA.Int(),
		NetIncome:            fin.IncomeStatement.NetIncomeToCommonTTM.Int(),
		TotalCash:            fin.BalanceSheet.TotalCashMRQ.Int(),
		TotalDebt:            fin.BalanceSheet.TotalDebtMRQ.Int(),
		DebtToEquity:         fin.BalanceSheet.TotalDebtToEquityMRQ.Float(),
		CurrentRatio:         fin.BalanceSheet.CurrentRatioMRQ.Float(),
		BookValue:            fin.BalanceSheet.BookValuePerShareMRQ.Float(),
		CashFlow:             fin.CashFlow.OperatingCashFlowTTM.Int(),
		FreeCashFlow:         fin.CashFlow.LeveredFreeCashFlowTTM.Int(),
	}, nil
}

// get はAPIキーを付与してエンドポイントを呼び出し、レスポンスをoutにデコードします。
// envはoutに埋め込まれたエラー情報で、status="error"の場合はエラーに変換します。
func (t *TwelveDataMarket) get(ctx context.Context, endpoint string, q url.Values, out any, env *dto.Envelope) error {
	q.Set("apikey", t.cfg.TwelveDataAPIKey)
	u := fmt.Sprintf("%s/%s?%s", strings.TrimRight(t.cfg.BaseURL, "/"), endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("twelvedata http %d", res.StatusCode)
	}
	// JSONレスポンスをDTOにデコード
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("twelvedata %s: decode: %w", endpoint, err)
	}
	if env.Status == "error" {
		if noData(env) {
			return fmt.Errorf("twelvedata %s: %s: %w", endpoint, env.Message, entity.ErrNoData)
		}
		return fmt.Errorf("twelvedata: %s", env.Message)
	}
	return nil
}

// noData は銘柄やデータが存在しないことを示すエラー応答かどうかを判定します。
func noData(env *dto.Envelope) bool {
	if env.Code == http.StatusNotFound {
		return true
	}
	msg := strings.ToLower(env.Message)
	return strings.Contains(msg, "no data") || strings.Contains(msg, "not found")
}
