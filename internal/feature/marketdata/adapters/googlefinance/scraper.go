// Package googlefinance はGoogle Financeの銘柄ページから株価を取得するフォールバック用スクレイパーです。
package googlefinance

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"stock_fetcher/internal/feature/marketdata/domain/entity"
	"stock_fetcher/internal/feature/marketdata/usecase"
)

// Name はレコードのsourceに記録される取得元名です。
const Name = "Google Finance"

const (
	// DefaultBaseURL は銘柄ページのベースURLです。
	DefaultBaseURL = "https://www.google.com/finance"
	// DefaultTimeout はページ取得1回あたりのタイムアウトです。
	DefaultTimeout = 10 * time.Second
	// UserAgent はブラウザと同じUser-Agentです。HTTPクライアント側で付与します。
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Scraper はQuoteScraperの実装です。
type Scraper struct {
	baseURL string
	client  *http.Client
}

var _ usecase.QuoteScraper = (*Scraper)(nil)

// NewScraper はScraperを生成します。baseURLが空の場合はDefaultBaseURLを使います。
// clientにはUserAgentを付与するよう設定したものを渡します。
func NewScraper(baseURL string, client *http.Client) *Scraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Scraper{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Name は取得元名を返します。
func (s *Scraper) Name() string { return Name }

// Quote は銘柄ページのdata-last-price属性とdata-change属性から株価を読み取ります。
// 要素が見つからない項目は0とし、妥当性は呼び出し側で検証します。
func (s *Scraper) Quote(ctx context.Context, symbol string) (entity.Quote, error) {
	u := fmt.Sprintf("%s/quote/%s", s.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.Quote{}, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	res, err := s.client.Do(req)
	if err != nil {
		return entity.Quote{}, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return entity.Quote{}, fmt.Errorf("googlefinance http %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("googlefinance: parse html: %w", err)
	}

	price, err := attrDecimal(doc, "data-last-price")
	if err != nil {
		return entity.Quote{}, err
	}
	change, err := attrDecimal(doc, "data-change")
	if err != nil {
		return entity.Quote{}, err
	}

	pct := decimal.Zero
	if price.IsPositive() {
		pct = change.Div(price).Mul(decimal.NewFromInt(100))
	}

	return entity.Quote{
		Symbol:        symbol,
		Price:         price.InexactFloat64(),
		Change:        change.InexactFloat64(),
		ChangePercent: pct.InexactFloat64(),
		Source:        Name,
	}, nil
}

// attrDecimal は属性attrを持つ最初のdivから数値を読み取ります。要素がなければ0です。
func attrDecimal(doc *goquery.Document, attr string) (decimal.Decimal, error) {
	v, ok := doc.Find(fmt.Sprintf("div[%s]", attr)).First().Attr(attr)
	if !ok {
		return decimal.Zero, nil
	}
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("googlefinance: parse %s %q: %w", attr, v, err)
	}
	return d, nil
}
