// Package handler はmarketdataフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"stock_fetcher/internal/feature/marketdata/domain/entity"
	"stock_fetcher/internal/feature/marketdata/usecase"
)

// MarketDataUsecase は株価データ取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type MarketDataUsecase interface {
	Quote(ctx context.Context, symbol string) entity.Quote
	Intraday(ctx context.Context, symbol, interval string) entity.Series
	Daily(ctx context.Context, symbol string, days int) entity.Series
	Search(ctx context.Context, query string) entity.SearchResult
	Overview(ctx context.Context, symbol string) entity.Overview
	Sectors(ctx context.Context) entity.SectorSnapshot
	BatchQuotes(ctx context.Context, symbols []string) entity.BatchResult
	Dispatch(ctx context.Context, kind string, symbols []string, p usecase.Params) (any, error)
}

// MarketDataHandler は株価データのHTTPリクエストを処理します。
// 取得の失敗はレコードのerror項目で表現されるため、操作結果は常に200で返します。
// 400を返すのは呼び出し元の入力に問題がある場合のみです。
type MarketDataHandler struct {
	uc MarketDataUsecase
}

// NewMarketDataHandler は指定されたusecaseでMarketDataHandlerの新しいインスタンスを生成します。
func NewMarketDataHandler(uc MarketDataUsecase) *MarketDataHandler {
	return &MarketDataHandler{uc: uc}
}

// BatchRequest は POST /api/batch のリクエストボディです。
type BatchRequest struct {
	Symbols []string `json:"symbols" binding:"required,min=1"`
}

// GetQuote は単一銘柄の株価を返します。
//
// エンドポイント例:
// GET /api/quote/AAPL
func (h *MarketDataHandler) GetQuote(c *gin.Context) {
	c.JSON(http.StatusOK, h.uc.Quote(c.Request.Context(), c.Param("symbol")))
}

// GetIntraday は分足データを返します。
//
// エンドポイント例:
// GET /api/intraday/AAPL?interval=15min
func (h *MarketDataHandler) GetIntraday(c *gin.Context) {
	interval := c.DefaultQuery("interval", string(entity.DefaultInterval))
	c.JSON(http.StatusOK, h.uc.Intraday(c.Request.Context(), c.Param("symbol"), interval))
}

// GetDaily は日足データを返します。daysが数値でない場合はusecase側の既定値を使います。
//
// エンドポイント例:
// GET /api/daily/AAPL?days=60
func (h *MarketDataHandler) GetDaily(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(entity.DefaultDays)))
	c.JSON(http.StatusOK, h.uc.Daily(c.Request.Context(), c.Param("symbol"), days))
}

// GetSearch は銘柄検索の結果を返します。
//
// エンドポイント例:
// GET /api/search?q=apple
func (h *MarketDataHandler) GetSearch(c *gin.Context) {
	c.JSON(http.StatusOK, h.uc.Search(c.Request.Context(), c.Query("q")))
}

// GetOverview は企業概要を返します。
func (h *MarketDataHandler) GetOverview(c *gin.Context) {
	c.JSON(http.StatusOK, h.uc.Overview(c.Request.Context(), c.Param("symbol")))
}

// GetSectors はセクターETFのスナップショットを返します。
func (h *MarketDataHandler) GetSectors(c *gin.Context) {
	c.JSON(http.StatusOK, h.uc.Sectors(c.Request.Context()))
}

// GetBatch はクエリ文字列のカンマ区切り銘柄をまとめて取得します。
//
// エンドポイント例:
// GET /api/batch?symbols=AAPL,MSFT
func (h *MarketDataHandler) GetBatch(c *gin.Context) {
	symbols := splitSymbols(c.Query("symbols"))
	if len(symbols) == 0 {
		c.JSON(http.StatusBadRequest, entity.ErrorResult{Error: entity.NoSymbolsMessage})
		return
	}
	c.JSON(http.StatusOK, h.uc.BatchQuotes(c.Request.Context(), symbols))
}

// PostBatch はJSONボディの銘柄リストをまとめて取得します。
func (h *MarketDataHandler) PostBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResult{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.uc.BatchQuotes(c.Request.Context(), req.Symbols))
}

// Dispatch はCLIと同じ操作名での呼び出しを受け付けます。
//
// エンドポイント例:
// GET /api/dispatch/daily?symbols=AAPL&days=10
func (h *MarketDataHandler) Dispatch(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))
	p := usecase.Params{Interval: c.Query("interval"), Days: days}

	res, err := h.uc.Dispatch(c.Request.Context(), c.Param("endpoint"), splitSymbols(c.Query("symbols")), p)
	if err != nil {
		var fe *entity.FetchError
		if errors.As(err, &fe) {
			c.JSON(http.StatusBadRequest, res)
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResult{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func splitSymbols(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
