package router

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stock_fetcher/internal/feature/marketdata/transport/handler"
	platformhandler "stock_fetcher/internal/platform/http/handler"
	jwtmw "stock_fetcher/internal/platform/jwt"
)

// HeaderRequestID はリクエストIDを受け渡すヘッダー名です。
const HeaderRequestID = "X-Request-ID"

// Deps はルータが必要とするハンドラー群です。
type Deps struct {
	MarketData *handler.MarketDataHandler
	Health     gin.HandlerFunc
	// Gatherer は /metrics で公開するレジストリです。nilの場合は公開しません。
	Gatherer prometheus.Gatherer
	// AuthRequired がtrueの場合、/api 配下にJWT認証を適用します。
	AuthRequired bool
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID())

	health := d.Health
	if health == nil {
		health = platformhandler.Health
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// 株価データAPI
	// JWT_SECRET が設定されている場合のみ認証必須
	api := r.Group("/api")
	if d.AuthRequired {
		api.Use(jwtmw.AuthRequired())
	}
	{
		md := d.MarketData
		api.GET("/quote/:symbol", md.GetQuote)
		api.GET("/intraday/:symbol", md.GetIntraday)
		api.GET("/daily/:symbol", md.GetDaily)
		api.GET("/search", md.GetSearch)
		api.GET("/overview/:symbol", md.GetOverview)
		api.GET("/sectors", md.GetSectors)
		api.GET("/batch", md.GetBatch)
		api.POST("/batch", md.PostBatch)
		api.GET("/dispatch/:endpoint", md.Dispatch)
	}

	return r
}

// RequestID はリクエストごとにIDを付与し、レスポンスヘッダーに返します。
// クライアントがIDを送ってきた場合はそれを引き継ぎます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
