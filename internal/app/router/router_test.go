package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_fetcher/internal/feature/marketdata/domain/entity"
	"stock_fetcher/internal/feature/marketdata/transport/handler"
	"stock_fetcher/internal/feature/marketdata/usecase"
	jwtmw "stock_fetcher/internal/platform/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// sectorsOnly はsectors以外の呼び出しでパニックするMarketDataUsecaseです。
type sectorsOnly struct{ handler.MarketDataUsecase }

func (sectorsOnly) Sectors(context.Context) entity.SectorSnapshot {
	return entity.SectorSnapshot{Sectors: []entity.Sector{}}
}

func (sectorsOnly) Dispatch(_ context.Context, kind string, _ []string, _ usecase.Params) (any, error) {
	return entity.ErrorResult{Error: "Unknown endpoint: " + kind},
		&entity.FetchError{Kind: entity.KindUnknownOperation, Op: kind, Err: entity.ErrUnknownOperation}
}

func newTestRouter(auth bool) *gin.Engine {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "router_test_total", Help: "test"}))
	return NewRouter(Deps{
		MarketData:   handler.NewMarketDataHandler(sectorsOnly{}),
		Gatherer:     reg,
		AuthRequired: auth,
	})
}

func TestRouter_Healthz(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "router_test_total")
}

func TestRouter_RequestID(t *testing.T) {
	r := newTestRouter(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	_, err := uuid.Parse(w.Header().Get(HeaderRequestID))
	assert.NoError(t, err, "expected a generated uuid")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestRouter_APIWithoutAuth(t *testing.T) {
	r := newTestRouter(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sectors", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dispatch/bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Unknown endpoint: bogus"}`, w.Body.String())
}

func TestRouter_APIWithAuth(t *testing.T) {
	t.Setenv(jwtmw.EnvKeyJWTSecret, "router-secret")
	r := newTestRouter(true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sectors", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwtmw.NewGenerator("router-secret", jwtmw.DefaultExpiration).GenerateToken("tests")
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sectors", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// healthz は認証不要
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
