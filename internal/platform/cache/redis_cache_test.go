package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

// TestNewRedisCache_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewRedisCache_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"default values when zero/empty", 0, "", 5 * time.Minute, "marketdata"},
		{"negative ttl uses default", -1 * time.Minute, "", 5 * time.Minute, "marketdata"},
		{"custom values preserved", 10 * time.Minute, "custom", 10 * time.Minute, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewRedisCache(nil, tt.ttl, tt.namespace)
			assert.Equal(t, tt.expectedTTL, c.ttl)
			assert.Equal(t, tt.expectedNamespace, c.namespace)
		})
	}
}

// TestRedisCache_NilClient はRedisがnilの場合に常にミスとなり、Putが何もしないことを検証します。
func TestRedisCache_NilClient(t *testing.T) {
	t.Parallel()

	c := NewRedisCache(nil, time.Minute, "")
	c.Put(context.Background(), "quote:AAPL", []byte("{}"))

	_, ok := c.Get(context.Background(), "quote:AAPL")
	assert.False(t, ok)
}

// TestRedisCache_Hit はキャッシュヒット時にRedisの値を返すことを検証します。
func TestRedisCache_Hit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("marketdata:quote:AAPL").SetVal(`{"symbol":"AAPL","price":150}`)

	c := NewRedisCache(rdb, 5*time.Minute, "marketdata")
	got, ok := c.Get(context.Background(), "quote:AAPL")

	assert.True(t, ok)
	assert.JSONEq(t, `{"symbol":"AAPL","price":150}`, string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRedisCache_Miss はキーが存在しない場合にミスとなることを検証します。
func TestRedisCache_Miss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("marketdata:quote:AAPL").RedisNil()

	c := NewRedisCache(rdb, 5*time.Minute, "marketdata")
	_, ok := c.Get(context.Background(), "quote:AAPL")

	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRedisCache_GetError はRedisエラーがミスとして扱われることを検証します。
func TestRedisCache_GetError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("marketdata:sectors").SetErr(errors.New("connection refused"))

	c := NewRedisCache(rdb, 5*time.Minute, "marketdata")
	_, ok := c.Get(context.Background(), "sectors")

	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRedisCache_Put はTTL付きでSETされることを検証します。
func TestRedisCache_Put(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	payload := []byte(`{"query":"apple inc","results":[],"count":0}`)
	mock.ExpectSet("marketdata:search:apple_inc", payload, 5*time.Minute).SetVal("OK")

	c := NewRedisCache(rdb, 5*time.Minute, "marketdata")
	c.Put(context.Background(), "search:apple inc", payload)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRedisCache_PutError はSET失敗時にパニックせず処理を続けることを検証します。
func TestRedisCache_PutError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	payload := []byte(`{}`)
	mock.ExpectSet("marketdata:quote:AAPL", payload, time.Minute).SetErr(errors.New("oom"))

	c := NewRedisCache(rdb, time.Minute, "")
	assert.NotPanics(t, func() { c.Put(context.Background(), "quote:AAPL", payload) })
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSafe はsafe関数がRedisキーで問題となる空白を置換し、区切りのコロンを保持することを検証します。
func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"BRK A", "BRK_A"},
		{"quote:AAPL", "quote:AAPL"},
		{"", ""},
		{"  ", "__"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, safe(tt.input))
		})
	}
}
