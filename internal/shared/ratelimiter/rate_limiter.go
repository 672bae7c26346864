// Package ratelimiter は外部プロバイダへの呼び出し頻度を適応的に制御します。
package ratelimiter

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// throttleRatio を超えるとベース遅延の2倍だけ待機します。
	throttleRatio = 0.8
	// escalateAfter 回を超える連続エラーで遅延を引き上げます。
	escalateAfter = 3
	escalateRate  = 1.5
)

// Config はGovernorの設定値です。
type Config struct {
	MaxRequestsPerMinute int           // 1分あたりの上限
	BaseDelay            time.Duration // 初期ベース遅延
	MaxDelay             time.Duration // ベース遅延の上限
	Window               time.Duration // 呼び出し履歴とエラー判定の窓
	MaxJitter            time.Duration // ジッターの上限（この値は含まない）
}

// DefaultConfig はデフォルト設定を返します。
func DefaultConfig() Config {
	return Config{
		MaxRequestsPerMinute: 50,
		BaseDelay:            100 * time.Millisecond,
		MaxDelay:             time.Second,
		Window:               time.Minute,
		MaxJitter:            100 * time.Millisecond,
	}
}

// State はGovernorの内部状態のスナップショットです。
type State struct {
	TrackedCalls      int
	ConsecutiveErrors int
	BaseDelay         time.Duration
	LastError         time.Time
}

// Option はGovernorの生成オプションです。
type Option func(*Governor)

// WithClock は現在時刻の取得関数を差し替えます（テスト用）。
func WithClock(now func() time.Time) Option {
	return func(g *Governor) { g.now = now }
}

// WithSleeper は待機関数を差し替えます（テスト用）。
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Governor) { g.sleep = sleep }
}

// WithJitter はジッターの生成関数を差し替えます（テスト用）。
func WithJitter(jitter func(max time.Duration) time.Duration) Option {
	return func(g *Governor) { g.jitter = jitter }
}

// Governor は直近の呼び出し時刻を追跡し、上限に近づくと待機を挟むレートリミッタです。
// 連続したエラーが短時間に集中するとベース遅延を引き上げます。
// 待機中はロックを保持しないため、複数のgoroutineから安全に利用できます。
type Governor struct {
	mu                sync.Mutex
	cfg               Config
	calls             []time.Time
	consecutiveErrors int
	lastError         time.Time
	baseDelay         time.Duration

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(max time.Duration) time.Duration
}

// NewGovernor は新しいGovernorのインスタンスを生成します。
// ゼロ値の設定項目にはデフォルト値を使用します。
func NewGovernor(cfg Config, opts ...Option) *Governor {
	def := DefaultConfig()
	if cfg.MaxRequestsPerMinute <= 0 {
		cfg.MaxRequestsPerMinute = def.MaxRequestsPerMinute
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.MaxJitter < 0 {
		cfg.MaxJitter = 0
	}

	g := &Governor{
		cfg:       cfg,
		baseDelay: cfg.BaseDelay,
		now:       time.Now,
		sleep:     sleepContext,
		jitter:    randomJitter,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WaitIfNeeded は必要に応じて待機し、呼び出しを記録します。
// ctxがキャンセルされた場合は呼び出しを記録せずにctx.Err()を返します。
func (g *Governor) WaitIfNeeded(ctx context.Context) error {
	g.mu.Lock()
	now := g.now()
	g.prune(now)

	var wait time.Duration
	if float64(len(g.calls)) >= throttleRatio*float64(g.cfg.MaxRequestsPerMinute) {
		wait = 2 * g.baseDelay
		slog.Debug("rate limit: approaching ceiling", "calls", len(g.calls), "limit", g.cfg.MaxRequestsPerMinute, "sleep", wait)
	}
	wait += g.jitter(g.cfg.MaxJitter)
	g.mu.Unlock()

	if err := g.sleep(ctx, wait); err != nil {
		return err
	}

	g.mu.Lock()
	now = g.now()
	g.prune(now)
	g.calls = append(g.calls, now)
	g.mu.Unlock()
	return nil
}

// HandleError は連続エラー数を加算し、窓内でのエラー集中時にベース遅延を引き上げます。
func (g *Governor) HandleError() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.consecutiveErrors++
	if !g.lastError.IsZero() && now.Sub(g.lastError) < g.cfg.Window && g.consecutiveErrors > escalateAfter {
		next := time.Duration(float64(g.baseDelay) * escalateRate)
		if next > g.cfg.MaxDelay {
			next = g.cfg.MaxDelay
		}
		if next != g.baseDelay {
			slog.Warn("rate limit: increasing base delay", "errors", g.consecutiveErrors, "from", g.baseDelay, "to", next)
		}
		g.baseDelay = next
	}
	g.lastError = now
}

// ResetErrorCount は連続エラー数をリセットします。ベース遅延は維持されます。
func (g *Governor) ResetErrorCount() {
	g.mu.Lock()
	g.consecutiveErrors = 0
	g.mu.Unlock()
}

// Snapshot は現在の状態を返します。
func (g *Governor) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return State{
		TrackedCalls:      len(g.calls),
		ConsecutiveErrors: g.consecutiveErrors,
		BaseDelay:         g.baseDelay,
		LastError:         g.lastError,
	}
}

// prune は窓より古い呼び出し時刻を削除します。呼び出し側でロックを保持すること。
func (g *Governor) prune(now time.Time) {
	cutoff := now.Add(-g.cfg.Window)
	i := 0
	for i < len(g.calls) && !g.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		g.calls = append(g.calls[:0], g.calls[i:]...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(max)))
}
