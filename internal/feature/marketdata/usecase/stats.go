package usecase

import (
	"log/slog"
	"sync"
	"time"
)

// statsEvery 回ごとに集計値をログ出力します。
const statsEvery = 10

// Summary は実行中の統計値です。
type Summary struct {
	Requests          int
	Successes         int
	Errors            int
	SuccessRate       float64 // パーセント
	RequestsPerMinute float64
	Uptime            time.Duration
}

// Stats はオーケストレータ単位の実行統計です。リセット操作はありません。
type Stats struct {
	mu        sync.Mutex
	requests  int
	successes int
	errors    int
	start     time.Time
	now       func() time.Time
	observer  Observer
}

// NewStats は新しいStatsを生成します。observerはnilでも構いません。
func NewStats(now func() time.Time, observer Observer) *Stats {
	if now == nil {
		now = time.Now
	}
	return &Stats{start: now(), now: now, observer: observer}
}

// Record は1操作の結果を記録し、statsEvery回ごとに集計値を出力します。
func (s *Stats) Record(op, subject string, d time.Duration, ok bool) {
	s.mu.Lock()
	s.requests++
	if ok {
		s.successes++
	} else {
		s.errors++
	}
	n := s.requests
	sum := s.summaryLocked()
	s.mu.Unlock()

	slog.Info("operation completed", "op", op, "subject", subject, "duration", d.Round(time.Millisecond).String(), "success", ok)
	if n%statsEvery == 0 {
		slog.Info("stats",
			"requests", sum.Requests,
			"success_rate", round1(sum.SuccessRate),
			"requests_per_minute", round1(sum.RequestsPerMinute),
		)
	}
	if s.observer != nil {
		s.observer.Observe(op, d, ok)
	}
}

// Summary は現在の統計値を返します。
func (s *Stats) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Stats) summaryLocked() Summary {
	sum := Summary{
		Requests:  s.requests,
		Successes: s.successes,
		Errors:    s.errors,
		Uptime:    s.now().Sub(s.start),
	}
	if s.requests > 0 {
		sum.SuccessRate = float64(s.successes) / float64(s.requests) * 100
	}
	if sum.Uptime > 0 {
		sum.RequestsPerMinute = float64(s.requests) / sum.Uptime.Minutes()
	}
	return sum
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
