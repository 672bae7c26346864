package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStats_Summary(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStats(func() time.Time { return now }, nil)

	assert.Equal(t, Summary{}, s.Summary())

	for i := 0; i < 10; i++ {
		s.Record("quote", "AAPL", time.Millisecond, i%4 != 0)
	}
	now = now.Add(2 * time.Minute)

	sum := s.Summary()
	assert.Equal(t, 10, sum.Requests)
	assert.Equal(t, 7, sum.Successes)
	assert.Equal(t, 3, sum.Errors)
	assert.InDelta(t, 70.0, sum.SuccessRate, 0.001)
	assert.InDelta(t, 5.0, sum.RequestsPerMinute, 0.001)
	assert.Equal(t, 2*time.Minute, sum.Uptime)
}

func TestStats_NilClock(t *testing.T) {
	t.Parallel()

	s := NewStats(nil, nil)
	s.Record("search", "apple", 0, true)
	assert.Equal(t, 1, s.Summary().Requests)
}

func TestRound1(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 66.7, round1(66.666))
	assert.Equal(t, 50.0, round1(50))
	assert.Equal(t, 0.1, round1(0.05))
}
