package entity

import (
	"fmt"
	"time"
)

// Interval is an intraday bar width accepted from callers.
type Interval string

const (
	Interval1Min  Interval = "1min"
	Interval5Min  Interval = "5min"
	Interval15Min Interval = "15min"
	Interval30Min Interval = "30min"
	Interval60Min Interval = "60min"
)

// DefaultInterval is used when the caller asks for an unsupported interval.
const DefaultInterval = Interval5Min

// DefaultDays is the daily series length when none is requested.
const DefaultDays = 30

// ParseInterval returns the matching Interval, falling back to DefaultInterval.
func ParseInterval(s string) Interval {
	switch iv := Interval(s); iv {
	case Interval1Min, Interval5Min, Interval15Min, Interval30Min, Interval60Min:
		return iv
	default:
		return DefaultInterval
	}
}

// Bar is one OHLCV row. Time is filled by providers; Timestamp or Date is the
// rendered form that callers see.
type Bar struct {
	Time      time.Time `json:"-"`
	Timestamp string    `json:"timestamp,omitempty"`
	Date      string    `json:"date,omitempty"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	AdjClose  float64   `json:"adj_close,omitempty"`
}

// Series is an intraday or daily time series for one symbol.
type Series struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval,omitempty"`
	Period   string `json:"period,omitempty"`
	Data     []Bar  `json:"data"`
	Count    int    `json:"count"`
	Error    string `json:"error,omitempty"`
}

// PeriodLabel renders a daily series length, e.g. "30 days".
func PeriodLabel(days int) string {
	return fmt.Sprintf("%d days", days)
}
