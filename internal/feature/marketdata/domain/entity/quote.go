// Package entity defines the domain models for the marketdata feature.
package entity

import "time"

// Placeholder values used when a provider leaves a descriptive field empty.
const (
	UnknownValue    = "Unknown"
	DefaultCurrency = "USD"
)

// Quote is a point-in-time price snapshot for a single symbol.
// A non-empty Error marks the record as failed regardless of the other fields.
type Quote struct {
	Symbol           string    `json:"symbol" validate:"required"`
	Price            float64   `json:"price" validate:"gt=0"`
	Change           float64   `json:"change"`
	ChangePercent    float64   `json:"change_percent"`
	Volume           int64     `json:"volume"`
	MarketCap        int64     `json:"market_cap"`
	PERatio          float64   `json:"pe_ratio"`
	EPS              float64   `json:"eps"`
	DividendYield    float64   `json:"dividend_yield"`
	FiftyTwoWeekHigh float64   `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64   `json:"fifty_two_week_low"`
	Sector           string    `json:"sector"`
	Industry         string    `json:"industry"`
	CompanyName      string    `json:"company_name"`
	Currency         string    `json:"currency"`
	Exchange         string    `json:"exchange"`
	Source           string    `json:"source,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	Error            string    `json:"error,omitempty" validate:"isdefault"`
}

// WithDefaults returns a copy with every empty descriptive field filled in.
func (q Quote) WithDefaults() Quote {
	if q.Sector == "" {
		q.Sector = UnknownValue
	}
	if q.Industry == "" {
		q.Industry = UnknownValue
	}
	if q.CompanyName == "" {
		q.CompanyName = q.Symbol
	}
	if q.Currency == "" {
		q.Currency = DefaultCurrency
	}
	if q.Exchange == "" {
		q.Exchange = UnknownValue
	}
	return q
}

// FailedQuote is the record returned when every quote source has failed.
func FailedQuote(symbol string, now time.Time) Quote {
	return Quote{
		Symbol:    symbol,
		Timestamp: now,
		Error:     ScrapingFailedMessage,
	}.WithDefaults()
}
