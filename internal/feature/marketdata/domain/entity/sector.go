package entity

import "time"

// SectorSymbols are the sector ETFs sampled by a sector snapshot.
var SectorSymbols = []string{
	"XLK",  // Technology
	"XLF",  // Financials
	"XLE",  // Energy
	"XLV",  // Health Care
	"XLI",  // Industrials
	"XLP",  // Consumer Staples
	"XLY",  // Consumer Discretionary
	"XLU",  // Utilities
	"XLB",  // Materials
	"XLRE", // Real Estate
}

// Sector is the performance of one sector ETF.
type Sector struct {
	Sector        string  `json:"sector"`
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	MarketCap     int64   `json:"market_cap"`
}

// SectorSnapshot is the performance of all sectors at one point in time.
type SectorSnapshot struct {
	Sectors   []Sector  `json:"sectors"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// BatchResult aggregates per-symbol quotes. Failed symbols carry their own
// error-flagged Quote; the batch itself never fails.
type BatchResult struct {
	Symbols   []string  `json:"symbols"`
	Results   []Quote   `json:"results"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// ErrorResult is a caller-facing failure document.
type ErrorResult struct {
	Error string `json:"error"`
}
