package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_fetcher/internal/feature/marketdata/domain/entity"
)

func TestRenderTable(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{
			name: "batch",
			in: entity.BatchResult{Count: 2, Results: []entity.Quote{
				{Symbol: "AAPL", Price: 189.5},
				{Symbol: "BADSYM", Error: "Scraping failed"},
			}},
			want: []string{"AAPL", "189.50", "BADSYM", "Scraping failed", "2 symbols"},
		},
		{
			name: "daily series",
			in: entity.Series{Symbol: "MSFT", Period: "30 days", Count: 1, Data: []entity.Bar{
				{Date: "2025-01-15", Open: 420, High: 425.5, Low: 419, Close: 424, Volume: 100},
			}},
			want: []string{"MSFT 30 days", "2025-01-15", "425.50", "1 rows"},
		},
		{
			name: "failed series",
			in:   entity.Series{Symbol: "BADSYM", Interval: "5min", Error: "No data available"},
			want: []string{"error: No data available"},
		},
		{
			name: "search",
			in: entity.SearchResult{Query: "apple", Count: 1, Results: []entity.SearchMatch{
				{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ", Type: "EQUITY"},
			}},
			want: []string{"Apple Inc.", "NASDAQ"},
		},
		{
			name: "sectors",
			in: entity.SectorSnapshot{Count: 1, Sectors: []entity.Sector{
				{Symbol: "XLK", Sector: "Technology Select Sector SPDR", Price: 210, ChangePercent: -0.5},
			}},
			want: []string{"XLK", "-0.50%"},
		},
		{
			name: "overview",
			in:   entity.Overview{Symbol: "AAPL", CompanyName: "Apple Inc.", Sector: "Technology", Timestamp: ts},
			want: []string{"AAPL Apple Inc.", "Technology", "2025-01-15T00:00:00Z"},
		},
		{
			name: "fallback to json",
			in:   entity.ErrorResult{Error: "Unknown endpoint: x"},
			want: []string{`"error": "Unknown endpoint: x"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, RenderTable(&buf, tt.in))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}
