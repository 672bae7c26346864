package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"stock_fetcher/internal/feature/marketdata/domain/entity"
)

// RenderTable renders an operation result as a rounded ASCII table.
// Types without a table layout fall back to indented JSON.
func RenderTable(w io.Writer, v any) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	switch r := v.(type) {
	case entity.Quote:
		quoteTable(t, []entity.Quote{r})
	case entity.BatchResult:
		quoteTable(t, r.Results)
		t.AppendFooter(table.Row{"", "", "", "", "", "", fmt.Sprintf("%d symbols", r.Count)})
	case entity.Series:
		seriesTable(t, r)
	case entity.SearchResult:
		t.AppendHeader(table.Row{"Symbol", "Name", "Exchange", "Type"})
		for _, m := range r.Results {
			t.AppendRow(table.Row{m.Symbol, m.Name, m.Exchange, m.Type})
		}
		t.AppendFooter(table.Row{"", "", "", footer(r.Count, r.Error)})
	case entity.SectorSnapshot:
		t.AppendHeader(table.Row{"Symbol", "Sector", "Price", "Change", "Change %"})
		for _, s := range r.Sectors {
			t.AppendRow(table.Row{s.Symbol, s.Sector, price(s.Price), signed(s.Change), pct(s.ChangePercent)})
		}
		t.AppendFooter(table.Row{"", "", "", "", footer(r.Count, r.Error)})
	case entity.Overview:
		overviewTable(t, r)
	default:
		return writeJSON(w, v)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func quoteTable(t table.Writer, quotes []entity.Quote) {
	t.AppendHeader(table.Row{"Symbol", "Price", "Change", "Change %", "Volume", "Source", "Error"})
	for _, q := range quotes {
		t.AppendRow(table.Row{q.Symbol, price(q.Price), signed(q.Change), pct(q.ChangePercent), q.Volume, q.Source, q.Error})
	}
}

func seriesTable(t table.Writer, s entity.Series) {
	t.SetTitle(fmt.Sprintf("%s %s%s", s.Symbol, s.Interval, s.Period))
	t.AppendHeader(table.Row{"Time", "Open", "High", "Low", "Close", "Volume"})
	for _, b := range s.Data {
		ts := b.Timestamp
		if ts == "" {
			ts = b.Date
		}
		t.AppendRow(table.Row{ts, price(b.Open), price(b.High), price(b.Low), price(b.Close), b.Volume})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", footer(s.Count, s.Error)})
}

func overviewTable(t table.Writer, o entity.Overview) {
	t.SetTitle(fmt.Sprintf("%s %s", o.Symbol, o.CompanyName))
	t.AppendHeader(table.Row{"Field", "Value"})
	rows := []table.Row{
		{"Sector", o.Sector},
		{"Industry", o.Industry},
		{"Market cap", o.MarketCap},
		{"P/E", price(o.PERatio)},
		{"Forward P/E", price(o.ForwardPE)},
		{"Price/Book", price(o.PriceToBook)},
		{"Dividend yield", pct(o.DividendYield * 100)},
		{"Beta", price(o.Beta)},
		{"52w high", price(o.FiftyTwoWeekHigh)},
		{"52w low", price(o.FiftyTwoWeekLow)},
		{"Revenue", o.Revenue},
		{"Timestamp", o.Timestamp.Format(time.RFC3339)},
	}
	if o.Error != "" {
		rows = append(rows, table.Row{"Error", o.Error})
	}
	t.AppendRows(rows)
}

func footer(count int, errMsg string) string {
	if errMsg != "" {
		return "error: " + errMsg
	}
	return fmt.Sprintf("%d rows", count)
}

func price(v float64) string  { return fmt.Sprintf("%.2f", v) }
func signed(v float64) string { return fmt.Sprintf("%+.2f", v) }
func pct(v float64) string    { return fmt.Sprintf("%+.2f%%", v) }
