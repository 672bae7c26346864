package entity

import "time"

// Overview holds the fundamentals of a company.
// CompanyName may legitimately be empty.
type Overview struct {
	Symbol               string    `json:"symbol" validate:"required"`
	CompanyName          string    `json:"company_name"`
	Sector               string    `json:"sector"`
	Industry             string    `json:"industry"`
	MarketCap            int64     `json:"market_cap"`
	EnterpriseValue      int64     `json:"enterprise_value"`
	PERatio              float64   `json:"pe_ratio"`
	ForwardPE            float64   `json:"forward_pe"`
	PEGRatio             float64   `json:"peg_ratio"`
	PriceToBook          float64   `json:"price_to_book"`
	PriceToSales         float64   `json:"price_to_sales"`
	DividendYield        float64   `json:"dividend_yield"`
	PayoutRatio          float64   `json:"payout_ratio"`
	Beta                 float64   `json:"beta"`
	FiftyTwoWeekHigh     float64   `json:"fifty_two_week_high"`
	FiftyTwoWeekLow      float64   `json:"fifty_two_week_low"`
	FiftyDayAverage      float64   `json:"fifty_day_average"`
	TwoHundredDayAverage float64   `json:"two_hundred_day_average"`
	Volume               int64     `json:"volume"`
	AvgVolume            int64     `json:"avg_volume"`
	SharesOutstanding    int64     `json:"shares_outstanding"`
	FloatShares          int64     `json:"float_shares"`
	ReturnOnEquity       float64   `json:"return_on_equity"`
	ReturnOnAssets       float64   `json:"return_on_assets"`
	ProfitMargins        float64   `json:"profit_margins"`
	OperatingMargins     float64   `json:"operating_margins"`
	Revenue              int64     `json:"revenue"`
	GrossProfits         int64     `json:"gross_profits"`
	EBITDA               int64     `json:"ebitda"`
	NetIncome            int64     `json:"net_income"`
	TotalCash            int64     `json:"total_cash"`
	TotalDebt            int64     `json:"total_debt"`
	DebtToEquity         float64   `json:"debt_to_equity"`
	CurrentRatio         float64   `json:"current_ratio"`
	BookValue            float64   `json:"book_value"`
	CashFlow             int64     `json:"cash_flow"`
	FreeCashFlow         int64     `json:"free_cash_flow"`
	Timestamp            time.Time `json:"timestamp"`
	Error                string    `json:"error,omitempty" validate:"isdefault"`
}

// WithDefaults fills sector and industry when the provider omitted them.
func (o Overview) WithDefaults() Overview {
	if o.Sector == "" {
		o.Sector = UnknownValue
	}
	if o.Industry == "" {
		o.Industry = UnknownValue
	}
	return o
}
