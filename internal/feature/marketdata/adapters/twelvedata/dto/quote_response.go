package dto

// QuoteResponse represents the JSON response from the Twelve Data quote endpoint.
type QuoteResponse struct {
	Envelope
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Exchange      string `json:"exchange"`
	Currency      string `json:"currency"`
	Close         Number `json:"close"`
	Change        Number `json:"change"`
	PercentChange Number `json:"percent_change"`
	Volume        Number `json:"volume"`
	AverageVolume Number `json:"average_volume"`
	FiftyTwoWeek  struct {
		Low  Number `json:"low"`
		High Number `json:"high"`
	} `json:"fifty_two_week"`
}

// SymbolSearchResponse represents the JSON response from the symbol_search endpoint.
type SymbolSearchResponse struct {
	Envelope
	Data []struct {
		Symbol         string `json:"symbol"`
		InstrumentName string `json:"instrument_name"`
		Exchange       string `json:"exchange"`
		InstrumentType string `json:"instrument_type"`
		Country        string `json:"country"`
		Currency       string `json:"currency"`
	} `json:"data"`
}

// ProfileResponse represents the JSON response from the profile endpoint.
type ProfileResponse struct {
	Envelope
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
	Type     string `json:"type"`
}

// StatisticsResponse represents the JSON response from the statistics endpoint.
type StatisticsResponse struct {
	Envelope
	Statistics struct {
		ValuationsMetrics struct {
			MarketCapitalization Number `json:"market_capitalization"`
			EnterpriseValue      Number `json:"enterprise_value"`
			TrailingPE           Number `json:"trailing_pe"`
			ForwardPE            Number `json:"forward_pe"`
			PEGRatio             Number `json:"peg_ratio"`
			PriceToSalesTTM      Number `json:"price_to_sales_ttm"`
			PriceToBookMRQ       Number `json:"price_to_book_mrq"`
		} `json:"valuations_metrics"`
		Financials struct {
			ProfitMargin      Number `json:"profit_margin"`
			OperatingMargin   Number `json:"operating_margin"`
			ReturnOnAssetsTTM Number `json:"return_on_assets_ttm"`
			ReturnOnEquityTTM Number `json:"return_on_equity_ttm"`
			IncomeStatement   struct {
				RevenueTTM           Number `json:"revenue_ttm"`
				GrossProfitTTM       Number `json:"gross_profit_ttm"`
				EBITDA               Number `json:"ebitda"`
				NetIncomeToCommonTTM Number `json:"net_income_to_common_ttm"`
			} `json:"income_statement"`
			BalanceSheet struct {
				TotalCashMRQ         Number `json:"total_cash_mrq"`
				TotalDebtMRQ         Number `json:"total_debt_mrq"`
				TotalDebtToEquityMRQ Number `json:"total_debt_to_equity_mrq"`
				CurrentRatioMRQ      Number `json:"current_ratio_mrq"`
				BookValuePerShareMRQ Number `json:"book_value_per_share_mrq"`
			} `json:"balance_sheet"`
			CashFlow struct {
				OperatingCashFlowTTM   Number `json:"operating_cash_flow_ttm"`
				LeveredFreeCashFlowTTM Number `json:"levered_free_cash_flow_ttm"`
			} `json:"cash_flow"`
		} `json:"financials"`
		StockStatistics struct {
			SharesOutstanding Number `json:"shares_outstanding"`
			FloatShares       Number `json:"float_shares"`
			AvgVolume90Day    Number `json:"avg_90_day_volume"`
		} `json:"stock_statistics"`
		StockPriceSummary struct {
			FiftyTwoWeekLow  Number `json:"fifty_two_week_low"`
			FiftyTwoWeekHigh Number `json:"fifty_two_week_high"`
			Beta             Number `json:"beta"`
			Day50MA          Number `json:"day_50_ma"`
			Day200MA         Number `json:"day_200_ma"`
		} `json:"stock_price_summary"`
		DividendsAndSplits struct {
			ForwardAnnualDividendYield Number `json:"forward_annual_dividend_yield"`
			PayoutRatio                Number `json:"payout_ratio"`
		} `json:"dividends_and_splits"`
	} `json:"statistics"`
}
