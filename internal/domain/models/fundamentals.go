package models

// Fundamentals is the per-symbol fundamental snapshot served alongside the
// technical analysis. Fields default to zero when the provider omits them.
type Fundamentals struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Sector         string  `json:"sector"`
	Industry       string  `json:"industry"`
	CMP            float64 `json:"cmp"`
	PreviousClose  float64 `json:"previous_close"`
	Open           float64 `json:"open"`
	DayHigh        float64 `json:"day_high"`
	DayLow         float64 `json:"day_low"`
	Volume         int64   `json:"volume"`
	MarketCap      float64 `json:"market_cap"`
	PERatio        float64 `json:"pe_ratio"`
	PriceToBook    float64 `json:"price_to_book"`
	DividendYield  float64 `json:"dividend_yield"`
	EPS            float64 `json:"eps"`
	Beta           float64 `json:"beta"`
	Week52High     float64 `json:"52_week_high"`
	Week52Low      float64 `json:"52_week_low"`
	RevenueGrowth  float64 `json:"revenue_growth"`
	ProfitMargin   float64 `json:"profit_margin"`
	ROE            float64 `json:"roe"`
	DebtToEquity   float64 `json:"debt_to_equity"`
	Recommendation string  `json:"recommendation"`
	TargetPrice    float64 `json:"target_price"`
	Change         float64 `json:"change"`
	ChangePercent  float64 `json:"change_percent"`
}

// SymbolInfo identifies one listed instrument in the registry.
type SymbolInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
}
