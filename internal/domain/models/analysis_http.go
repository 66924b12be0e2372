package models

// Requests for analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalysisRequest struct {
	Symbol   string `param:"symbol" json:"symbol" validate:"required"`
	Days     int    `query:"days" json:"days" default:"7" validate:"gte=1,lte=30"`
	Lookback int    `query:"lookback" json:"lookback" default:"252" validate:"gte=30,lte=2520"`
}

type SearchRequest struct {
	Query string `query:"q" json:"q"`
	Limit int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=50"`
}
