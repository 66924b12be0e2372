package models

import "time"

// Prediction bundles the forecast path with its backtest quality metrics.
type Prediction struct {
	Predictions     []float64       `json:"predictions"`
	ConfidenceLower []float64       `json:"confidence_lower"`
	ConfidenceUpper []float64       `json:"confidence_upper"`
	Trend           string          `json:"trend"`
	ChangePercent   float64         `json:"change_percent"`
	LastPrice       float64         `json:"last_price"`
	BacktestMetrics BacktestMetrics `json:"backtest_metrics"`
}

// Summary is the rule-based narrative output for one analysis.
type Summary struct {
	TechnicalSummary   string  `json:"technical_summary"`
	FundamentalSummary string  `json:"fundamental_summary"`
	PredictionSummary  string  `json:"prediction_summary"`
	Verdict            Verdict `json:"verdict"`
}

// Verdict is the scored buy/hold/sell call with its supporting reasons.
type Verdict struct {
	Verdict    string   `json:"verdict"` // BUY, HOLD or SELL
	Confidence float64  `json:"confidence"`
	Score      int      `json:"score"`
	Reasons    []string `json:"reasons"`
	Disclaimer string   `json:"disclaimer"`
}

// StockAnalysis is the complete per-symbol analysis response.
type StockAnalysis struct {
	Symbol              string       `json:"symbol"`
	GeneratedAt         time.Time    `json:"generated_at"`
	Fundamentals        Fundamentals `json:"fundamentals"`
	TechnicalIndicators IndicatorSet `json:"technical_indicators"`
	Prediction          Prediction   `json:"prediction"`
	Summary             Summary      `json:"summary"`
	Cached              bool         `json:"cached"`
}

// AnalysisEvent is the message published when an analysis completes.
type AnalysisEvent struct {
	Symbol        string    `json:"symbol"`
	Trend         string    `json:"trend"`
	ChangePercent float64   `json:"change_percent"`
	MAPE          float64   `json:"mape"`
	GeneratedAt   time.Time `json:"generated_at"`
}
