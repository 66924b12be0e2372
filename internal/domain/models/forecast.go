package models

// ForecastPoint is one projected trading day with its confidence bounds.
type ForecastPoint struct {
	PredictedClose float64 `json:"predicted_close"`
	LowerBound     float64 `json:"lower_bound"`
	UpperBound     float64 `json:"upper_bound"`
}

// ForecastPath is the multi-day projection produced by one forecast call.
type ForecastPath struct {
	Points        []ForecastPoint `json:"points"`
	Trend         string          `json:"trend"` // "upward" or "downward"
	ChangePercent float64         `json:"change_percent"`
	LastPrice     float64         `json:"last_price"`
}

// Empty reports whether the forecast produced no points (degenerate input).
func (f *ForecastPath) Empty() bool { return f == nil || len(f.Points) == 0 }

// BacktestMetrics describes held-out accuracy of the last trained ensemble.
type BacktestMetrics struct {
	MAPE      float64 `json:"mape"`
	R2        float64 `json:"r2"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
}

// Empty reports whether training was skipped (matrix too small to split).
func (m *BacktestMetrics) Empty() bool {
	return m == nil || (m.TrainSize == 0 && m.TestSize == 0)
}
