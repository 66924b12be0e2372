package forecast

import (
	"math"

	"StockCast/internal/domain/models"
)

// BuildPrediction flattens a forecast path and its backtest metrics into the
// response record. Non-finite floats are zeroed here as a last defensive pass
// before JSON serialization.
func BuildPrediction(path *models.ForecastPath, metrics models.BacktestMetrics) *models.Prediction {
	pred := &models.Prediction{
		Predictions:     make([]float64, 0, len(path.Points)),
		ConfidenceLower: make([]float64, 0, len(path.Points)),
		ConfidenceUpper: make([]float64, 0, len(path.Points)),
		Trend:           path.Trend,
		ChangePercent:   finite(path.ChangePercent),
		LastPrice:       finite(path.LastPrice),
		BacktestMetrics: models.BacktestMetrics{
			MAPE:      finite(metrics.MAPE),
			R2:        finite(metrics.R2),
			TrainSize: metrics.TrainSize,
			TestSize:  metrics.TestSize,
		},
	}
	for _, p := range path.Points {
		pred.Predictions = append(pred.Predictions, finite(p.PredictedClose))
		pred.ConfidenceLower = append(pred.ConfidenceLower, finite(p.LowerBound))
		pred.ConfidenceUpper = append(pred.ConfidenceUpper, finite(p.UpperBound))
	}
	return pred
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
