package forecast

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"StockCast/internal/domain/models"
)

// ErrInsufficientData marks inputs too small to train or project on. Callers
// treat it as a benign empty result, never as a failure to surface.
var ErrInsufficientData = errors.New("forecast: insufficient data")

const (
	// minTrainRows is the smallest shifted-target matrix worth splitting.
	minTrainRows = 10
	// trainFraction of rows goes to the chronological training split.
	trainFraction = 0.8
	// volLookback is how many recent daily returns feed the volatility estimate.
	volLookback = 30
	// defaultVolatility stands in when recent returns are missing or flat.
	defaultVolatility = 0.015
	// driftClamp caps the model-implied daily drift at ±3%.
	driftClamp = 0.03
	// ciZ approximates a 95% confidence interval.
	ciZ = 1.96
	// DefaultHorizon is the projection length when the caller does not choose one.
	DefaultHorizon = 7
)

// TrainedEnsemble owns both fitted regressors, the fitted scaler, and the
// ordered feature-column list required to reproduce the fit-time layout at
// inference. It lives for a single analysis request.
type TrainedEnsemble struct {
	Forest       *RandomForest
	Booster      *GradientBoosting
	Scaler       *StandardScaler
	FeatureNames []string
}

// Forecaster trains the two-regressor ensemble and projects forward paths.
type Forecaster struct {
	forestParams RandomForestParams
	boostParams  GradientBoostingParams
}

func NewForecaster() *Forecaster {
	return &Forecaster{
		forestParams: DefaultForestParams(),
		boostParams:  DefaultBoostingParams(),
	}
}

// Train fits the ensemble against the next day's close. The final row has no
// known future value and is dropped; the remaining rows split 80/20 in time
// order so the test set is strictly later than the train set.
func (f *Forecaster) Train(m *models.FeatureMatrix, targetCol string) (*TrainedEnsemble, models.BacktestMetrics, error) {
	var empty models.BacktestMetrics
	if m.Empty() {
		return nil, empty, ErrInsufficientData
	}
	X, err := m.Drop(targetCol)
	if err != nil {
		return nil, empty, fmt.Errorf("train: %w", err)
	}
	y, err := m.Column(targetCol)
	if err != nil {
		return nil, empty, fmt.Errorf("train: %w", err)
	}

	// shift the target back one row: row i predicts close[i+1]
	rows := m.NumRows() - 1
	if rows < minTrainRows {
		return nil, empty, ErrInsufficientData
	}
	features := X.Rows[:rows]
	target := y[1 : rows+1]

	trainN := int(float64(rows) * trainFraction)
	if trainN < 1 || rows-trainN < 1 {
		return nil, empty, ErrInsufficientData
	}

	scaler := &StandardScaler{}
	if err := scaler.Fit(features[:trainN]); err != nil {
		return nil, empty, fmt.Errorf("train: %w", err)
	}
	trainX, err := scaler.Transform(features[:trainN])
	if err != nil {
		return nil, empty, fmt.Errorf("train: %w", err)
	}
	testX, err := scaler.Transform(features[trainN:])
	if err != nil {
		return nil, empty, fmt.Errorf("train: %w", err)
	}
	trainY := target[:trainN]
	testY := target[trainN:]

	ens := &TrainedEnsemble{
		Forest:       FitRandomForest(trainX, trainY, f.forestParams),
		Booster:      FitGradientBoosting(trainX, trainY, f.boostParams),
		Scaler:       scaler,
		FeatureNames: append([]string(nil), X.Columns...),
	}

	metrics := evaluate(ens, testX, testY)
	metrics.TrainSize = trainN
	metrics.TestSize = rows - trainN
	return ens, metrics, nil
}

// evaluate scores the simple average of both models on the held-out split.
func evaluate(ens *TrainedEnsemble, testX [][]float64, testY []float64) models.BacktestMetrics {
	preds := make([]float64, len(testY))
	for i, row := range testX {
		preds[i] = ens.predictRow(row)
	}

	var mapeSum float64
	var mapeN int
	for i, actual := range testY {
		if actual == 0 {
			continue
		}
		mapeSum += math.Abs((actual - preds[i]) / actual)
		mapeN++
	}
	var mape float64
	if mapeN > 0 {
		mape = mapeSum / float64(mapeN) * 100
	}

	r2 := stat.RSquaredFrom(preds, testY, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	return models.BacktestMetrics{MAPE: mape, R2: r2}
}

// predictRow averages both regressors on an already-scaled row.
func (e *TrainedEnsemble) predictRow(scaled []float64) float64 {
	return (e.Forest.Predict(scaled) + e.Booster.Predict(scaled)) / 2
}

// Project simulates days of future closes from the last known feature row.
// The model's implied next-day move sets a constant drift (clamped to ±3%),
// while Gaussian noise scaled by recent volatility is resampled each day.
// Passing a nil source keeps the production default of unseeded randomness;
// tests inject a seeded source for exact sequences.
func (f *Forecaster) Project(ens *TrainedEnsemble, m *models.FeatureMatrix, targetCol string, days int, src rand.Source) (*models.ForecastPath, error) {
	if ens == nil || m.Empty() {
		return &models.ForecastPath{}, ErrInsufficientData
	}
	if days <= 0 {
		days = DefaultHorizon
	}
	closes, err := m.Column(targetCol)
	if err != nil {
		return &models.ForecastPath{}, fmt.Errorf("project: %w", err)
	}
	lastPrice := closes[len(closes)-1]
	if lastPrice == 0 {
		return &models.ForecastPath{}, ErrInsufficientData
	}

	vol := recentVolatility(closes, volLookback)

	// one forward inference step: reselect columns to the fit-time order,
	// scale with the stored scaler, average both models
	featureView, err := m.Select(ens.FeatureNames)
	if err != nil {
		return &models.ForecastPath{}, fmt.Errorf("project: feature alignment: %w", err)
	}
	scaled, err := ens.Scaler.TransformRow(featureView.LastRow())
	if err != nil {
		return &models.ForecastPath{}, fmt.Errorf("project: %w", err)
	}
	modelNextDay := ens.predictRow(scaled)

	drift := (modelNextDay - lastPrice) / lastPrice
	if drift > driftClamp {
		drift = driftClamp
	} else if drift < -driftClamp {
		drift = -driftClamp
	}

	noise := distuv.Normal{Mu: 0, Sigma: vol}
	if src != nil {
		noise.Src = src
	}

	path := &models.ForecastPath{LastPrice: lastPrice, Points: make([]models.ForecastPoint, 0, days)}
	price := lastPrice
	for day := 1; day <= days; day++ {
		move := drift + noise.Rand()
		price = price * (1 + move)
		// Half-width grows linearly with the day index, not with sqrt(time);
		// kept as documented behavior of the projection, not a bug.
		halfWidth := vol * float64(day) * ciZ
		path.Points = append(path.Points, models.ForecastPoint{
			PredictedClose: price,
			LowerBound:     price * (1 - halfWidth),
			UpperBound:     price * (1 + halfWidth),
		})
	}

	final := path.Points[len(path.Points)-1].PredictedClose
	if final > lastPrice {
		path.Trend = "upward"
	} else {
		path.Trend = "downward"
	}
	path.ChangePercent = (final - lastPrice) / lastPrice * 100
	return path, nil
}

// recentVolatility is the sample standard deviation of the last `lookback`
// daily percentage changes, defaulting to 1.5% when unavailable or zero.
func recentVolatility(closes []float64, lookback int) float64 {
	rets := make([]float64, 0, lookback)
	start := len(closes) - lookback - 1
	if start < 0 {
		start = 0
	}
	for i := start + 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		rets = append(rets, (closes[i]-closes[i-1])/closes[i-1])
	}
	if len(rets) < 2 {
		return defaultVolatility
	}
	sd := stat.StdDev(rets, nil)
	if sd == 0 || math.IsNaN(sd) || math.IsInf(sd, 0) {
		return defaultVolatility
	}
	return sd
}
