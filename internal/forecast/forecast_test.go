package forecast

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"StockCast/internal/domain/models"
)

func assertClose(t *testing.T, got, want, tol float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s: got %v, want %v (tol %v)", msg, got, want, tol)
	}
}

// matrixFromCloses builds a small feature matrix with the close column plus
// two derived features, mirroring the builder's dense output shape.
func matrixFromCloses(closes []float64) *models.FeatureMatrix {
	m := &models.FeatureMatrix{Columns: []string{"close", "lag_1", "idx"}}
	for i, c := range closes {
		lag := c
		if i > 0 {
			lag = closes[i-1]
		}
		m.Rows = append(m.Rows, []float64{c, lag, float64(i)})
	}
	return m
}

func trendingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5 + 2*math.Sin(float64(i)/7)
	}
	return closes
}

func flatCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100
	}
	return closes
}

func TestScalerFitTransform(t *testing.T) {
	s := &StandardScaler{}
	rows := [][]float64{{1, 10}, {3, 10}, {5, 10}}
	if err := s.Fit(rows); err != nil {
		t.Fatalf("fit: %v", err)
	}
	out, err := s.Transform(rows)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	// first column: mean 3, sample std 2
	assertClose(t, out[0][0], -1, 1e-12, "scaled first value")
	assertClose(t, out[1][0], 0, 1e-12, "scaled middle value")
	assertClose(t, out[2][0], 1, 1e-12, "scaled last value")
	// constant column keeps std 1 so values stay finite
	for i := range out {
		if math.IsNaN(out[i][1]) || math.IsInf(out[i][1], 0) {
			t.Fatalf("constant column produced non-finite value at row %d", i)
		}
		assertClose(t, out[i][1], 0, 1e-12, "constant column centers to zero")
	}
}

func TestScalerTransformRowLengthMismatch(t *testing.T) {
	s := &StandardScaler{}
	if err := s.Fit([][]float64{{1, 2}, {3, 4}}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := s.TransformRow([]float64{1}); err == nil {
		t.Fatal("expected error on row width mismatch")
	}
}

func TestForestLearnsConstant(t *testing.T) {
	X := make([][]float64, 40)
	y := make([]float64, 40)
	for i := range X {
		X[i] = []float64{float64(i)}
		y[i] = 7
	}
	f := FitRandomForest(X, y, DefaultForestParams())
	assertClose(t, f.Predict([]float64{20}), 7, 1e-9, "constant target")
}

func TestBoostingFitsLinearTrend(t *testing.T) {
	X := make([][]float64, 60)
	y := make([]float64, 60)
	for i := range X {
		X[i] = []float64{float64(i)}
		y[i] = 2 * float64(i)
	}
	g := FitGradientBoosting(X, y, DefaultBoostingParams())
	// in-sample prediction should land near the true line
	assertClose(t, g.Predict([]float64{30}), 60, 5, "in-sample linear fit")
}

func TestTrainTooFewRows(t *testing.T) {
	f := NewForecaster()
	m := matrixFromCloses(trendingCloses(8))
	ens, metrics, err := f.Train(m, "close")
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if ens != nil {
		t.Fatal("expected nil ensemble on short input")
	}
	if !metrics.Empty() {
		t.Fatalf("expected empty metrics, got %+v", metrics)
	}
}

func TestTrainSplitsChronologically(t *testing.T) {
	f := NewForecaster()
	m := matrixFromCloses(trendingCloses(101))
	ens, metrics, err := f.Train(m, "close")
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	// 101 rows minus the unshiftable last row leaves 100, split 80/20
	if metrics.TrainSize != 80 || metrics.TestSize != 20 {
		t.Fatalf("split sizes = %d/%d, want 80/20", metrics.TrainSize, metrics.TestSize)
	}
	if metrics.MAPE < 0 {
		t.Fatalf("MAPE negative: %v", metrics.MAPE)
	}
	if len(ens.FeatureNames) != 2 {
		t.Fatalf("feature names = %v, want the two non-target columns", ens.FeatureNames)
	}
	for _, name := range ens.FeatureNames {
		if name == "close" {
			t.Fatal("target column leaked into features")
		}
	}
}

func TestProjectPathShape(t *testing.T) {
	f := NewForecaster()
	m := matrixFromCloses(trendingCloses(300))
	ens, _, err := f.Train(m, "close")
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	const days = 7
	path, err := f.Project(ens, m, "close", days, rand.NewSource(1))
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(path.Points) != days {
		t.Fatalf("path length = %d, want %d", len(path.Points), days)
	}
	prevWidth := -1.0
	for i, p := range path.Points {
		if p.LowerBound > p.PredictedClose || p.PredictedClose > p.UpperBound {
			t.Fatalf("day %d: bounds not ordered: %v %v %v", i+1, p.LowerBound, p.PredictedClose, p.UpperBound)
		}
		width := (p.UpperBound - p.PredictedClose) / p.PredictedClose
		if width < prevWidth {
			t.Fatalf("day %d: relative half-width shrank from %v to %v", i+1, prevWidth, width)
		}
		prevWidth = width
	}
	last := path.Points[days-1].PredictedClose
	wantChange := (last - path.LastPrice) / path.LastPrice * 100
	assertClose(t, path.ChangePercent, wantChange, 1e-9, "change percent identity")
	if path.Trend != "upward" && path.Trend != "downward" {
		t.Fatalf("trend = %q", path.Trend)
	}
}

func TestProjectSeededDeterminism(t *testing.T) {
	f := NewForecaster()
	m := matrixFromCloses(trendingCloses(300))
	ens, _, err := f.Train(m, "close")
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	a, err := f.Project(ens, m, "close", 7, rand.NewSource(42))
	if err != nil {
		t.Fatalf("project a: %v", err)
	}
	b, err := f.Project(ens, m, "close", 7, rand.NewSource(42))
	if err != nil {
		t.Fatalf("project b: %v", err)
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("day %d differs under same seed: %+v vs %+v", i+1, a.Points[i], b.Points[i])
		}
	}
	c, err := f.Project(ens, m, "close", 7, rand.NewSource(43))
	if err != nil {
		t.Fatalf("project c: %v", err)
	}
	same := true
	for i := range a.Points {
		if a.Points[i] != c.Points[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical paths")
	}
}

func TestProjectFlatSeriesUsesDefaultVolatility(t *testing.T) {
	f := NewForecaster()
	m := matrixFromCloses(flatCloses(252))
	ens, _, err := f.Train(m, "close")
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	path, err := f.Project(ens, m, "close", 5, rand.NewSource(7))
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	// flat history has zero measured volatility, so the half-width must
	// come from the 1.5% fallback and widen linearly with the day index
	for i, p := range path.Points {
		want := defaultVolatility * float64(i+1) * ciZ
		got := (p.UpperBound - p.PredictedClose) / p.PredictedClose
		assertClose(t, got, want, 1e-9, "fallback half-width")
	}
}

func TestProjectNilEnsemble(t *testing.T) {
	f := NewForecaster()
	m := matrixFromCloses(trendingCloses(50))
	path, err := f.Project(nil, m, "close", 7, nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if !path.Empty() {
		t.Fatal("expected empty path")
	}
}

func TestRecentVolatility(t *testing.T) {
	if v := recentVolatility(flatCloses(100), volLookback); v != defaultVolatility {
		t.Fatalf("flat series volatility = %v, want default %v", v, defaultVolatility)
	}
	if v := recentVolatility([]float64{100}, volLookback); v != defaultVolatility {
		t.Fatalf("single point volatility = %v, want default %v", v, defaultVolatility)
	}
	// alternating ±1% moves have a measurable sample std
	closes := []float64{100, 101, 99.99, 100.99, 99.98}
	if v := recentVolatility(closes, volLookback); v <= 0 || v == defaultVolatility {
		t.Fatalf("expected measured volatility, got %v", v)
	}
}

func TestBuildPredictionNormalizesNonFinite(t *testing.T) {
	path := &models.ForecastPath{
		Points: []models.ForecastPoint{
			{PredictedClose: 100, LowerBound: math.NaN(), UpperBound: math.Inf(1)},
		},
		Trend:         "upward",
		ChangePercent: math.Inf(-1),
		LastPrice:     99,
	}
	pred := BuildPrediction(path, models.BacktestMetrics{MAPE: math.NaN(), R2: 0.5, TrainSize: 80, TestSize: 20})
	if pred.ConfidenceLower[0] != 0 || pred.ConfidenceUpper[0] != 0 {
		t.Fatalf("non-finite bounds not zeroed: %v %v", pred.ConfidenceLower[0], pred.ConfidenceUpper[0])
	}
	if pred.ChangePercent != 0 {
		t.Fatalf("non-finite change percent not zeroed: %v", pred.ChangePercent)
	}
	if pred.BacktestMetrics.MAPE != 0 {
		t.Fatalf("non-finite MAPE not zeroed: %v", pred.BacktestMetrics.MAPE)
	}
	if pred.BacktestMetrics.R2 != 0.5 || pred.BacktestMetrics.TrainSize != 80 {
		t.Fatalf("metrics not carried through: %+v", pred.BacktestMetrics)
	}
	if pred.Predictions[0] != 100 || pred.LastPrice != 99 {
		t.Fatalf("finite values altered: %+v", pred)
	}
}
