package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/marketdata"
	"StockCast/internal/services/narrative"
	pkgcache "StockCast/pkg/cache"
	applogger "StockCast/pkg/logger"
)

type fakeSource struct {
	history *models.PriceSeries
	fund    *models.Fundamentals
	histErr error
}

func (f *fakeSource) GetHistory(_ context.Context, _ string, _ int) (*models.PriceSeries, error) {
	return f.history, f.histErr
}

func (f *fakeSource) GetFundamentals(_ context.Context, symbol string) (*models.Fundamentals, error) {
	if f.fund == nil {
		return &models.Fundamentals{Symbol: symbol}, nil
	}
	return f.fund, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordAnalysis(string, string)   {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}
func (nopMetrics) RecordCacheLookup(bool)          {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestUseCase(t *testing.T, src *fakeSource) *AnalyzeUseCase {
	t.Helper()
	return NewAnalyzeUseCase(
		src,
		narrative.New(),
		pkgcache.NewMemoryCache(),
		nopMetrics{},
		testLogger(t),
		time.Minute,
		time.Minute,
	)
}

func demoSeries(symbol string, n int) *models.PriceSeries {
	return marketdata.NewDemoSource().GenerateHistory(symbol, n)
}

func TestAnalyzeFullPipeline(t *testing.T) {
	src := &fakeSource{history: demoSeries("AAPL", 252)}
	uc := newTestUseCase(t, src)

	a, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "aapl", Days: 7, Lookback: 252})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.Symbol != "AAPL" {
		t.Fatalf("symbol = %q", a.Symbol)
	}
	if a.Cached {
		t.Fatal("first analysis marked cached")
	}
	if len(a.Prediction.Predictions) != 7 {
		t.Fatalf("prediction length = %d, want 7", len(a.Prediction.Predictions))
	}
	if a.Prediction.BacktestMetrics.TrainSize == 0 || a.Prediction.BacktestMetrics.TestSize == 0 {
		t.Fatalf("missing backtest split: %+v", a.Prediction.BacktestMetrics)
	}
	if len(a.TechnicalIndicators.RSI) != 252 {
		t.Fatalf("indicator length = %d, want 252", len(a.TechnicalIndicators.RSI))
	}
	if a.Summary.Verdict.Verdict == "" {
		t.Fatal("missing verdict")
	}
}

func TestAnalyzeServesFromCache(t *testing.T) {
	src := &fakeSource{history: demoSeries("MSFT", 252)}
	uc := newTestUseCase(t, src)

	first, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "MSFT"})
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	second, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "MSFT"})
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if !second.Cached {
		t.Fatal("second analysis not marked cached")
	}
	if second.GeneratedAt != first.GeneratedAt {
		t.Fatal("cached analysis regenerated")
	}
}

func TestAnalyzeCacheKeyIncludesHorizon(t *testing.T) {
	src := &fakeSource{history: demoSeries("NVDA", 252)}
	uc := newTestUseCase(t, src)

	a, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "NVDA", Days: 7})
	if err != nil {
		t.Fatalf("analyze 7d: %v", err)
	}
	b, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "NVDA", Days: 14})
	if err != nil {
		t.Fatalf("analyze 14d: %v", err)
	}
	if b.Cached {
		t.Fatal("different horizon served the cached entry")
	}
	if len(a.Prediction.Predictions) != 7 || len(b.Prediction.Predictions) != 14 {
		t.Fatalf("horizons = %d/%d, want 7/14", len(a.Prediction.Predictions), len(b.Prediction.Predictions))
	}
}

func TestAnalyzeConfiguredDefaults(t *testing.T) {
	src := &fakeSource{history: demoSeries("IBM", 252)}
	uc := newTestUseCase(t, src)
	uc.SetDefaults(14, 120)

	a, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "IBM"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got := len(a.Prediction.Predictions); got != 14 {
		t.Fatalf("default horizon = %d points, want 14", got)
	}

	// non-positive overrides keep the previous defaults
	uc.SetDefaults(0, -1)
	b, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "MSFT"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got := len(b.Prediction.Predictions); got != 14 {
		t.Fatalf("horizon after zero override = %d points, want 14", got)
	}
}

func TestAnalyzeNoData(t *testing.T) {
	src := &fakeSource{history: &models.PriceSeries{Symbol: "GONE"}, histErr: errors.New("provider down")}
	uc := newTestUseCase(t, src)

	if _, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "GONE"}); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestAnalyzeShortSeriesDegrades(t *testing.T) {
	short := demoSeries("TINY", 10)
	src := &fakeSource{history: short}
	uc := newTestUseCase(t, src)

	a, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "TINY"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	// 10 bars shift down to 9 training rows, below the minimum: empty
	// prediction, but indicators still present
	if len(a.Prediction.Predictions) != 0 {
		t.Fatalf("expected empty prediction, got %d points", len(a.Prediction.Predictions))
	}
	if len(a.TechnicalIndicators.RSI) != 10 {
		t.Fatalf("indicator length = %d, want 10", len(a.TechnicalIndicators.RSI))
	}
}

func TestClearCache(t *testing.T) {
	src := &fakeSource{history: demoSeries("AMZN", 252)}
	uc := newTestUseCase(t, src)

	if _, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "AMZN"}); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if err := uc.ClearCache(context.Background()); err != nil {
		t.Fatalf("clear cache: %v", err)
	}
	a, err := uc.Analyze(context.Background(), AnalyzeParams{Symbol: "AMZN"})
	if err != nil {
		t.Fatalf("analyze after clear: %v", err)
	}
	if a.Cached {
		t.Fatal("analysis served from cache after clear")
	}
}
