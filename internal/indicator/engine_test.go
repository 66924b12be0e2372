package indicator

import (
	"math"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (diff=%.6f)", label, got, want, math.Abs(got-want))
	}
}

func seriesFromCloses(closes []float64) *models.PriceSeries {
	s := &models.PriceSeries{Symbol: "TEST"}
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, c := range closes {
		s.Bars = append(s.Bars, models.PriceBar{
			Date: day, Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
		})
		day = day.AddDate(0, 0, 1)
	}
	return s
}

func TestSMACorrectness(t *testing.T) {
	e := NewEngine()
	// SMA(3) over 100,102,104,103,105: 102, 103, 104
	got := e.SMA([]float64{100, 102, 104, 103, 105}, 3)
	if len(got) != 5 {
		t.Fatalf("length: got %d, want 5", len(got))
	}
	if got[0] != nil || got[1] != nil {
		t.Fatalf("warm-up entries must be nil")
	}
	want := []float64{102, 103, 104}
	for i, w := range want {
		if got[i+2] == nil {
			t.Fatalf("index %d: unexpected nil", i+2)
		}
		assertClose(t, "SMA(3)", *got[i+2], w, 1e-9)
	}
}

func TestSMAPeriodOneIsIdentity(t *testing.T) {
	e := NewEngine()
	prices := []float64{5, 7, 6.5, 8.25}
	got := e.SMA(prices, 1)
	for i, p := range prices {
		if got[i] == nil {
			t.Fatalf("index %d: nil", i)
		}
		assertClose(t, "SMA(1)", *got[i], p, 1e-12)
	}
}

func TestSMAShortSeriesAllNil(t *testing.T) {
	e := NewEngine()
	for i, v := range e.SMA([]float64{1, 2, 3}, 5) {
		if v != nil {
			t.Fatalf("index %d: want nil, got %v", i, *v)
		}
	}
}

func TestEMASeedAndRecursion(t *testing.T) {
	e := NewEngine()
	// EMA(3): alpha=0.5, seed=10
	// 10; 0.5*12+0.5*10=11; 0.5*14+0.5*11=12.5; 0.5*13+0.5*12.5=12.75
	got := e.EMA([]float64{10, 12, 14, 13}, 3)
	want := []float64{10, 11, 12.5, 12.75}
	for i, w := range want {
		if got[i] == nil {
			t.Fatalf("index %d: unexpected nil", i)
		}
		assertClose(t, "EMA(3)", *got[i], w, 1e-9)
	}
}

func TestEMATooShortAllNil(t *testing.T) {
	e := NewEngine()
	for i, v := range e.EMA([]float64{10, 12}, 3) {
		if v != nil {
			t.Fatalf("index %d: want nil", i)
		}
	}
}

func TestRSIBounds(t *testing.T) {
	e := NewEngine()
	prices := []float64{
		44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00,
		46.03, 46.41, 46.22, 45.64,
	}
	got := e.RSI(prices, 14)
	if len(got) != len(prices) {
		t.Fatalf("length mismatch")
	}
	for i := 0; i < 14; i++ {
		if got[i] != nil {
			t.Fatalf("index %d: want nil warm-up", i)
		}
	}
	for i := 14; i < len(got); i++ {
		if got[i] == nil {
			t.Fatalf("index %d: unexpected nil", i)
		}
		if *got[i] < 0 || *got[i] > 100 {
			t.Fatalf("index %d: RSI %.4f out of [0,100]", i, *got[i])
		}
	}
}

func TestRSISaturatesOnZeroLoss(t *testing.T) {
	e := NewEngine()
	// Strictly increasing: no losses, RSI must saturate to 100, not NaN.
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	got := e.RSI(prices, 14)
	last := got[len(got)-1]
	if last == nil {
		t.Fatalf("want saturated RSI, got nil")
	}
	assertClose(t, "RSI saturation", *last, 100, 1e-9)
}

func TestRSIFlatSeriesDefined(t *testing.T) {
	e := NewEngine()
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 50
	}
	got := e.RSI(prices, 14)
	last := got[len(got)-1]
	if last == nil {
		t.Fatalf("flat series RSI must be defined")
	}
	if math.IsNaN(*last) || math.IsInf(*last, 0) {
		t.Fatalf("flat series RSI must be finite, got %v", *last)
	}
}

func TestMACDHistogramIdentity(t *testing.T) {
	e := NewEngine()
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + 3*math.Sin(float64(i)/5) + float64(i)*0.2
	}
	got := e.MACD(prices, 12, 26, 9)
	for i := range prices {
		m, s, h := got.MACD[i], got.Signal[i], got.Histogram[i]
		if m == nil || s == nil || h == nil {
			t.Fatalf("index %d: unexpected nil", i)
		}
		assertClose(t, "histogram", *h, *m-*s, 1e-12)
	}
}

func TestMACDShortSeriesAllNil(t *testing.T) {
	e := NewEngine()
	got := e.MACD(make([]float64, 20), 12, 26, 9)
	for i := 0; i < 20; i++ {
		if got.MACD[i] != nil || got.Signal[i] != nil || got.Histogram[i] != nil {
			t.Fatalf("index %d: want all-nil triple", i)
		}
	}
}

func TestBollingerOrdering(t *testing.T) {
	e := NewEngine()
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 50 + 5*math.Cos(float64(i)/3)
	}
	got := e.Bollinger(prices, 20, 2)
	for i := 19; i < len(prices); i++ {
		u, m, l := got.Upper[i], got.Middle[i], got.Lower[i]
		if u == nil || m == nil || l == nil {
			t.Fatalf("index %d: unexpected nil", i)
		}
		if !(*u >= *m && *m >= *l) {
			t.Fatalf("index %d: band ordering violated: %v %v %v", i, *u, *m, *l)
		}
	}
}

func TestBollingerFlatSeriesBandsCollapse(t *testing.T) {
	e := NewEngine()
	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 80
	}
	got := e.Bollinger(prices, 20, 2)
	last := len(prices) - 1
	assertClose(t, "upper", *got.Upper[last], 80, 1e-9)
	assertClose(t, "middle", *got.Middle[last], 80, 1e-9)
	assertClose(t, "lower", *got.Lower[last], 80, 1e-9)
}

func TestATRWarmupAndValue(t *testing.T) {
	e := NewEngine()
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100
		highs[i] = 101
		lows[i] = 99
	}
	got := e.ATR(highs, lows, closes, 14)
	for i := 0; i < 13; i++ {
		if got[i] != nil {
			t.Fatalf("index %d: want nil warm-up", i)
		}
	}
	// Constant 2-point daily range: ATR is exactly 2.
	assertClose(t, "ATR", *got[n-1], 2, 1e-9)
}

func TestStochasticFlatRangeIsNil(t *testing.T) {
	e := NewEngine()
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i], lows[i], closes[i] = 70, 70, 70
	}
	got := e.Stochastic(highs, lows, closes, 14)
	for i := range got.K {
		if got.K[i] != nil {
			t.Fatalf("index %d: flat range %%K must be nil, got %v", i, *got.K[i])
		}
		if got.D[i] != nil {
			t.Fatalf("index %d: flat range %%D must be nil", i)
		}
	}
}

func TestStochasticBounds(t *testing.T) {
	e := NewEngine()
	n := 40
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		c := 100 + 10*math.Sin(float64(i)/4)
		closes[i] = c
		highs[i] = c + 2
		lows[i] = c - 2
	}
	got := e.Stochastic(highs, lows, closes, 14)
	for i := 13; i < n; i++ {
		if got.K[i] == nil {
			t.Fatalf("index %d: unexpected nil %%K", i)
		}
		if *got.K[i] < 0 || *got.K[i] > 100 {
			t.Fatalf("index %d: %%K %.4f out of range", i, *got.K[i])
		}
	}
}

func TestCalculateAllFlatSeries(t *testing.T) {
	e := NewEngine()
	closes := make([]float64, 252)
	for i := range closes {
		closes[i] = 500
	}
	set := e.CalculateAll(seriesFromCloses(closes))

	if v := set.SMA20[251]; v == nil || *v != 500 {
		t.Fatalf("SMA20 on flat series: got %v, want 500", v)
	}
	if v := set.EMA12[251]; v == nil {
		t.Fatalf("EMA12 on flat series: nil")
	} else {
		assertClose(t, "EMA12 flat", *v, 500, 1e-6)
	}
	if set.Latest.RSICurrent != 100 && set.Latest.RSICurrent != 0 {
		// zero-loss window saturates; either boundary is defined, NaN is not
		t.Fatalf("flat RSI snapshot must be a boundary value, got %v", set.Latest.RSICurrent)
	}
	assertClose(t, "price vs sma20", set.Latest.PriceVsSMA20, 0, 1e-9)
}

func TestCalculateAllMonotonicSeries(t *testing.T) {
	e := NewEngine()
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	set := e.CalculateAll(seriesFromCloses(closes))

	// SMA20 strictly increasing after warm-up.
	for i := 20; i < 60; i++ {
		if set.SMA20[i] == nil || set.SMA20[i-1] == nil {
			t.Fatalf("index %d: nil SMA20 after warm-up", i)
		}
		if *set.SMA20[i] <= *set.SMA20[i-1] {
			t.Fatalf("index %d: SMA20 not increasing", i)
		}
	}
	if set.Latest.RSICurrent < 90 {
		t.Fatalf("monotonic series RSI should approach 100, got %.2f", set.Latest.RSICurrent)
	}
	if set.Latest.MACDCurrent <= 0 {
		t.Fatalf("monotonic series MACD should be positive, got %.4f", set.Latest.MACDCurrent)
	}
}

func TestCalculateAllNeverEmitsNonFinite(t *testing.T) {
	e := NewEngine()
	// Constant prices provoke zero-division in Stochastic and RSI.
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 42
	}
	s := seriesFromCloses(closes)
	// Flatten high/low too so the stochastic range is exactly zero.
	for i := range s.Bars {
		s.Bars[i].High = 42
		s.Bars[i].Low = 42
	}
	set := e.CalculateAll(s)
	check := func(name string, xs []*float64) {
		for i, v := range xs {
			if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
				t.Fatalf("%s[%d]: non-finite value leaked", name, i)
			}
		}
	}
	check("rsi", set.RSI)
	check("stoch_k", set.Stochastic.K)
	check("stoch_d", set.Stochastic.D)
	check("macd", set.MACD.MACD)
	for _, v := range []float64{
		set.Latest.RSICurrent, set.Latest.MACDCurrent, set.Latest.MACDSignal,
		set.Latest.PriceVsSMA20, set.Latest.PriceVsSMA50, set.Latest.PriceVsSMA200,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("snapshot leaked non-finite value")
		}
	}
}

func TestCalculateAllEmptySeries(t *testing.T) {
	e := NewEngine()
	set := e.CalculateAll(&models.PriceSeries{})
	if len(set.SMA20) != 0 || len(set.RSI) != 0 {
		t.Fatalf("empty series must produce empty indicator set")
	}
}
