package indicator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"StockCast/internal/domain/models"
)

// Engine computes rolling-window technical indicators. All methods are pure:
// output length always equals input length, with nil marking indices where
// the window has not yet filled or a ratio is undefined.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// fin wraps v as a nullable value, mapping NaN and Inf to nil so that no
// non-finite number ever leaves this package.
func fin(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func nulls(n int) []*float64 { return make([]*float64, n) }

// SMA computes the arithmetic mean of the trailing period values. The first
// period-1 entries are nil.
func (e *Engine) SMA(prices []float64, period int) []*float64 {
	out := nulls(len(prices))
	if period <= 0 || len(prices) < period {
		return out
	}
	for i := period - 1; i < len(prices); i++ {
		out[i] = fin(stat.Mean(prices[i-period+1:i+1], nil))
	}
	return out
}

// EMA computes recursive exponential smoothing with alpha = 2/(period+1),
// seeded at index 0 with the first observation. Series shorter than period
// come back all-nil.
func (e *Engine) EMA(prices []float64, period int) []*float64 {
	out := nulls(len(prices))
	if period <= 0 || len(prices) < period {
		return out
	}
	for i, v := range emaValues(prices, period) {
		out[i] = fin(v)
	}
	return out
}

// emaValues is the unguarded EMA recursion used internally by MACD, where the
// caller has already checked the series is long enough.
func emaValues(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI computes the Relative Strength Index over trailing period-window means
// of gains and losses. A window with zero average loss saturates to 100
// rather than dividing by zero.
func (e *Engine) RSI(prices []float64, period int) []*float64 {
	out := nulls(len(prices))
	if period <= 0 || len(prices) < period+1 {
		return out
	}
	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	for i := period; i < len(prices); i++ {
		meanGain := stat.Mean(gains[i-period+1:i+1], nil)
		meanLoss := stat.Mean(losses[i-period+1:i+1], nil)
		if meanLoss == 0 {
			v := 100.0
			out[i] = &v
			continue
		}
		rs := meanGain / meanLoss
		out[i] = fin(100.0 - 100.0/(1.0+rs))
	}
	return out
}

// MACD computes the moving average convergence divergence triple. Fewer than
// slow points yields an all-nil triple.
func (e *Engine) MACD(prices []float64, fast, slow, signal int) models.MACDSeries {
	n := len(prices)
	if n < slow {
		return models.MACDSeries{MACD: nulls(n), Signal: nulls(n), Histogram: nulls(n)}
	}
	emaFast := emaValues(prices, fast)
	emaSlow := emaValues(prices, slow)
	macd := make([]float64, n)
	for i := range macd {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	sig := emaValues(macd, signal)

	out := models.MACDSeries{MACD: nulls(n), Signal: nulls(n), Histogram: nulls(n)}
	for i := 0; i < n; i++ {
		out.MACD[i] = fin(macd[i])
		out.Signal[i] = fin(sig[i])
		out.Histogram[i] = fin(macd[i] - sig[i])
	}
	return out
}

// Bollinger computes the SMA middle band and k population standard deviations
// above and below it, over the same rolling window.
func (e *Engine) Bollinger(prices []float64, period int, k float64) models.BollingerSeries {
	n := len(prices)
	out := models.BollingerSeries{Upper: nulls(n), Middle: nulls(n), Lower: nulls(n)}
	if period <= 0 || n < period {
		return out
	}
	for i := period - 1; i < n; i++ {
		win := prices[i-period+1 : i+1]
		mid := stat.Mean(win, nil)
		band := k * stat.PopStdDev(win, nil)
		out.Middle[i] = fin(mid)
		out.Upper[i] = fin(mid + band)
		out.Lower[i] = fin(mid - band)
	}
	return out
}

// ATR computes the trailing mean of the true range. The first bar's true
// range falls back to high-low since there is no previous close.
func (e *Engine) ATR(highs, lows, closes []float64, period int) []*float64 {
	n := len(highs)
	out := nulls(n)
	if period <= 0 || n < period+1 || len(lows) != n || len(closes) != n {
		return out
	}
	tr := make([]float64, n)
	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hpc := math.Abs(highs[i] - closes[i-1])
		lpc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hpc, lpc))
	}
	for i := period - 1; i < n; i++ {
		out[i] = fin(stat.Mean(tr[i-period+1:i+1], nil))
	}
	return out
}

// Stochastic computes %K over the rolling high/low range and %D as its
// 3-period SMA. A flat range yields nil for that index, not NaN.
func (e *Engine) Stochastic(highs, lows, closes []float64, period int) models.StochasticSeries {
	n := len(highs)
	out := models.StochasticSeries{K: nulls(n), D: nulls(n)}
	if period <= 0 || n < period || len(lows) != n || len(closes) != n {
		return out
	}
	for i := period - 1; i < n; i++ {
		lo := lows[i-period+1]
		hi := highs[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			if lows[j] < lo {
				lo = lows[j]
			}
			if highs[j] > hi {
				hi = highs[j]
			}
		}
		if hi == lo {
			continue // flat range, %K undefined
		}
		out.K[i] = fin(100.0 * (closes[i] - lo) / (hi - lo))
	}
	// %D = 3-period SMA of %K; any nil inside the window keeps %D nil.
	for i := 2; i < n; i++ {
		a, b, c := out.K[i-2], out.K[i-1], out.K[i]
		if a == nil || b == nil || c == nil {
			continue
		}
		out.D[i] = fin((*a + *b + *c) / 3.0)
	}
	return out
}
