package features

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"StockCast/internal/domain/models"
)

// Builder assembles the training feature matrix from raw OHLCV bars and
// indicator outputs. Warm-up gaps are backward-filled then forward-filled so
// the result is dense; columns with no observed value at all are dropped.
type Builder struct{}

func NewBuilder() *Builder { return &Builder{} }

// TargetColumn is the column the forecaster shifts to build its next-day target.
const TargetColumn = "close"

// Build returns a dense feature matrix aligned with the series, or an empty
// matrix for empty/malformed input.
func (b *Builder) Build(series *models.PriceSeries, ind *models.IndicatorSet) *models.FeatureMatrix {
	if series.Empty() {
		return &models.FeatureMatrix{}
	}
	n := series.Len()
	closes := series.Closes()

	cols := []namedColumn{
		{"open", rawColumn(series, func(b models.PriceBar) float64 { return b.Open })},
		{"high", rawColumn(series, func(b models.PriceBar) float64 { return b.High })},
		{"low", rawColumn(series, func(b models.PriceBar) float64 { return b.Low })},
		{"close", rawColumn(series, func(b models.PriceBar) float64 { return b.Close })},
		{"volume", rawColumn(series, func(b models.PriceBar) float64 { return b.Volume })},
	}

	if ind != nil {
		cols = append(cols,
			namedColumn{"sma_20", fromNullable(ind.SMA20, n)},
			namedColumn{"sma_50", fromNullable(ind.SMA50, n)},
			namedColumn{"ema_12", fromNullable(ind.EMA12, n)},
			namedColumn{"ema_26", fromNullable(ind.EMA26, n)},
			namedColumn{"rsi", fromNullable(ind.RSI, n)},
			namedColumn{"macd", fromNullable(ind.MACD.MACD, n)},
			namedColumn{"macd_signal", fromNullable(ind.MACD.Signal, n)},
			namedColumn{"bb_upper", fromNullable(ind.Bollinger.Upper, n)},
			namedColumn{"bb_lower", fromNullable(ind.Bollinger.Lower, n)},
			namedColumn{"atr", fromNullable(ind.ATR, n)},
		)
	}

	cols = append(cols,
		namedColumn{"price_change", pctChange(closes, 1)},
		namedColumn{"high_low_range", highLowRange(series)},
		namedColumn{"close_open_diff", closeOpenDiff(series)},
		namedColumn{"momentum_5", pctChange(closes, 5)},
		namedColumn{"momentum_10", pctChange(closes, 10)},
		namedColumn{"volatility_5", rollingStd(closes, 5)},
		namedColumn{"volatility_20", rollingStd(closes, 20)},
	)

	out := &models.FeatureMatrix{}
	kept := make([][]float64, 0, len(cols))
	for _, c := range cols {
		filled, ok := fillColumn(c.values)
		if !ok {
			continue // never observed, cannot fill
		}
		out.Columns = append(out.Columns, c.name)
		kept = append(kept, filled)
	}
	if len(kept) == 0 {
		return &models.FeatureMatrix{}
	}

	out.Rows = make([][]float64, n)
	for r := 0; r < n; r++ {
		row := make([]float64, len(kept))
		for cIdx, col := range kept {
			row[cIdx] = col[r]
		}
		out.Rows[r] = row
	}
	return out
}

type namedColumn struct {
	name   string
	values []float64 // NaN marks missing
}

func rawColumn(s *models.PriceSeries, f func(models.PriceBar) float64) []float64 {
	out := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		out[i] = f(bar)
	}
	return out
}

func fromNullable(xs []*float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i < len(xs) && xs[i] != nil {
			out[i] = *xs[i]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// pctChange computes the percentage change over a lookback of `periods` rows.
func pctChange(xs []float64, periods int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i < periods || xs[i-periods] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (xs[i] - xs[i-periods]) / xs[i-periods]
	}
	return out
}

func highLowRange(s *models.PriceSeries) []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		if b.Close == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (b.High - b.Low) / b.Close
	}
	return out
}

func closeOpenDiff(s *models.PriceSeries) []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		if b.Open == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (b.Close - b.Open) / b.Open
	}
	return out
}

// rollingStd computes the trailing sample standard deviation over `window` rows.
func rollingStd(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.StdDev(xs[i-window+1:i+1], nil)
	}
	return out
}

// fillColumn applies backward-fill then forward-fill. It reports false when
// the column holds no finite value at all.
func fillColumn(xs []float64) ([]float64, bool) {
	out := append([]float64(nil), xs...)
	any := false
	for _, v := range out {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			any = true
			break
		}
	}
	if !any {
		return nil, false
	}
	// backward fill: pull the next valid value into leading gaps
	for i := len(out) - 2; i >= 0; i-- {
		if isMissing(out[i]) && !isMissing(out[i+1]) {
			out[i] = out[i+1]
		}
	}
	// forward fill: cover trailing gaps
	for i := 1; i < len(out); i++ {
		if isMissing(out[i]) && !isMissing(out[i-1]) {
			out[i] = out[i-1]
		}
	}
	return out, true
}

func isMissing(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
