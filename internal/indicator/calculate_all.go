package indicator

import (
	"math"

	"StockCast/internal/domain/models"
)

// Default periods match the analysis contract served over the API.
const (
	DefaultRSIPeriod        = 14
	DefaultMACDFast         = 12
	DefaultMACDSlow         = 26
	DefaultMACDSignal       = 9
	DefaultBollingerPeriod  = 20
	DefaultBollingerK       = 2.0
	DefaultATRPeriod        = 14
	DefaultStochasticPeriod = 14
)

// CalculateAll runs every indicator over one price series and derives the
// latest-value snapshot. The result is sanitized: no NaN or Inf survives.
func (e *Engine) CalculateAll(series *models.PriceSeries) models.IndicatorSet {
	if series.Empty() {
		return models.IndicatorSet{}
	}
	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()

	set := models.IndicatorSet{
		SMA20:      e.SMA(closes, 20),
		SMA50:      e.SMA(closes, 50),
		SMA200:     e.SMA(closes, 200),
		EMA12:      e.EMA(closes, 12),
		EMA26:      e.EMA(closes, 26),
		RSI:        e.RSI(closes, DefaultRSIPeriod),
		MACD:       e.MACD(closes, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal),
		Bollinger:  e.Bollinger(closes, DefaultBollingerPeriod, DefaultBollingerK),
		ATR:        e.ATR(highs, lows, closes, DefaultATRPeriod),
		Stochastic: e.Stochastic(highs, lows, closes, DefaultStochasticPeriod),
	}

	lastClose := closes[len(closes)-1]
	set.Latest = models.IndicatorSnapshot{
		RSICurrent:    lastOrZero(set.RSI),
		MACDCurrent:   lastOrZero(set.MACD.MACD),
		MACDSignal:    lastOrZero(set.MACD.Signal),
		PriceVsSMA20:  pctVs(lastClose, set.SMA20),
		PriceVsSMA50:  pctVs(lastClose, set.SMA50),
		PriceVsSMA200: pctVs(lastClose, set.SMA200),
	}

	SanitizeSet(&set)
	return set
}

// lastOrZero returns the most recent non-nil value, substituting 0.
func lastOrZero(xs []*float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	v := xs[len(xs)-1]
	if v == nil {
		return 0
	}
	return *v
}

// pctVs returns the percentage deviation of price from the latest value of a
// moving average, or 0 when the average has not warmed up.
func pctVs(price float64, avg []*float64) float64 {
	if len(avg) == 0 {
		return 0
	}
	v := avg[len(avg)-1]
	if v == nil || *v == 0 {
		return 0
	}
	p := (price/(*v) - 1.0) * 100.0
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}

// SanitizeSet is the defensive second pass over a full indicator set: any
// non-finite value that slipped through becomes nil (snapshot fields become 0).
func SanitizeSet(set *models.IndicatorSet) {
	for _, seq := range [][]*float64{
		set.SMA20, set.SMA50, set.SMA200, set.EMA12, set.EMA26, set.RSI,
		set.MACD.MACD, set.MACD.Signal, set.MACD.Histogram,
		set.Bollinger.Upper, set.Bollinger.Middle, set.Bollinger.Lower,
		set.ATR, set.Stochastic.K, set.Stochastic.D,
	} {
		sanitizeSeq(seq)
	}
	set.Latest.RSICurrent = finiteOrZero(set.Latest.RSICurrent)
	set.Latest.MACDCurrent = finiteOrZero(set.Latest.MACDCurrent)
	set.Latest.MACDSignal = finiteOrZero(set.Latest.MACDSignal)
	set.Latest.PriceVsSMA20 = finiteOrZero(set.Latest.PriceVsSMA20)
	set.Latest.PriceVsSMA50 = finiteOrZero(set.Latest.PriceVsSMA50)
	set.Latest.PriceVsSMA200 = finiteOrZero(set.Latest.PriceVsSMA200)
}

func sanitizeSeq(xs []*float64) {
	for i, v := range xs {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			xs[i] = nil
		}
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
