package models

// Indicator series use *float64 so that warm-up gaps and undefined ratios
// serialize as JSON null, never as NaN or Infinity.

// MACDSeries holds the MACD line, its signal line and the histogram.
type MACDSeries struct {
	MACD      []*float64 `json:"macd"`
	Signal    []*float64 `json:"signal"`
	Histogram []*float64 `json:"histogram"`
}

// BollingerSeries holds the three Bollinger bands.
type BollingerSeries struct {
	Upper  []*float64 `json:"upper"`
	Middle []*float64 `json:"middle"`
	Lower  []*float64 `json:"lower"`
}

// StochasticSeries holds %K and its 3-period smoothing %D.
type StochasticSeries struct {
	K []*float64 `json:"k"`
	D []*float64 `json:"d"`
}

// IndicatorSnapshot carries the most recent scalar indicator values used by
// the narrative generator. A nil underlying value is reported as 0.
type IndicatorSnapshot struct {
	RSICurrent    float64 `json:"rsi_current"`
	MACDCurrent   float64 `json:"macd_current"`
	MACDSignal    float64 `json:"macd_signal"`
	PriceVsSMA20  float64 `json:"price_vs_sma20"`
	PriceVsSMA50  float64 `json:"price_vs_sma50"`
	PriceVsSMA200 float64 `json:"price_vs_sma200"`
}

// IndicatorSet is the full indicator output for one price series. Every
// sequence is aligned 1:1 with the input bars.
type IndicatorSet struct {
	SMA20      []*float64        `json:"sma_20"`
	SMA50      []*float64        `json:"sma_50"`
	SMA200     []*float64        `json:"sma_200"`
	EMA12      []*float64        `json:"ema_12"`
	EMA26      []*float64        `json:"ema_26"`
	RSI        []*float64        `json:"rsi"`
	MACD       MACDSeries        `json:"macd"`
	Bollinger  BollingerSeries   `json:"bollinger"`
	ATR        []*float64        `json:"atr"`
	Stochastic StochasticSeries  `json:"stochastic"`
	Latest     IndicatorSnapshot `json:"latest"`
}
