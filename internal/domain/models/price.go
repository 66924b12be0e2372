package models

import "time"

// PriceBar is one trading day of OHLCV data.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is an ordered, oldest-first sequence of daily bars.
// Dates are unique; weekends and holidays are simply absent.
type PriceSeries struct {
	Symbol string     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Empty reports whether the series has no bars.
func (s *PriceSeries) Empty() bool { return s == nil || len(s.Bars) == 0 }

// Closes returns the close column.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high column.
func (s *PriceSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low column.
func (s *PriceSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// LastClose returns the most recent close, or 0 for an empty series.
func (s *PriceSeries) LastClose() float64 {
	if s.Empty() {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}
