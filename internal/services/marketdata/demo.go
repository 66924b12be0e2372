package marketdata

import (
	"hash/fnv"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"StockCast/internal/domain/models"
	"StockCast/pkg/util"
)

// DemoSource generates deterministic synthetic history so the service runs
// without an upstream provider or API key. The same symbol always yields the
// same series.
type DemoSource struct {
	now func() time.Time
}

func NewDemoSource() *DemoSource {
	return &DemoSource{now: time.Now}
}

func symbolSeed(symbol string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(util.NormalizeSymbol(symbol)))
	return h.Sum64()
}

// GenerateHistory produces lookbackDays of daily bars as a geometric random
// walk, skipping weekends, ending on the most recent weekday.
func (d *DemoSource) GenerateHistory(symbol string, lookbackDays int) *models.PriceSeries {
	if lookbackDays <= 0 {
		lookbackDays = 252
	}
	rng := rand.New(rand.NewSource(symbolSeed(symbol)))
	ret := distuv.Normal{Mu: 0.0004, Sigma: 0.018, Src: rng}

	// base price in [40, 540), stable per symbol
	price := 40 + float64(symbolSeed(symbol)%500)

	// walk back far enough to cover weekends
	day := util.LastTradingDay(d.now())
	dates := make([]time.Time, 0, lookbackDays)
	for len(dates) < lookbackDays {
		if !util.IsWeekend(day) {
			dates = append(dates, day)
		}
		day = day.AddDate(0, 0, -1)
	}
	// oldest first
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}

	series := &models.PriceSeries{Symbol: util.NormalizeSymbol(symbol), Bars: make([]models.PriceBar, 0, lookbackDays)}
	for _, date := range dates {
		open := price * (1 + ret.Rand()/2)
		close := price * (1 + ret.Rand())
		high := maxf(open, close) * (1 + rng.Float64()*0.01)
		low := minf(open, close) * (1 - rng.Float64()*0.01)
		volume := 1_000_000 + rng.Float64()*9_000_000
		series.Bars = append(series.Bars, models.PriceBar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: volume,
		})
		price = close
	}
	return series
}

// GenerateFundamentals derives a fundamental snapshot from the synthetic
// series so demo responses have the same shape as live ones.
func (d *DemoSource) GenerateFundamentals(symbol string, series *models.PriceSeries) *models.Fundamentals {
	f := &models.Fundamentals{Symbol: util.NormalizeSymbol(symbol), Name: util.NormalizeSymbol(symbol) + " Corp (Demo)"}
	if series.Empty() {
		return f
	}
	last := series.Bars[len(series.Bars)-1]
	f.CMP = last.Close
	f.Open = last.Open
	f.DayHigh = last.High
	f.DayLow = last.Low
	f.Volume = int64(last.Volume)
	if series.Len() > 1 {
		f.PreviousClose = series.Bars[series.Len()-2].Close
		f.Change = f.CMP - f.PreviousClose
		if f.PreviousClose != 0 {
			f.ChangePercent = f.Change / f.PreviousClose * 100
		}
	}
	high, low := last.High, last.Low
	for _, b := range series.Bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	f.Week52High = high
	f.Week52Low = low

	rng := rand.New(rand.NewSource(symbolSeed(symbol) + 1))
	f.MarketCap = f.CMP * (1e8 + rng.Float64()*9e8)
	f.PERatio = 8 + rng.Float64()*30
	f.PriceToBook = 0.5 + rng.Float64()*9
	f.DividendYield = rng.Float64() * 4
	f.EPS = f.CMP / f.PERatio
	f.Beta = 0.5 + rng.Float64()*1.5
	f.RevenueGrowth = -5 + rng.Float64()*25
	f.ProfitMargin = rng.Float64() * 30
	f.ROE = 5 + rng.Float64()*30
	f.DebtToEquity = rng.Float64() * 2
	f.TargetPrice = f.CMP * (0.9 + rng.Float64()*0.3)
	f.Recommendation = []string{"buy", "hold", "sell"}[rng.Intn(3)]
	return f
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
