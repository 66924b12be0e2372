package marketdata

import (
	"testing"
	"time"

	"StockCast/pkg/util"
)

func TestDemoHistoryDeterministic(t *testing.T) {
	d := NewDemoSource()
	a := d.GenerateHistory("AAPL", 100)
	b := d.GenerateHistory("aapl", 100)
	if a.Len() != 100 || b.Len() != 100 {
		t.Fatalf("lengths = %d, %d, want 100", a.Len(), b.Len())
	}
	for i := range a.Bars {
		if a.Bars[i].Close != b.Bars[i].Close || a.Bars[i].Volume != b.Bars[i].Volume {
			t.Fatalf("bar %d differs between case variants of the same symbol", i)
		}
	}
	c := d.GenerateHistory("MSFT", 100)
	if a.Bars[50].Close == c.Bars[50].Close {
		t.Fatal("different symbols produced identical walks")
	}
}

func TestDemoHistoryBarShape(t *testing.T) {
	series := NewDemoSource().GenerateHistory("TSLA", 252)
	var prev time.Time
	for i, bar := range series.Bars {
		if bar.High < bar.Open || bar.High < bar.Close {
			t.Fatalf("bar %d: high %v below open/close %v/%v", i, bar.High, bar.Open, bar.Close)
		}
		if bar.Low > bar.Open || bar.Low > bar.Close {
			t.Fatalf("bar %d: low %v above open/close %v/%v", i, bar.Low, bar.Open, bar.Close)
		}
		if bar.Close <= 0 || bar.Volume <= 0 {
			t.Fatalf("bar %d: non-positive close %v or volume %v", i, bar.Close, bar.Volume)
		}
		if util.IsWeekend(bar.Date) {
			t.Fatalf("bar %d: dated on a weekend: %v", i, bar.Date)
		}
		if !bar.Date.After(prev) {
			t.Fatalf("bar %d: dates not strictly increasing: %v then %v", i, prev, bar.Date)
		}
		prev = bar.Date
	}
}

func TestDemoFundamentalsFromSeries(t *testing.T) {
	d := NewDemoSource()
	series := d.GenerateHistory("NVDA", 252)
	f := d.GenerateFundamentals("NVDA", series)
	if f.Symbol != "NVDA" {
		t.Fatalf("symbol = %q", f.Symbol)
	}
	if f.CMP != series.LastClose() {
		t.Fatalf("cmp = %v, want last close %v", f.CMP, series.LastClose())
	}
	if f.Week52High < f.CMP || f.Week52Low > f.CMP {
		t.Fatalf("52-week range [%v, %v] excludes current price %v", f.Week52Low, f.Week52High, f.CMP)
	}
	if f.PreviousClose == 0 || f.PERatio <= 0 {
		t.Fatalf("derived fields missing: prev=%v pe=%v", f.PreviousClose, f.PERatio)
	}
	wantChange := f.CMP - f.PreviousClose
	if f.Change != wantChange {
		t.Fatalf("change = %v, want %v", f.Change, wantChange)
	}
}

// Ratio fields are on the same percent scale the live metric endpoint uses,
// so summary thresholds like "ROE > 15" apply to demo data too.
func TestDemoFundamentalsPercentScale(t *testing.T) {
	d := NewDemoSource()
	for _, sym := range []string{"AAPL", "NVDA", "KO", "XOM"} {
		f := d.GenerateFundamentals(sym, d.GenerateHistory(sym, 60))
		if f.ROE < 5 || f.ROE > 35 {
			t.Errorf("%s: roe = %v, want percent in [5, 35]", sym, f.ROE)
		}
		if f.ProfitMargin < 0 || f.ProfitMargin > 30 {
			t.Errorf("%s: profit margin = %v, want percent in [0, 30]", sym, f.ProfitMargin)
		}
		if f.RevenueGrowth < -5 || f.RevenueGrowth > 20 {
			t.Errorf("%s: revenue growth = %v, want percent in [-5, 20]", sym, f.RevenueGrowth)
		}
	}
}
