package util

import (
	"testing"
	"time"
)

func TestIsWeekend(t *testing.T) {
	sat := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if !IsWeekend(sat) {
		t.Errorf("expected %v to be a weekend", sat)
	}
	mon := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	if IsWeekend(mon) {
		t.Errorf("expected %v to be a weekday", mon)
	}
}

func TestLastTradingDay(t *testing.T) {
	// Sunday rolls back to Friday
	sun := time.Date(2024, 6, 2, 9, 30, 0, 0, time.UTC)
	got := LastTradingDay(sun)
	want := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LastTradingDay(sunday) = %v, want %v", got, want)
	}

	// Wednesday stays Wednesday, time truncated
	wed := time.Date(2024, 6, 5, 15, 45, 0, 0, time.UTC)
	got = LastTradingDay(wed)
	want = time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LastTradingDay(wednesday) = %v, want %v", got, want)
	}
}

func TestCalendarSpanDays(t *testing.T) {
	if got := CalendarSpanDays(252); got != 362 {
		t.Errorf("CalendarSpanDays(252) = %d, want 362", got)
	}
	if got := CalendarSpanDays(30); got != 52 {
		t.Errorf("CalendarSpanDays(30) = %d, want 52", got)
	}
}

func TestNormalizeSymbol(t *testing.T) {
	if got := NormalizeSymbol("  aapl "); got != "AAPL" {
		t.Errorf("NormalizeSymbol = %q, want AAPL", got)
	}
}
