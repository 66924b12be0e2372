package util

import "time"

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// LastTradingDay returns t truncated to a day, stepped back to the most
// recent weekday. Exchange holidays are not modeled.
func LastTradingDay(t time.Time) time.Time {
	day := t.UTC().Truncate(24 * time.Hour)
	for IsWeekend(day) {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// CalendarSpanDays returns how many calendar days a window must cover to
// contain tradingDays trading days, with slack for holidays.
func CalendarSpanDays(tradingDays int) int {
	return tradingDays*7/5 + 10
}
