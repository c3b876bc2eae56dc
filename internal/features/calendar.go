package features

import "time"

var weekdayColumns = []struct {
	name string
	day  time.Weekday
}{
	{"is_monday", time.Monday},
	{"is_tuesday", time.Tuesday},
	{"is_wednesday", time.Wednesday},
	{"is_thursday", time.Thursday},
	{"is_friday", time.Friday},
}

// dayOfWeek numbers weekdays from Monday=0 to Sunday=6
func dayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func addCalendarFeatures(f *frame) {
	n := f.len()
	dates := make([]time.Time, n)
	for i, bar := range f.bars {
		dates[i] = bar.Date
	}

	f.set("day_of_week", series(n, func(i int) float64 { return float64(dayOfWeek(dates[i])) }))
	for _, col := range weekdayColumns {
		day := col.day
		f.set(col.name, flag(n, func(i int) bool { return dates[i].Weekday() == day }))
	}
	f.set("week_of_month", series(n, func(i int) float64 { return float64((dates[i].Day()-1)/7 + 1) }))
	f.set("month", series(n, func(i int) float64 { return float64(dates[i].Month()) }))
}
