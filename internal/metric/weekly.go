package metric

import "time"

// WeekDays 是周图表覆盖的天数（含今天）。
const WeekDays = 7

// Point 是一条带日期的度量值。
type Point struct {
	Date  string
	Value float64
}

// DayBucket 是周图表中的单日汇总。
type DayBucket struct {
	Date    string       `json:"date"`
	Weekday time.Weekday `json:"weekday"`
	Total   float64      `json:"total"`
}

// WeekStart 返回周窗口第一天（今天往前 6 天）的日期键。
func WeekStart(today time.Time) string {
	return DaysAgo(today, WeekDays-1)
}

// WeeklyBuckets 将度量按最近 7 个日历日（含今天）求和，按日期升序返回；
// 无记录的日子为 0，窗口外的点被忽略。
func WeeklyBuckets(today time.Time, points []Point) []DayBucket {
	start := StartOfDay(today).AddDate(0, 0, -(WeekDays - 1))

	buckets := make([]DayBucket, WeekDays)
	index := make(map[string]int, WeekDays)
	for i := range buckets {
		day := start.AddDate(0, 0, i)
		key := day.Format(DateFormat)
		buckets[i] = DayBucket{Date: key, Weekday: day.Weekday()}
		index[key] = i
	}

	for _, p := range points {
		if i, ok := index[p.Date]; ok {
			buckets[i].Total += p.Value
		}
	}

	for i := range buckets {
		buckets[i].Total = RoundTenth(buckets[i].Total)
	}
	return buckets
}

// SumByDay 按日期键累加度量值。
func SumByDay(points []Point) map[string]float64 {
	totals := make(map[string]float64)
	for _, p := range points {
		totals[p.Date] += p.Value
	}
	return totals
}
