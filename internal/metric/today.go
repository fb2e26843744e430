package metric

import "time"

// DateFormat 是所有“按天”记录使用的日期键格式。
const DateFormat = "2006-01-02"

// Clock 提供当前时间，测试中可替换为固定时钟。
type Clock interface {
	Now() time.Time
}

// SystemClock 使用服务器本地时间，不做用户时区换算。
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock 总是返回同一时刻。
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// TodayString 返回 now 所在日历日的日期键。
func TodayString(now time.Time) string {
	return now.Format(DateFormat)
}

// StartOfDay 将时间归一到当天零点，保留时区。
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysAgo 返回 now 往前 n 天的日期键。
func DaysAgo(now time.Time, n int) string {
	return StartOfDay(now).AddDate(0, 0, -n).Format(DateFormat)
}

// ParseDate 解析 YYYY-MM-DD，按服务器本地时区。
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, value, time.Local)
}
