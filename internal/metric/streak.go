package metric

import (
	"slices"
	"time"
)

// DaySet 是达标日期键的集合。
type DaySet map[string]struct{}

// NewDaySet 由日期键列表构造集合，重复项自动合并。
func NewDaySet(days ...string) DaySet {
	set := make(DaySet, len(days))
	for _, day := range days {
		set[day] = struct{}{}
	}
	return set
}

func (s DaySet) Has(day string) bool {
	_, ok := s[day]
	return ok
}

// CurrentStreak 计算截至今天的连续天数：今天不在集合中则为 0，
// 否则从今天起逐日回溯，遇到第一个缺口即停止。
func CurrentStreak(days DaySet, today time.Time) int {
	cursor := StartOfDay(today)
	if !days.Has(cursor.Format(DateFormat)) {
		return 0
	}

	streak := 0
	for days.Has(cursor.Format(DateFormat)) {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak 返回集合中最长的连续天数。
func LongestStreak(days DaySet) int {
	if len(days) == 0 {
		return 0
	}

	dates := make([]time.Time, 0, len(days))
	for day := range days {
		parsed, err := ParseDate(day)
		if err != nil {
			continue
		}
		dates = append(dates, parsed)
	}
	if len(dates) == 0 {
		return 0
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	longest, current := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].AddDate(0, 0, 1).Equal(dates[i]) {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}
