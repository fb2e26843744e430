package metric

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidClock 在 HH:MM 格式不合法时返回
	ErrInvalidClock = errors.New("invalid clock time")
	// ErrNonPositiveDuration 在计算出的睡眠时长不大于 0 时返回
	ErrNonPositiveDuration = errors.New("sleep duration must be positive")
)

const minutesPerDay = 24 * 60

// ClockMinutes 将 HH:MM 转为自零点起的分钟数。
func ClockMinutes(value string) (int, error) {
	hours, minutes, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 || m > 59 || len(minutes) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return h*60 + m, nil
}

// SleepDuration 计算入睡到醒来的小时数，保留一位小数。
// 醒来时间早于入睡时间视为跨越午夜。
func SleepDuration(sleep, wake string) (float64, error) {
	start, err := ClockMinutes(sleep)
	if err != nil {
		return 0, err
	}
	end, err := ClockMinutes(wake)
	if err != nil {
		return 0, err
	}

	if end < start {
		end += minutesPerDay
	}

	hours := RoundTenth(float64(end-start) / 60)
	if hours <= 0 {
		return 0, ErrNonPositiveDuration
	}
	return hours, nil
}

// RoundTenth 四舍五入到一位小数。
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
