package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/allive/internal/db"
	"github.com/allive/internal/metric"
	"golang.org/x/sync/errgroup"
)

const monthFormat = "2006-01"

// CategoryCompletion 是某分类今日的完成度
type CategoryCompletion struct {
	Category string  `json:"category"`
	Current  float64 `json:"current"`
	Goal     float64 `json:"goal"`
	Percent  int     `json:"percent"`
}

// Overview 是统计页首屏数据
type Overview struct {
	Today      string               `json:"today"`
	Categories []CategoryCompletion `json:"categories"`
	Overall    int                  `json:"overall"`
}

// WeeklySeries 是四个分类最近 7 天的序列
type WeeklySeries struct {
	Exercise  []metric.DayBucket `json:"exercise"`
	Nutrition []metric.DayBucket `json:"nutrition"`
	Sleep     []metric.DayBucket `json:"sleep"`
	Hydration []metric.DayBucket `json:"hydration"`
}

// DayActivities 是日历某天的全部记录
type DayActivities struct {
	Date      string              `json:"date"`
	Exercise  []db.ExerciseEntry  `json:"exercise"`
	Nutrition []db.NutritionEntry `json:"nutrition"`
	Sleep     []db.SleepEntry     `json:"sleep"`
	Hydration []db.HydrationEntry `json:"hydration"`
}

// CalendarDay 标记某天哪些分类有记录
type CalendarDay struct {
	Date      string `json:"date"`
	Exercise  bool   `json:"exercise"`
	Nutrition bool   `json:"nutrition"`
	Sleep     bool   `json:"sleep"`
	Hydration bool   `json:"hydration"`
}

// Calendar 是一个月内有记录的日期
type Calendar struct {
	Month string        `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// StatsService 跨分类汇总统计
type StatsService struct {
	trackers *Trackers
	clock    metric.Clock
}

// NewStatsService 构造 StatsService
func NewStatsService(trackers *Trackers, clock metric.Clock) *StatsService {
	if clock == nil {
		clock = metric.SystemClock{}
	}
	return &StatsService{trackers: trackers, clock: clock}
}

// Overview 计算今日各分类完成百分比（封顶 100）及其平均值
func (s *StatsService) Overview(ctx context.Context, userID string) (*Overview, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	today := metric.TodayString(s.clock.Now())
	day, err := s.activities(ctx, userID, today, today)
	if err != nil {
		return nil, err
	}

	var (
		exerciseGoals  ExerciseGoals
		sleepGoals     SleepGoals
		hydrationGoals HydrationGoals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		exerciseGoals, err = s.trackers.Exercise.Goals(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		sleepGoals, err = s.trackers.Sleep.Goals(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		hydrationGoals, err = s.trackers.Hydration.Goals(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	minutes, hours, cups, healthy := 0.0, 0.0, 0.0, 0.0
	for _, e := range day.Exercise {
		minutes += float64(e.DurationMinutes)
	}
	for _, e := range day.Sleep {
		hours += e.TotalHours
	}
	for _, e := range day.Hydration {
		cups += float64(e.Quantity)
	}
	for _, e := range day.Nutrition {
		if e.IsHealthy {
			healthy++
		}
	}

	completions := []CategoryCompletion{
		completion(CategoryExercise, minutes, float64(exerciseGoals.DailyMinutes)),
		completion(CategoryNutrition, healthy, float64(len(day.Nutrition))),
		completion(CategorySleep, metric.RoundTenth(hours), sleepGoals.TargetHours),
		completion(CategoryHydration, cups, float64(hydrationGoals.CupsPerDay)),
	}

	sum := 0
	for _, c := range completions {
		sum += c.Percent
	}

	return &Overview{
		Today:      today,
		Categories: completions,
		Overall:    sum / len(completions),
	}, nil
}

// Weekly 返回四个分类最近 7 天的图表序列
func (s *StatsService) Weekly(ctx context.Context, userID string) (*WeeklySeries, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	now := s.clock.Now()
	rows, err := s.activities(ctx, userID, metric.WeekStart(now), metric.TodayString(now))
	if err != nil {
		return nil, err
	}

	return &WeeklySeries{
		Exercise:  metric.WeeklyBuckets(now, points(rows.Exercise, s.trackers.Exercise.category)),
		Nutrition: metric.WeeklyBuckets(now, points(rows.Nutrition, s.trackers.Nutrition.category)),
		Sleep:     metric.WeeklyBuckets(now, points(rows.Sleep, s.trackers.Sleep.category)),
		Hydration: metric.WeeklyBuckets(now, points(rows.Hydration, s.trackers.Hydration.category)),
	}, nil
}

// DayActivities 返回指定日期（YYYY-MM-DD）所有分类的记录
func (s *StatsService) DayActivities(ctx context.Context, userID, date string) (*DayActivities, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	date = strings.TrimSpace(date)
	if _, err := metric.ParseDate(date); err != nil {
		return nil, invalid("date", "Fecha no válida (AAAA-MM-DD).", "Invalid date (YYYY-MM-DD).")
	}
	return s.activities(ctx, userID, date, date)
}

// Calendar 返回某月（YYYY-MM，为空时取当月）有记录的日期及分类标记
func (s *StatsService) Calendar(ctx context.Context, userID, month string) (*Calendar, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	month = strings.TrimSpace(month)
	if month == "" {
		month = s.clock.Now().Format(monthFormat)
	}
	first, err := time.ParseInLocation(monthFormat, month, time.Local)
	if err != nil {
		return nil, invalid("month", "Mes no válido (AAAA-MM).", "Invalid month (YYYY-MM).")
	}
	last := first.AddDate(0, 1, -1)

	rows, err := s.activities(ctx, userID, first.Format(metric.DateFormat), last.Format(metric.DateFormat))
	if err != nil {
		return nil, err
	}

	days := make(map[string]*CalendarDay)
	mark := func(date string) *CalendarDay {
		day, ok := days[date]
		if !ok {
			day = &CalendarDay{Date: date}
			days[date] = day
		}
		return day
	}
	for _, e := range rows.Exercise {
		mark(e.EntryDate).Exercise = true
	}
	for _, e := range rows.Nutrition {
		mark(e.EntryDate).Nutrition = true
	}
	for _, e := range rows.Sleep {
		mark(e.SleepDate).Sleep = true
	}
	for _, e := range rows.Hydration {
		mark(e.EntryDate).Hydration = true
	}

	calendar := &Calendar{Month: month, Days: make([]CalendarDay, 0, len(days))}
	for _, day := range days {
		calendar.Days = append(calendar.Days, *day)
	}
	sort.Slice(calendar.Days, func(i, j int) bool {
		return calendar.Days[i].Date < calendar.Days[j].Date
	})
	return calendar, nil
}

func (s *StatsService) activities(ctx context.Context, userID, start, end string) (*DayActivities, error) {
	result := &DayActivities{Date: start}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.Exercise, err = s.trackers.Exercise.Between(gctx, userID, start, end)
		return err
	})
	g.Go(func() (err error) {
		result.Nutrition, err = s.trackers.Nutrition.Between(gctx, userID, start, end)
		return err
	})
	g.Go(func() (err error) {
		result.Sleep, err = s.trackers.Sleep.Between(gctx, userID, start, end)
		return err
	})
	g.Go(func() (err error) {
		result.Hydration, err = s.trackers.Hydration.Between(gctx, userID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func points[E any, G any](rows []E, category Category[E, G]) []metric.Point {
	out := make([]metric.Point, 0, len(rows))
	for _, row := range rows {
		out = append(out, metric.Point{Date: category.Day(row), Value: category.Chart(row)})
	}
	return out
}

func completion(name string, current, goal float64) CategoryCompletion {
	c := CategoryCompletion{Category: name, Current: current, Goal: goal}
	if goal > 0 {
		c.Percent = int(current / goal * 100)
		if c.Percent > 100 {
			c.Percent = 100
		}
	}
	return c
}
