package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/allive/internal/db"
	"github.com/allive/internal/metric"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakWindowDays 是计算连胜时回看的天数（含今天）
const StreakWindowDays = 90

// Progress 是当日进度
type Progress struct {
	Current float64 `json:"current"`
	Goal    float64 `json:"goal"`
	Streak  int     `json:"streak"`
}

// DashboardStats 汇总分类页的派生统计
type DashboardStats struct {
	TodayCount    int                `json:"today_count"`
	LongestStreak int                `json:"longest_streak"`
	WeekTotal     float64            `json:"week_total"`
	Week          []metric.DayBucket `json:"week"`
}

// Dashboard 是渲染一个分类页所需的全部数据
type Dashboard[E any, G any] struct {
	Category string         `json:"category"`
	Today    string         `json:"today"`
	Progress Progress       `json:"progress"`
	History  []E            `json:"history"`
	Goals    G              `json:"goals"`
	Stats    DashboardStats `json:"stats"`
}

// Tracker 为任意分类实现看板读取、目标读写与记录新增
type Tracker[E any, G any] struct {
	db       *gorm.DB
	clock    metric.Clock
	category Category[E, G]
}

// NewTracker 构造 Tracker
func NewTracker[E any, G any](gdb *gorm.DB, clock metric.Clock, category Category[E, G]) *Tracker[E, G] {
	if clock == nil {
		clock = metric.SystemClock{}
	}
	return &Tracker[E, G]{db: gdb, clock: clock, category: category}
}

// Category 返回分类定义
func (t *Tracker[E, G]) Category() Category[E, G] {
	return t.category
}

// Dashboard 并发读取今日记录、最近历史、目标与连胜窗口，汇总后返回
func (t *Tracker[E, G]) Dashboard(ctx context.Context, userID string) (*Dashboard[E, G], error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	now := t.clock.Now()
	today := metric.TodayString(now)
	cat := t.category

	var (
		todayRows  []E
		history    []E
		windowRows []E
		goals      G
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return t.scoped(gctx, userID).
			Where(cat.DateColumn+" = ?", today).
			Find(&todayRows).Error
	})
	g.Go(func() error {
		return t.scoped(gctx, userID).
			Order(cat.DateColumn + " DESC").
			Order("created_at DESC").
			Order("id DESC").
			Limit(cat.HistoryLimit).
			Find(&history).Error
	})
	g.Go(func() error {
		var err error
		goals, err = t.loadGoals(gctx, userID)
		return err
	})
	g.Go(func() error {
		return t.scoped(gctx, userID).
			Where(cat.DateColumn+" >= ?", metric.DaysAgo(now, StreakWindowDays-1)).
			Find(&windowRows).Error
	})
	if err := g.Wait(); err != nil {
		return nil, storageErr("load "+cat.Name+" dashboard", err)
	}

	current := 0.0
	for _, row := range todayRows {
		current += cat.Measure(row)
	}

	qualifying := t.qualifyingDays(windowRows, goals)
	chart := make([]metric.Point, 0, len(windowRows))
	for _, row := range windowRows {
		chart = append(chart, metric.Point{Date: cat.Day(row), Value: cat.Chart(row)})
	}
	week := metric.WeeklyBuckets(now, chart)
	weekTotal := 0.0
	for _, bucket := range week {
		weekTotal += bucket.Total
	}

	if history == nil {
		history = []E{}
	}

	return &Dashboard[E, G]{
		Category: cat.Name,
		Today:    today,
		Progress: Progress{
			Current: metric.RoundTenth(current),
			Goal:    cat.Target(goals),
			Streak:  metric.CurrentStreak(qualifying, now),
		},
		History: history,
		Goals:   goals,
		Stats: DashboardStats{
			TodayCount:    len(todayRows),
			LongestStreak: metric.LongestStreak(qualifying),
			WeekTotal:     metric.RoundTenth(weekTotal),
			Week:          week,
		},
	}, nil
}

// Goals 读取用户目标，尚未保存时返回默认值
func (t *Tracker[E, G]) Goals(ctx context.Context, userID string) (G, error) {
	if userID == "" {
		var zero G
		return zero, ErrUnauthenticated
	}

	goals, err := t.loadGoals(ctx, userID)
	if err != nil {
		return goals, storageErr("load "+t.category.Name+" goals", err)
	}
	return goals, nil
}

// SaveGoals 以 user_id 为冲突目标 upsert 本分类的目标列，其他分类的列保持不变
func (t *Tracker[E, G]) SaveGoals(ctx context.Context, userID string, goals G) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if err := t.category.ValidateGoals(goals); err != nil {
		return err
	}

	row := db.DefaultUserGoals(userID)
	t.category.ApplyGoals(&row, goals)

	columns := append(append([]string{}, t.category.GoalColumns...), "updated_at")
	if err := t.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&row).Error; err != nil {
		slog.ErrorContext(ctx, "save goals failed",
			slog.String("category", t.category.Name),
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return storageErr("save "+t.category.Name+" goals", err)
	}
	return nil
}

// AddEntry 校验表单、计算派生字段并以今天为日期插入新记录
func (t *Tracker[E, G]) AddEntry(ctx context.Context, userID string, fields Fields) (*E, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	now := t.clock.Now()
	entry, err := t.category.Build(userID, metric.TodayString(now), fields)
	if err != nil {
		return nil, err
	}

	if err := t.db.WithContext(ctx).Create(&entry).Error; err != nil {
		slog.ErrorContext(ctx, "insert entry failed",
			slog.String("category", t.category.Name),
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return nil, storageErr("add "+t.category.Name+" entry", err)
	}

	if err := t.persistStreak(ctx, userID, now); err != nil {
		slog.WarnContext(ctx, "persist streak failed",
			slog.String("category", t.category.Name),
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	return &entry, nil
}

// Streak 计算截至今天的连胜
func (t *Tracker[E, G]) Streak(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}

	now := t.clock.Now()
	goals, err := t.loadGoals(ctx, userID)
	if err != nil {
		return 0, storageErr("load "+t.category.Name+" goals", err)
	}
	rows, err := t.window(ctx, userID, now)
	if err != nil {
		return 0, storageErr("load "+t.category.Name+" streak window", err)
	}
	return metric.CurrentStreak(t.qualifyingDays(rows, goals), now), nil
}

// Between 返回日期区间 [start, end] 内的记录，按日期升序
func (t *Tracker[E, G]) Between(ctx context.Context, userID, start, end string) ([]E, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	var rows []E
	if err := t.scoped(ctx, userID).
		Where(t.category.DateColumn+" BETWEEN ? AND ?", start, end).
		Order(t.category.DateColumn + " ASC").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, storageErr("list "+t.category.Name+" entries", err)
	}
	if rows == nil {
		rows = []E{}
	}
	return rows, nil
}

func (t *Tracker[E, G]) persistStreak(ctx context.Context, userID string, now time.Time) error {
	goals, err := t.loadGoals(ctx, userID)
	if err != nil {
		return err
	}
	rows, err := t.window(ctx, userID, now)
	if err != nil {
		return err
	}

	row := db.DefaultUserGoals(userID)
	t.category.SetStreak(&row, metric.CurrentStreak(t.qualifyingDays(rows, goals), now))

	return t.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{t.category.StreakColumn, "updated_at"}),
	}).Create(&row).Error
}

func (t *Tracker[E, G]) window(ctx context.Context, userID string, now time.Time) ([]E, error) {
	var rows []E
	err := t.scoped(ctx, userID).
		Where(t.category.DateColumn+" >= ?", metric.DaysAgo(now, StreakWindowDays-1)).
		Find(&rows).Error
	return rows, err
}

func (t *Tracker[E, G]) qualifyingDays(rows []E, goals G) metric.DaySet {
	totals := make(map[string]float64)
	for _, row := range rows {
		totals[t.category.Day(row)] += t.category.Measure(row)
	}

	days := metric.NewDaySet()
	for day, total := range totals {
		if t.category.qualifies(total, goals) {
			days[day] = struct{}{}
		}
	}
	return days
}

func (t *Tracker[E, G]) loadGoals(ctx context.Context, userID string) (G, error) {
	var row db.UserGoals
	err := t.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t.category.DefaultGoals(), nil
	}
	if err != nil {
		var zero G
		return zero, err
	}
	return t.category.GoalsFrom(row), nil
}

// scoped 返回按 user_id 过滤的查询，所有读取都必须经过它
func (t *Tracker[E, G]) scoped(ctx context.Context, userID string) *gorm.DB {
	var model E
	return t.db.WithContext(ctx).Model(&model).Where("user_id = ?", userID)
}
