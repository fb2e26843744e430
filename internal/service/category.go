package service

import (
	"strings"

	"github.com/allive/internal/db"
	"github.com/allive/internal/locale"
)

// Fields 是一次提交的表单字段
type Fields map[string]string

// Get 返回第一个非空字段值，兼容不同表单命名
func (f Fields) Get(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(f[key]); value != "" {
			return value
		}
	}
	return ""
}

// Category 描述一个习惯分类：记录结构 E、目标结构 G，以及校验、度量与连胜判定
type Category[E any, G any] struct {
	Name         string
	DateColumn   string
	HistoryLimit int
	StreakColumn string
	GoalColumns  []string

	Build func(userID, day string, fields Fields) (E, error)
	Day   func(E) string
	// Measure 是单条记录对当日进度的贡献，Chart 是对周图表的贡献
	Measure func(E) float64
	Chart   func(E) float64

	DefaultGoals  func() G
	GoalsFrom     func(db.UserGoals) G
	ApplyGoals    func(*db.UserGoals, G)
	ValidateGoals func(G) error
	Target        func(G) float64
	SetStreak     func(*db.UserGoals, int)
	// Qualifies 判定某天是否计入连胜，为空时使用“达成当日目标”
	Qualifies func(dayTotal float64, goals G) bool

	EntrySaved locale.Text
	GoalsSaved locale.Text
}

func (c Category[E, G]) qualifies(total float64, goals G) bool {
	if c.Qualifies != nil {
		return c.Qualifies(total, goals)
	}
	return total > 0 && total >= c.Target(goals)
}
