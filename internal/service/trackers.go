package service

import (
	"github.com/allive/internal/db"
	"github.com/allive/internal/metric"
	"gorm.io/gorm"
)

// 分类名，同时用作提示文件名与日志字段
const (
	CategoryExercise  = "exercise"
	CategoryNutrition = "nutrition"
	CategorySleep     = "sleep"
	CategoryHydration = "hydration"
)

// Categories 按页面顺序列出全部分类
var Categories = []string{CategoryExercise, CategoryNutrition, CategorySleep, CategoryHydration}

// Trackers 持有四个分类的 Tracker，共享同一数据库与时钟
type Trackers struct {
	Exercise  *Tracker[db.ExerciseEntry, ExerciseGoals]
	Nutrition *Tracker[db.NutritionEntry, NutritionGoals]
	Sleep     *Tracker[db.SleepEntry, SleepGoals]
	Hydration *Tracker[db.HydrationEntry, HydrationGoals]
}

// NewTrackers 构造全部分类的 Tracker
func NewTrackers(gdb *gorm.DB, clock metric.Clock) *Trackers {
	return &Trackers{
		Exercise:  NewTracker(gdb, clock, ExerciseCategory()),
		Nutrition: NewTracker(gdb, clock, NutritionCategory()),
		Sleep:     NewTracker(gdb, clock, SleepCategory()),
		Hydration: NewTracker(gdb, clock, HydrationCategory()),
	}
}
