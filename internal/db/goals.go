package db

import "time"

// 各分类目标的默认值，用户尚未保存目标时使用
const (
	DefaultExerciseGoalMinutes  = 30
	DefaultExerciseGoalSessions = 3
	DefaultNutritionGoalMeals   = 3
	DefaultSleepGoalHours       = 8.0
	DefaultSleepIdealBedTime    = "22:30"
	DefaultSleepIdealWakeTime   = "06:30"
	DefaultHydrationGoalCups    = 8
)

// UserGoals 合并保存所有分类的目标与连胜，每个用户一行（user_id 为主键，upsert 冲突目标）
type UserGoals struct {
	UserID string `gorm:"primaryKey;size:36"`

	ExerciseGoalMinutes   int `gorm:"not null;default:30"`
	ExerciseGoalSessions  int `gorm:"not null;default:3"`
	CurrentStreakExercise int `gorm:"not null;default:0"`

	NutritionGoalMeals     int `gorm:"not null;default:3"`
	CurrentStreakNutrition int `gorm:"not null;default:0"`

	SleepGoalHours     float64 `gorm:"not null;default:8"`
	SleepIdealBedTime  string  `gorm:"size:5;not null;default:'22:30'"`
	SleepIdealWakeTime string  `gorm:"size:5;not null;default:'06:30'"`
	CurrentStreakSleep int     `gorm:"not null;default:0"`

	HydrationGoalCups      int `gorm:"not null;default:8"`
	CurrentStreakHydration int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserGoals) TableName() string {
	return "user_goals"
}

// DefaultUserGoals 返回填满默认值的目标行。
func DefaultUserGoals(userID string) UserGoals {
	return UserGoals{
		UserID:               userID,
		ExerciseGoalMinutes:  DefaultExerciseGoalMinutes,
		ExerciseGoalSessions: DefaultExerciseGoalSessions,
		NutritionGoalMeals:   DefaultNutritionGoalMeals,
		SleepGoalHours:       DefaultSleepGoalHours,
		SleepIdealBedTime:    DefaultSleepIdealBedTime,
		SleepIdealWakeTime:   DefaultSleepIdealWakeTime,
		HydrationGoalCups:    DefaultHydrationGoalCups,
	}
}
