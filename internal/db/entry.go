package db

import "time"

// 运动强度
const (
	IntensityLow      = "baja"
	IntensityModerate = "moderada"
	IntensityHigh     = "alta"
)

// 餐次
const (
	MealBreakfast = "desayuno"
	MealLunch     = "almuerzo"
	MealDinner    = "cena"
	MealSnack     = "snack"
)

// 睡眠质量
const (
	QualityBad       = "mala"
	QualityFair      = "regular"
	QualityGood      = "buena"
	QualityExcellent = "excelente"
)

// ExerciseEntry 记录一次运动，创建后不可修改
type ExerciseEntry struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"size:36;not null;index:idx_exercise_user_date" json:"user_id"`
	EntryDate       string    `gorm:"size:10;not null;index:idx_exercise_user_date" json:"entry_date"`
	ExerciseType    string    `gorm:"not null" json:"exercise_type"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Intensity       string    `gorm:"size:16;not null" json:"intensity"`
	CreatedAt       time.Time `json:"created_at"`
}

func (ExerciseEntry) TableName() string {
	return "exercise_entries"
}

// NutritionEntry 记录一餐
type NutritionEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"size:36;not null;index:idx_nutrition_user_date" json:"user_id"`
	EntryDate   string    `gorm:"size:10;not null;index:idx_nutrition_user_date" json:"entry_date"`
	MealType    string    `gorm:"size:16;not null" json:"meal_type"`
	Description string    `json:"description"`
	IsHealthy   bool      `json:"is_healthy"`
	CreatedAt   time.Time `json:"created_at"`
}

func (NutritionEntry) TableName() string {
	return "nutrition_entries"
}

// SleepEntry 记录一次睡眠，TotalHours 由入睡/醒来时间推导
type SleepEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"size:36;not null;index:idx_sleep_user_date" json:"user_id"`
	SleepDate  string    `gorm:"size:10;not null;index:idx_sleep_user_date" json:"sleep_date"`
	TimeSleep  string    `gorm:"size:5;not null" json:"time_sleep"`
	TimeWake   string    `gorm:"size:5;not null" json:"time_wake"`
	TotalHours float64   `gorm:"not null" json:"total_hours"`
	Quality    string    `gorm:"size:16;not null" json:"quality"`
	CreatedAt  time.Time `json:"created_at"`
}

func (SleepEntry) TableName() string {
	return "sleep_entries"
}

// HydrationEntry 记录饮水，Quantity 以杯计
type HydrationEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"size:36;not null;index:idx_hydration_user_date" json:"user_id"`
	EntryDate    string    `gorm:"size:10;not null;index:idx_hydration_user_date" json:"entry_date"`
	BeverageType string    `json:"beverage_type"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	CreatedAt    time.Time `json:"created_at"`
}

func (HydrationEntry) TableName() string {
	return "hydration_entries"
}
