package service

import (
	"strings"

	"github.com/allive/internal/db"
	"github.com/allive/internal/locale"
)

// NutritionGoals 是饮食分类的目标
type NutritionGoals struct {
	MealsPerDay int `json:"meals_per_day" form:"meals_per_day"`
}

var mealTypes = map[string]struct{}{
	db.MealBreakfast: {},
	db.MealLunch:     {},
	db.MealDinner:    {},
	db.MealSnack:     {},
}

// NutritionCategory 定义饮食记录：进度按餐次计数，周图表统计健康餐
func NutritionCategory() Category[db.NutritionEntry, NutritionGoals] {
	return Category[db.NutritionEntry, NutritionGoals]{
		Name:         CategoryNutrition,
		DateColumn:   "entry_date",
		HistoryLimit: 10,
		StreakColumn: "current_streak_nutrition",
		GoalColumns:  []string{"nutrition_goal_meals"},

		Build:   buildNutritionEntry,
		Day:     func(e db.NutritionEntry) string { return e.EntryDate },
		Measure: func(db.NutritionEntry) float64 { return 1 },
		Chart: func(e db.NutritionEntry) float64 {
			if e.IsHealthy {
				return 1
			}
			return 0
		},

		DefaultGoals: func() NutritionGoals {
			return NutritionGoals{MealsPerDay: db.DefaultNutritionGoalMeals}
		},
		GoalsFrom: func(row db.UserGoals) NutritionGoals {
			return NutritionGoals{MealsPerDay: row.NutritionGoalMeals}
		},
		ApplyGoals: func(row *db.UserGoals, g NutritionGoals) {
			row.NutritionGoalMeals = g.MealsPerDay
		},
		ValidateGoals: func(g NutritionGoals) error {
			if g.MealsPerDay < 1 || g.MealsPerDay > 10 {
				return invalid("meals_per_day", "Las comidas diarias deben estar entre 1 y 10.", "Meals per day must be between 1 and 10.")
			}
			return nil
		},
		Target:    func(g NutritionGoals) float64 { return float64(g.MealsPerDay) },
		SetStreak: func(row *db.UserGoals, n int) { row.CurrentStreakNutrition = n },

		EntrySaved: locale.Text{ES: "Comida registrada exitosamente.", EN: "Meal logged successfully."},
		GoalsSaved: locale.Text{ES: "Metas de nutrición guardadas.", EN: "Nutrition goals saved."},
	}
}

func buildNutritionEntry(userID, day string, fields Fields) (db.NutritionEntry, error) {
	mealType := strings.ToLower(fields.Get("meal_type", "mealType"))
	if mealType == "" {
		mealType = db.MealBreakfast
	}
	if _, ok := mealTypes[mealType]; !ok {
		return db.NutritionEntry{}, invalid("meal_type", "Tipo de comida no válido.", "Invalid meal type.")
	}

	return db.NutritionEntry{
		UserID:      userID,
		EntryDate:   day,
		MealType:    mealType,
		Description: cleanText(fields.Get("description"), 500),
		IsHealthy:   checkbox(fields.Get("is_healthy", "isHealthy")),
	}, nil
}

// checkbox 解析 HTML 复选框的取值
func checkbox(value string) bool {
	switch strings.ToLower(value) {
	case "on", "true", "1":
		return true
	default:
		return false
	}
}
