package service

import (
	"strconv"

	"github.com/allive/internal/db"
	"github.com/allive/internal/locale"
)

// HydrationGoals 是饮水分类的目标
type HydrationGoals struct {
	CupsPerDay int `json:"cups_per_day" form:"cups_per_day"`
}

const defaultBeverage = "agua"

// HydrationCategory 定义饮水记录，进度以杯计
func HydrationCategory() Category[db.HydrationEntry, HydrationGoals] {
	return Category[db.HydrationEntry, HydrationGoals]{
		Name:         CategoryHydration,
		DateColumn:   "entry_date",
		HistoryLimit: 10,
		StreakColumn: "current_streak_hydration",
		GoalColumns:  []string{"hydration_goal_cups"},

		Build:   buildHydrationEntry,
		Day:     func(e db.HydrationEntry) string { return e.EntryDate },
		Measure: func(e db.HydrationEntry) float64 { return float64(e.Quantity) },
		Chart:   func(e db.HydrationEntry) float64 { return float64(e.Quantity) },

		DefaultGoals: func() HydrationGoals {
			return HydrationGoals{CupsPerDay: db.DefaultHydrationGoalCups}
		},
		GoalsFrom: func(row db.UserGoals) HydrationGoals {
			return HydrationGoals{CupsPerDay: row.HydrationGoalCups}
		},
		ApplyGoals: func(row *db.UserGoals, g HydrationGoals) {
			row.HydrationGoalCups = g.CupsPerDay
		},
		ValidateGoals: func(g HydrationGoals) error {
			if g.CupsPerDay < 1 || g.CupsPerDay > 40 {
				return invalid("cups_per_day", "Los vasos diarios deben estar entre 1 y 40.", "Cups per day must be between 1 and 40.")
			}
			return nil
		},
		Target:    func(g HydrationGoals) float64 { return float64(g.CupsPerDay) },
		SetStreak: func(row *db.UserGoals, n int) { row.CurrentStreakHydration = n },

		EntrySaved: locale.Text{ES: "Hidratación registrada exitosamente.", EN: "Hydration logged successfully."},
		GoalsSaved: locale.Text{ES: "Meta de hidratación guardada.", EN: "Hydration goal saved."},
	}
}

func buildHydrationEntry(userID, day string, fields Fields) (db.HydrationEntry, error) {
	beverage := cleanText(fields.Get("beverage_type", "beverageType"), 60)
	if beverage == "" {
		beverage = defaultBeverage
	}

	quantity := 1
	if raw := fields.Get("quantity"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return db.HydrationEntry{}, invalid("quantity", "La cantidad debe ser un número positivo.", "Quantity must be a positive number.")
		}
		quantity = parsed
	}

	return db.HydrationEntry{
		UserID:       userID,
		EntryDate:    day,
		BeverageType: beverage,
		Quantity:     quantity,
	}, nil
}
