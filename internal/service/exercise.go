package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/allive/internal/db"
	"github.com/allive/internal/locale"
)

// ExerciseGoals 是运动分类的目标
type ExerciseGoals struct {
	DailyMinutes  int `json:"daily_minutes" form:"daily_minutes"`
	DailySessions int `json:"daily_sessions" form:"daily_sessions"`
}

var exerciseIntensities = map[string]struct{}{
	db.IntensityLow:      {},
	db.IntensityModerate: {},
	db.IntensityHigh:     {},
}

// ExerciseCategory 定义运动记录：当日进度与连胜都以分钟计
func ExerciseCategory() Category[db.ExerciseEntry, ExerciseGoals] {
	return Category[db.ExerciseEntry, ExerciseGoals]{
		Name:         CategoryExercise,
		DateColumn:   "entry_date",
		HistoryLimit: 5,
		StreakColumn: "current_streak_exercise",
		GoalColumns:  []string{"exercise_goal_minutes", "exercise_goal_sessions"},

		Build: buildExerciseEntry,
		Day:   func(e db.ExerciseEntry) string { return e.EntryDate },
		Measure: func(e db.ExerciseEntry) float64 {
			return float64(e.DurationMinutes)
		},
		Chart: func(e db.ExerciseEntry) float64 {
			return float64(e.DurationMinutes)
		},

		DefaultGoals: func() ExerciseGoals {
			return ExerciseGoals{
				DailyMinutes:  db.DefaultExerciseGoalMinutes,
				DailySessions: db.DefaultExerciseGoalSessions,
			}
		},
		GoalsFrom: func(row db.UserGoals) ExerciseGoals {
			return ExerciseGoals{DailyMinutes: row.ExerciseGoalMinutes, DailySessions: row.ExerciseGoalSessions}
		},
		ApplyGoals: func(row *db.UserGoals, g ExerciseGoals) {
			row.ExerciseGoalMinutes = g.DailyMinutes
			row.ExerciseGoalSessions = g.DailySessions
		},
		ValidateGoals: func(g ExerciseGoals) error {
			if g.DailyMinutes <= 0 {
				return invalid("daily_minutes", "Los minutos diarios deben ser un número positivo.", "Daily minutes must be a positive number.")
			}
			if g.DailySessions <= 0 {
				return invalid("daily_sessions", "Las sesiones deben ser un número positivo.", "Sessions must be a positive number.")
			}
			return nil
		},
		Target:    func(g ExerciseGoals) float64 { return float64(g.DailyMinutes) },
		SetStreak: func(row *db.UserGoals, n int) { row.CurrentStreakExercise = n },

		EntrySaved: locale.Text{ES: "Ejercicio registrado exitosamente.", EN: "Exercise logged successfully."},
		GoalsSaved: locale.Text{ES: "Metas de ejercicio guardadas.", EN: "Exercise goals saved."},
	}
}

func buildExerciseEntry(userID, day string, fields Fields) (db.ExerciseEntry, error) {
	exerciseType := cleanText(fields.Get("exerciseType", "exercise_type"), 80)
	rawDuration := fields.Get("duration", "duration_minutes")
	intensity := strings.ToLower(fields.Get("intensity"))

	if exerciseType == "" || rawDuration == "" || intensity == "" {
		return db.ExerciseEntry{}, invalid("exercise",
			"Todos los campos (Tipo, Duración, Intensidad) son requeridos.",
			"All fields (Type, Duration, Intensity) are required.")
	}

	minutes, err := strconv.Atoi(rawDuration)
	if err != nil || minutes <= 0 || minutes > math.MaxInt32 {
		return db.ExerciseEntry{}, invalid("duration",
			"La duración debe ser un número positivo.",
			"Duration must be a positive number.")
	}

	if _, ok := exerciseIntensities[intensity]; !ok {
		return db.ExerciseEntry{}, invalid("intensity", "Intensidad no válida.", "Invalid intensity.")
	}

	return db.ExerciseEntry{
		UserID:          userID,
		EntryDate:       day,
		ExerciseType:    exerciseType,
		DurationMinutes: minutes,
		Intensity:       intensity,
	}, nil
}
