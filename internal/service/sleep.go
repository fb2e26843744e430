package service

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/allive/internal/db"
	"github.com/allive/internal/locale"
	"github.com/allive/internal/metric"
)

// SleepGoals 是睡眠分类的目标
type SleepGoals struct {
	TargetHours float64 `json:"target_hours" form:"target_hours"`
	BedtimeGoal string  `json:"bedtime_goal" form:"bedtime_goal"`
	WakeupGoal  string  `json:"wakeup_goal" form:"wakeup_goal"`
}

var sleepQualities = map[string]struct{}{
	db.QualityBad:       {},
	db.QualityFair:      {},
	db.QualityGood:      {},
	db.QualityExcellent: {},
}

// SleepCategory 定义睡眠记录：时长由入睡/醒来时间推导，进度以小时计
func SleepCategory() Category[db.SleepEntry, SleepGoals] {
	return Category[db.SleepEntry, SleepGoals]{
		Name:         CategorySleep,
		DateColumn:   "sleep_date",
		HistoryLimit: 5,
		StreakColumn: "current_streak_sleep",
		GoalColumns:  []string{"sleep_goal_hours", "sleep_ideal_bed_time", "sleep_ideal_wake_time"},

		Build:   buildSleepEntry,
		Day:     func(e db.SleepEntry) string { return e.SleepDate },
		Measure: func(e db.SleepEntry) float64 { return e.TotalHours },
		Chart:   func(e db.SleepEntry) float64 { return e.TotalHours },

		DefaultGoals: func() SleepGoals {
			return SleepGoals{
				TargetHours: db.DefaultSleepGoalHours,
				BedtimeGoal: db.DefaultSleepIdealBedTime,
				WakeupGoal:  db.DefaultSleepIdealWakeTime,
			}
		},
		GoalsFrom: func(row db.UserGoals) SleepGoals {
			return SleepGoals{
				TargetHours: row.SleepGoalHours,
				BedtimeGoal: row.SleepIdealBedTime,
				WakeupGoal:  row.SleepIdealWakeTime,
			}
		},
		ApplyGoals: func(row *db.UserGoals, g SleepGoals) {
			row.SleepGoalHours = g.TargetHours
			row.SleepIdealBedTime = normalizeClock(g.BedtimeGoal)
			row.SleepIdealWakeTime = normalizeClock(g.WakeupGoal)
		},
		ValidateGoals: func(g SleepGoals) error {
			if math.IsNaN(g.TargetHours) || math.IsInf(g.TargetHours, 0) || g.TargetHours <= 0 || g.TargetHours > 24 {
				return invalid("target_hours", "Las horas de sueño deben estar entre 0 y 24.", "Sleep hours must be between 0 and 24.")
			}
			if _, err := metric.ClockMinutes(g.BedtimeGoal); err != nil {
				return invalid("bedtime_goal", "Hora de dormir no válida (HH:MM).", "Invalid bedtime (HH:MM).")
			}
			if _, err := metric.ClockMinutes(g.WakeupGoal); err != nil {
				return invalid("wakeup_goal", "Hora de despertar no válida (HH:MM).", "Invalid wake-up time (HH:MM).")
			}
			return nil
		},
		Target:    func(g SleepGoals) float64 { return g.TargetHours },
		SetStreak: func(row *db.UserGoals, n int) { row.CurrentStreakSleep = n },

		EntrySaved: locale.Text{ES: "Sueño registrado exitosamente.", EN: "Sleep logged successfully."},
		GoalsSaved: locale.Text{ES: "Metas de sueño guardadas.", EN: "Sleep goals saved."},
	}
}

func buildSleepEntry(userID, day string, fields Fields) (db.SleepEntry, error) {
	bedtime := fields.Get("bedtime", "time_sleep", "timeSleep")
	wakeup := fields.Get("wakeup", "time_wake", "timeWake")
	quality := strings.ToLower(fields.Get("quality"))

	if bedtime == "" || wakeup == "" || quality == "" {
		return db.SleepEntry{}, invalid("sleep",
			"Todos los campos (Hora de Dormir, Despertar, Calidad) son requeridos.",
			"All fields (Bedtime, Wake-up, Quality) are required.")
	}

	hours, err := metric.SleepDuration(bedtime, wakeup)
	switch {
	case errors.Is(err, metric.ErrInvalidClock):
		return db.SleepEntry{}, invalid("time", "Formato de hora no válido (HH:MM).", "Invalid time format (HH:MM).")
	case err != nil:
		return db.SleepEntry{}, invalid("wakeup",
			"La hora de despertar debe ser posterior a la de dormir (considerando cruce de medianoche).",
			"Wake-up time must be after bedtime (midnight rollover included).")
	}

	if _, ok := sleepQualities[quality]; !ok {
		return db.SleepEntry{}, invalid("quality", "Calidad de sueño no válida.", "Invalid sleep quality.")
	}

	return db.SleepEntry{
		UserID:     userID,
		SleepDate:  day,
		TimeSleep:  normalizeClock(bedtime),
		TimeWake:   normalizeClock(wakeup),
		TotalHours: hours,
		Quality:    quality,
	}, nil
}

// normalizeClock 将 H:MM 规范为 HH:MM，无法解析时原样返回
func normalizeClock(value string) string {
	minutes, err := metric.ClockMinutes(value)
	if err != nil {
		return value
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
