package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/allive/internal/db"
	"github.com/allive/internal/metric"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// 2025-03-12 是星期三
var testNow = time.Date(2025, 3, 12, 15, 4, 0, 0, time.Local)

func setupTrackerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:allive-service-%d?mode=memory&cache=shared", testDBSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return gdb
}

func newTestTrackers(t *testing.T) (*gorm.DB, *Trackers) {
	t.Helper()
	gdb := setupTrackerTestDB(t)
	return gdb, NewTrackers(gdb, metric.FixedClock(testNow))
}

func daysBefore(n int) string {
	return metric.DaysAgo(testNow, n)
}

func TestAddExerciseEntryUsesTodayAndPersistsStreak(t *testing.T) {
	gdb, trackers := newTestTrackers(t)
	ctx := context.Background()

	for _, day := range []string{daysBefore(1), daysBefore(2)} {
		if err := gdb.Create(&db.ExerciseEntry{UserID: "u1", EntryDate: day, ExerciseType: "correr", DurationMinutes: 30, Intensity: db.IntensityHigh}).Error; err != nil {
			t.Fatalf("seed exercise: %v", err)
		}
	}

	entry, err := trackers.Exercise.AddEntry(ctx, "u1", Fields{
		"exerciseType": "  <b>natación</b> ",
		"duration":     "45",
		"intensity":    db.IntensityModerate,
	})
	if err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}
	if entry.EntryDate != "2025-03-12" {
		t.Fatalf("expected entry dated today, got %s", entry.EntryDate)
	}
	if entry.ExerciseType != "natación" {
		t.Fatalf("expected sanitized exercise type, got %q", entry.ExerciseType)
	}
	if entry.DurationMinutes != 45 {
		t.Fatalf("unexpected duration: %d", entry.DurationMinutes)
	}

	var goals db.UserGoals
	if err := gdb.First(&goals, "user_id = ?", "u1").Error; err != nil {
		t.Fatalf("expected goals row after add: %v", err)
	}
	if goals.CurrentStreakExercise != 3 {
		t.Fatalf("expected persisted streak 3, got %d", goals.CurrentStreakExercise)
	}
	if goals.ExerciseGoalMinutes != db.DefaultExerciseGoalMinutes || goals.HydrationGoalCups != db.DefaultHydrationGoalCups {
		t.Fatalf("expected defaults in first goals row, got %+v", goals)
	}
}

func TestAddExerciseEntryRejectsInvalidInput(t *testing.T) {
	gdb, trackers := newTestTrackers(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		fields Fields
		field  string
	}{
		{name: "negative duration", fields: Fields{"exerciseType": "correr", "duration": "-5", "intensity": db.IntensityHigh}, field: "duration"},
		{name: "not a number", fields: Fields{"exerciseType": "correr", "duration": "abc", "intensity": db.IntensityHigh}, field: "duration"},
		{name: "missing type", fields: Fields{"duration": "20", "intensity": db.IntensityHigh}, field: "exercise"},
		{name: "unknown intensity", fields: Fields{"exerciseType": "correr", "duration": "20", "intensity": "extrema"}, field: "intensity"},
		{name: "fractional below one", fields: Fields{"exerciseType": "correr", "duration": "0.2", "intensity": db.IntensityHigh}, field: "duration"},
		{name: "fractional", fields: Fields{"exerciseType": "correr", "duration": "20.5", "intensity": db.IntensityHigh}, field: "duration"},
	}

	for _, tc := range cases {
		_, err := trackers.Exercise.AddEntry(ctx, "u1", tc.fields)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if validationErr.Field != tc.field {
			t.Fatalf("%s: expected field %s, got %s", tc.name, tc.field, validationErr.Field)
		}
	}

	var count int64
	gdb.Model(&db.ExerciseEntry{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no rows inserted, got %d", count)
	}

	_, err := trackers.Exercise.AddEntry(ctx, "u1", cases[0].fields)
	result := ResultOf(err, ExerciseCategory().EntrySaved, "es")
	if result.Success || result.Message != "La duración debe ser un número positivo." {
		t.Fatalf("unexpected result for invalid duration: %+v", result)
	}
}

func TestAddEntryRequiresUser(t *testing.T) {
	_, trackers := newTestTrackers(t)

	_, err := trackers.Hydration.AddEntry(context.Background(), "", Fields{})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := trackers.Hydration.Dashboard(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated from Dashboard, got %v", err)
	}
}

func TestSaveGoalsUpsertsSingleRow(t *testing.T) {
	gdb, trackers := newTestTrackers(t)
	ctx := context.Background()

	if err := trackers.Hydration.SaveGoals(ctx, "u1", HydrationGoals{CupsPerDay: 10}); err != nil {
		t.Fatalf("first SaveGoals returned error: %v", err)
	}
	if err := trackers.Hydration.SaveGoals(ctx, "u1", HydrationGoals{CupsPerDay: 12}); err != nil {
		t.Fatalf("second SaveGoals returned error: %v", err)
	}
	if err := trackers.Sleep.SaveGoals(ctx, "u1", SleepGoals{TargetHours: 7.5, BedtimeGoal: "23:00", WakeupGoal: "6:30"}); err != nil {
		t.Fatalf("sleep SaveGoals returned error: %v", err)
	}

	var rows []db.UserGoals
	if err := gdb.Where("user_id = ?", "u1").Find(&rows).Error; err != nil {
		t.Fatalf("query goals: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one goals row, got %d", len(rows))
	}
	row := rows[0]
	if row.HydrationGoalCups != 12 {
		t.Fatalf("expected cups 12, got %d", row.HydrationGoalCups)
	}
	if row.SleepGoalHours != 7.5 || row.SleepIdealWakeTime != "06:30" {
		t.Fatalf("unexpected sleep goals: %+v", row)
	}
	if row.ExerciseGoalMinutes != db.DefaultExerciseGoalMinutes {
		t.Fatalf("expected exercise default to be untouched, got %d", row.ExerciseGoalMinutes)
	}

	goals, err := trackers.Hydration.Goals(ctx, "u1")
	if err != nil {
		t.Fatalf("Goals returned error: %v", err)
	}
	if goals.CupsPerDay != 12 {
		t.Fatalf("expected cups 12 from Goals, got %d", goals.CupsPerDay)
	}
}

func TestSaveGoalsValidation(t *testing.T) {
	_, trackers := newTestTrackers(t)
	ctx := context.Background()

	checks := []error{
		trackers.Exercise.SaveGoals(ctx, "u1", ExerciseGoals{DailyMinutes: 0, DailySessions: 3}),
		trackers.Nutrition.SaveGoals(ctx, "u1", NutritionGoals{MealsPerDay: 11}),
		trackers.Sleep.SaveGoals(ctx, "u1", SleepGoals{TargetHours: 25, BedtimeGoal: "22:00", WakeupGoal: "06:00"}),
		trackers.Sleep.SaveGoals(ctx, "u1", SleepGoals{TargetHours: 8, BedtimeGoal: "25:00", WakeupGoal: "06:00"}),
		trackers.Hydration.SaveGoals(ctx, "u1", HydrationGoals{CupsPerDay: 0}),
		trackers.Sleep.SaveGoals(ctx, "u1", SleepGoals{TargetHours: math.NaN(), BedtimeGoal: "22:00", WakeupGoal: "06:00"}),
		trackers.Sleep.SaveGoals(ctx, "u1", SleepGoals{TargetHours: math.Inf(1), BedtimeGoal: "22:00", WakeupGoal: "06:00"}),
	}
	for i, err := range checks {
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("check %d: expected validation error, got %v", i, err)
		}
	}
}

func TestEntryChoicesIgnoreCase(t *testing.T) {
	_, trackers := newTestTrackers(t)
	ctx := context.Background()

	sleep, err := trackers.Sleep.AddEntry(ctx, "u1", Fields{"bedtime": "23:00", "wakeup": "07:00", "quality": "Buena"})
	if err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}
	if sleep.Quality != db.QualityGood {
		t.Fatalf("expected quality %q, got %q", db.QualityGood, sleep.Quality)
	}

	exercise, err := trackers.Exercise.AddEntry(ctx, "u1", Fields{"exerciseType": "correr", "duration": "30", "intensity": "ALTA"})
	if err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}
	if exercise.Intensity != db.IntensityHigh {
		t.Fatalf("expected intensity %q, got %q", db.IntensityHigh, exercise.Intensity)
	}
}

func TestGoalsDefaultWhenMissing(t *testing.T) {
	_, trackers := newTestTrackers(t)

	goals, err := trackers.Sleep.Goals(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Goals returned error: %v", err)
	}
	if goals.TargetHours != db.DefaultSleepGoalHours || goals.BedtimeGoal != db.DefaultSleepIdealBedTime {
		t.Fatalf("expected default sleep goals, got %+v", goals)
	}
}

func TestSleepEntryDerivesHours(t *testing.T) {
	_, trackers := newTestTrackers(t)
	ctx := context.Background()

	entry, err := trackers.Sleep.AddEntry(ctx, "u1", Fields{"bedtime": "23:00", "wakeup": "6:30", "quality": db.QualityGood})
	if err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}
	if entry.TotalHours != 7.5 {
		t.Fatalf("expected 7.5 hours, got %v", entry.TotalHours)
	}
	if entry.TimeWake != "06:30" {
		t.Fatalf("expected normalized wake time, got %q", entry.TimeWake)
	}

	_, err = trackers.Sleep.AddEntry(ctx, "u1", Fields{"bedtime": "06:00", "wakeup": "06:00", "quality": db.QualityGood})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "wakeup" {
		t.Fatalf("expected wakeup validation error, got %v", err)
	}

	_, err = trackers.Sleep.AddEntry(ctx, "u1", Fields{"bedtime": "22:00", "wakeup": "06:00", "quality": "perfecta"})
	if !errors.As(err, &validationErr) || validationErr.Field != "quality" {
		t.Fatalf("expected quality validation error, got %v", err)
	}
}

func TestNutritionAndHydrationDefaults(t *testing.T) {
	_, trackers := newTestTrackers(t)
	ctx := context.Background()

	meal, err := trackers.Nutrition.AddEntry(ctx, "u1", Fields{"description": "avena", "is_healthy": "on"})
	if err != nil {
		t.Fatalf("nutrition AddEntry returned error: %v", err)
	}
	if meal.MealType != db.MealBreakfast || !meal.IsHealthy {
		t.Fatalf("unexpected meal: %+v", meal)
	}
	if _, err := trackers.Nutrition.AddEntry(ctx, "u1", Fields{"meal_type": "brunch"}); err == nil {
		t.Fatal("expected invalid meal type to fail")
	}

	drink, err := trackers.Hydration.AddEntry(ctx, "u1", Fields{})
	if err != nil {
		t.Fatalf("hydration AddEntry returned error: %v", err)
	}
	if drink.BeverageType != "agua" || drink.Quantity != 1 {
		t.Fatalf("unexpected drink defaults: %+v", drink)
	}
	if _, err := trackers.Hydration.AddEntry(ctx, "u1", Fields{"quantity": "0"}); err == nil {
		t.Fatal("expected zero quantity to fail")
	}
}

func TestDashboardAggregates(t *testing.T) {
	gdb, trackers := newTestTrackers(t)
	ctx := context.Background()

	if err := trackers.Hydration.SaveGoals(ctx, "u1", HydrationGoals{CupsPerDay: 4}); err != nil {
		t.Fatalf("SaveGoals returned error: %v", err)
	}

	seed := []db.HydrationEntry{
		{UserID: "u1", EntryDate: daysBefore(0), BeverageType: "agua", Quantity: 2},
		{UserID: "u1", EntryDate: daysBefore(0), BeverageType: "té", Quantity: 3},
		{UserID: "u1", EntryDate: daysBefore(1), BeverageType: "agua", Quantity: 4},
		{UserID: "u1", EntryDate: daysBefore(3), BeverageType: "agua", Quantity: 6},
		{UserID: "u1", EntryDate: daysBefore(4), BeverageType: "agua", Quantity: 5},
		{UserID: "u1", EntryDate: daysBefore(10), BeverageType: "agua", Quantity: 8},
		{UserID: "other", EntryDate: daysBefore(0), BeverageType: "agua", Quantity: 9},
	}
	for i := range seed {
		if err := gdb.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed hydration: %v", err)
		}
	}

	data, err := trackers.Hydration.Dashboard(ctx, "u1")
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}

	if data.Progress.Current != 5 || data.Progress.Goal != 4 {
		t.Fatalf("unexpected progress: %+v", data.Progress)
	}
	if data.Progress.Streak != 2 {
		t.Fatalf("expected streak 2, got %d", data.Progress.Streak)
	}
	if data.Stats.LongestStreak != 2 {
		t.Fatalf("expected longest streak 2, got %d", data.Stats.LongestStreak)
	}
	if data.Stats.TodayCount != 2 {
		t.Fatalf("expected 2 entries today, got %d", data.Stats.TodayCount)
	}
	if len(data.History) != 6 {
		t.Fatalf("expected 6 history rows scoped to user, got %d", len(data.History))
	}
	if data.History[0].EntryDate != daysBefore(0) {
		t.Fatalf("expected newest first, got %s", data.History[0].EntryDate)
	}
	if len(data.Stats.Week) != metric.WeekDays {
		t.Fatalf("expected 7 buckets, got %d", len(data.Stats.Week))
	}
	if data.Stats.Week[6].Total != 5 || data.Stats.Week[2].Total != 5 || data.Stats.Week[4].Total != 0 {
		t.Fatalf("unexpected week buckets: %+v", data.Stats.Week)
	}
	if data.Stats.WeekTotal != 20 {
		t.Fatalf("expected week total 20, got %v", data.Stats.WeekTotal)
	}
	if data.Goals.CupsPerDay != 4 {
		t.Fatalf("expected goals in dashboard, got %+v", data.Goals)
	}
}

func TestDashboardHistoryLimit(t *testing.T) {
	gdb, trackers := newTestTrackers(t)

	for i := 0; i < 8; i++ {
		if err := gdb.Create(&db.ExerciseEntry{UserID: "u1", EntryDate: daysBefore(i), ExerciseType: "yoga", DurationMinutes: 10, Intensity: db.IntensityLow}).Error; err != nil {
			t.Fatalf("seed exercise: %v", err)
		}
	}

	data, err := trackers.Exercise.Dashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if len(data.History) != 5 {
		t.Fatalf("expected history limited to 5, got %d", len(data.History))
	}
	if data.Progress.Streak != 0 {
		t.Fatalf("expected no streak below the minutes goal, got %d", data.Progress.Streak)
	}
}

func TestResultOfStorageError(t *testing.T) {
	err := storageErr("add exercise entry", errors.New("disk full"))
	result := ResultOf(err, ExerciseCategory().EntrySaved, "es")
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Message != "Error en la base de datos: disk full" {
		t.Fatalf("unexpected message %q", result.Message)
	}

	ok := ResultOf(nil, ExerciseCategory().EntrySaved, "en")
	if !ok.Success || ok.Message != "Exercise logged successfully." {
		t.Fatalf("unexpected success result %+v", ok)
	}
}
