package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/allive/internal/applog"
	"github.com/allive/internal/auth"
	"github.com/allive/internal/config"
	"github.com/allive/internal/db"
	"github.com/allive/internal/metric"
	"gorm.io/gorm"
)

const (
	demoEmail    = "demo@allive.app"
	demoPassword = "demo1234"
	demoDays     = 7
)

// 演示数据生成器：创建演示用户并写入最近一周四个分类的记录
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := applog.New(cfg.Log)

	gdb, err := db.Init(db.Options{Driver: cfg.DatabaseDriver(), URL: cfg.DatabaseURL, Silent: true})
	if err != nil {
		logger.Error("数据库初始化失败", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	provider := auth.NewLocalProvider(gdb, auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL))
	if err := provider.EnsureUser(ctx, demoEmail, demoPassword, "demo"); err != nil {
		logger.Error("创建演示用户失败", slog.Any("error", err))
		os.Exit(1)
	}
	session, err := provider.SignIn(ctx, demoEmail, demoPassword)
	if err != nil {
		logger.Error("演示用户登录失败", slog.Any("error", err))
		os.Exit(1)
	}

	created, err := seedDemo(ctx, gdb, session.User.ID, time.Now())
	if err != nil {
		logger.Error("生成演示数据失败", slog.Any("error", err))
		os.Exit(1)
	}

	if created == 0 {
		fmt.Println("演示数据已存在，跳过创建")
		return
	}
	fmt.Printf("演示数据生成完成：%d 条记录\n", created)
	fmt.Printf("用户: %s (密码: %s)\n", demoEmail, demoPassword)
}

// seedDemo 为用户写入最近 demoDays 天的记录；已有任意记录时不做任何事
func seedDemo(ctx context.Context, gdb *gorm.DB, userID string, now time.Time) (int, error) {
	var existing int64
	if err := gdb.WithContext(ctx).Model(&db.ExerciseEntry{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	exercises := []string{"correr", "yoga", "bicicleta", "natación", "pesas"}
	intensities := []string{db.IntensityLow, db.IntensityModerate, db.IntensityHigh}
	meals := []string{db.MealBreakfast, db.MealLunch, db.MealDinner}
	qualities := []string{db.QualityFair, db.QualityGood, db.QualityExcellent}

	created := 0
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < demoDays; i++ {
			day := metric.DaysAgo(now, i)

			rows := []any{
				&db.ExerciseEntry{
					UserID:          userID,
					EntryDate:       day,
					ExerciseType:    exercises[i%len(exercises)],
					DurationMinutes: 20 + (i*7)%30,
					Intensity:       intensities[i%len(intensities)],
				},
				&db.SleepEntry{
					UserID:     userID,
					SleepDate:  day,
					TimeSleep:  "23:00",
					TimeWake:   fmt.Sprintf("%02d:30", 5+i%3),
					TotalHours: float64(6+i%3) + 0.5,
					Quality:    qualities[i%len(qualities)],
				},
				&db.HydrationEntry{
					UserID:       userID,
					EntryDate:    day,
					BeverageType: "agua",
					Quantity:     5 + i%4,
				},
			}
			for j, meal := range meals {
				rows = append(rows, &db.NutritionEntry{
					UserID:      userID,
					EntryDate:   day,
					MealType:    meal,
					Description: fmt.Sprintf("comida %d", j+1),
					IsHealthy:   (i+j)%3 != 0,
				})
			}

			for _, row := range rows {
				if err := tx.Create(row).Error; err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
