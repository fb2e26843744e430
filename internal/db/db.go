package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Options 控制连接方式。Driver 为 sqlite 时 URL 视为文件路径。
type Options struct {
	Driver string
	URL    string
	Silent bool
}

// Init 初始化数据库连接并执行自动迁移。
func Init(opts Options) (*gorm.DB, error) {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		url = "allive.db"
	}

	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "postgres":
		dialector = postgres.Open(url)
	case "", "sqlite":
		if err := ensureParentDir(url); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(url)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	gormConfig := &gorm.Config{}
	if opts.Silent {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	gdb, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, err
	}

	if dialector.Name() == "sqlite" {
		// SQLite 只允许单写连接，串行化避免 database is locked
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}

	DB = gdb
	return gdb, nil
}

// Migrate 为全部模型建表。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&User{},
		&UserGoals{},
		&ExerciseEntry{},
		&NutritionEntry{},
		&SleepEntry{},
		&HydrationEntry{},
	)
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
