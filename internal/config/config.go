package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	ProviderLocal  = "local"
	ProviderGoTrue = "gotrue"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSessionSecret = "allive-dev-secret"
	defaultJWTSecret     = "allive-dev-jwt-secret"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string `env:"LISTEN_ADDR" env-default:":8080"`
	GinMode       string `env:"GIN_MODE" env-default:"debug"`
	DatabaseURL   string `env:"DATABASE_URL" env-default:"allive.db"`
	SessionSecret string `env:"SESSION_SECRET" env-default:"allive-dev-secret"`

	Auth AuthConfig
	Log  LogConfig

	SeedUserEmail    string `env:"SEED_USER_EMAIL"`
	SeedUserPassword string `env:"SEED_USER_PASSWORD"`
}

// AuthConfig 描述身份提供方。local 使用本地用户表，gotrue 转发到兼容 Supabase 的认证服务。
type AuthConfig struct {
	Provider        string        `env:"AUTH_PROVIDER" env-default:"local"`
	URL             string        `env:"AUTH_URL"`
	APIKey          string        `env:"AUTH_API_KEY"`
	JWTSecret       string        `env:"JWT_SECRET" env-default:"allive-dev-jwt-secret"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" env-default:"720h"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// Load 从 .env（可选）与环境变量读取应用配置，缺失项使用默认值。
func Load() (AppConfig, error) {
	var cfg AppConfig

	envFile := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("config: read env: %w", err)
	}

	cfg.Auth.Provider = strings.ToLower(strings.TrimSpace(cfg.Auth.Provider))
	cfg.Auth.URL = strings.TrimRight(strings.TrimSpace(cfg.Auth.URL), "/")

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// Validate 检查枚举型配置；认证服务地址与密钥缺失不在此处报错，而是在首次调用时暴露。
func (c AppConfig) Validate() error {
	switch c.Auth.Provider {
	case ProviderLocal, ProviderGoTrue:
	default:
		return fmt.Errorf("unsupported auth provider %q", c.Auth.Provider)
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("database url is empty")
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}

	// release 模式下不允许沿用开发密钥
	if strings.EqualFold(c.GinMode, "release") {
		if strings.TrimSpace(c.SessionSecret) == "" || c.SessionSecret == defaultSessionSecret {
			return errors.New("SESSION_SECRET must be set in release mode")
		}
		if c.Auth.Provider == ProviderLocal && (strings.TrimSpace(c.Auth.JWTSecret) == "" || c.Auth.JWTSecret == defaultJWTSecret) {
			return errors.New("JWT_SECRET must be set in release mode")
		}
	}
	return nil
}

// DatabaseDriver 根据 DATABASE_URL 推断驱动：postgres:// 或 postgresql:// 走 Postgres，其余视为 SQLite 文件路径。
func (c AppConfig) DatabaseDriver() string {
	lower := strings.ToLower(strings.TrimSpace(c.DatabaseURL))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}
