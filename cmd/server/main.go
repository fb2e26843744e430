package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/allive/internal/applog"
	"github.com/allive/internal/auth"
	"github.com/allive/internal/config"
	"github.com/allive/internal/db"
	"github.com/allive/internal/handler"
	"github.com/allive/internal/metric"
	"github.com/allive/internal/router"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := applog.New(cfg.Log)
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Init(db.Options{Driver: cfg.DatabaseDriver(), URL: cfg.DatabaseURL})
	if err != nil {
		logger.Error("failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var provider auth.Provider
	switch cfg.Auth.Provider {
	case config.ProviderGoTrue:
		provider = auth.NewGoTrueProvider(cfg.Auth.URL, cfg.Auth.APIKey, &http.Client{Timeout: 10 * time.Second})
	default:
		local := auth.NewLocalProvider(gdb, auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL))
		if cfg.SeedUserEmail != "" && cfg.SeedUserPassword != "" {
			if err := local.EnsureUser(ctx, cfg.SeedUserEmail, cfg.SeedUserPassword, ""); err != nil {
				logger.Error("failed to ensure seed user", slog.Any("error", err))
				os.Exit(1)
			}
		}
		provider = local
	}

	api := handler.NewAPI(gdb, provider, metric.SystemClock{})
	r := router.SetupRouter(api, router.Options{
		SessionSecret: cfg.SessionSecret,
		SecureCookies: strings.EqualFold(cfg.GinMode, gin.ReleaseMode),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			slog.String("addr", cfg.ListenAddr),
			slog.String("db_driver", cfg.DatabaseDriver()),
			slog.String("auth_provider", cfg.Auth.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to run server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server stopped")
}
