package handler

import (
	"github.com/allive/internal/auth"
	"github.com/allive/internal/metric"
	"github.com/allive/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	auth     auth.Provider
	trackers *service.Trackers
	stats    *service.StatsService
	tips     *service.TipsService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, provider auth.Provider, clock metric.Clock) *API {
	if clock == nil {
		clock = metric.SystemClock{}
	}
	trackers := service.NewTrackers(db, clock)

	return &API{
		db:       db,
		auth:     provider,
		trackers: trackers,
		stats:    service.NewStatsService(trackers, clock),
		tips:     service.NewTipsService(),
	}
}

// DB exposes the underlying gorm instance for health checks.
func (a *API) DB() *gorm.DB {
	return a.db
}
