package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/allive/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Options 控制会话 cookie
type Options struct {
	SessionSecret string
	SecureCookies bool
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(handler.SessionName, store))
	r.Use(api.LocaleMiddleware())
	r.Use(api.RouteGuard())

	r.GET("/ping", handler.Ping)
	r.GET("/healthz", api.HealthCheck)

	authAPI := r.Group("/api/auth")
	{
		authAPI.POST("/login", api.Login)
		authAPI.POST("/signup", api.Signup)
		authAPI.POST("/logout", api.Logout)
	}

	// 守卫已处理重定向，这里只在守卫放行时兜底
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/login")
	})
	r.GET("/login", api.ShowLogin)
	r.GET("/signup", api.ShowSignup)

	stats := r.Group("/stats")
	{
		stats.GET("", api.ShowStats)
		stats.GET("/weekly", api.GetWeeklyStats)
		stats.GET("/day", api.GetDayActivities)
		stats.GET("/calendar", api.GetCalendar)
	}

	for _, routes := range api.CategoryRoutes() {
		group := r.Group(routes.Path)
		group.GET("", routes.Dashboard)
		group.GET("/goals", routes.Goals)
		group.POST("/goals", routes.SaveGoals)
		group.POST("/entries", routes.AddEntry)
		group.GET("/tips", routes.Tips)
	}

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
