package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/allive/internal/locale"
	"github.com/allive/internal/service"
	"github.com/gin-gonic/gin"
)

// CategoryRoutes 是一个分类页面的全部处理器
type CategoryRoutes struct {
	Path      string
	Dashboard gin.HandlerFunc
	Goals     gin.HandlerFunc
	SaveGoals gin.HandlerFunc
	AddEntry  gin.HandlerFunc
	Tips      gin.HandlerFunc
}

// CategoryRoutes 返回四个分类的路由，路径与守卫的受保护前缀一致
func (a *API) CategoryRoutes() []CategoryRoutes {
	return []CategoryRoutes{
		categoryRoutes(a, "/exercises", a.trackers.Exercise),
		categoryRoutes(a, "/nutrition", a.trackers.Nutrition),
		categoryRoutes(a, "/sleep", a.trackers.Sleep),
		categoryRoutes(a, "/hydration", a.trackers.Hydration),
	}
}

type dashboardPage[E any, G any] struct {
	Title    string `json:"title"`
	Language string `json:"language"`
	*service.Dashboard[E, G]
}

var invalidGoalsText = locale.Text{ES: "Datos de metas no válidos.", EN: "Invalid goals payload."}

func categoryRoutes[E any, G any](a *API, path string, tracker *service.Tracker[E, G]) CategoryRoutes {
	category := tracker.Category()

	return CategoryRoutes{
		Path: path,
		Dashboard: func(c *gin.Context) {
			userID := currentUserID(c)
			if userID == "" {
				c.Redirect(http.StatusFound, authLanding)
				return
			}
			data, err := tracker.Dashboard(c.Request.Context(), userID)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					c.Redirect(http.StatusFound, authLanding)
					return
				}
				a.respondServiceError(c, err)
				return
			}
			language := a.language(c)
			c.JSON(http.StatusOK, dashboardPage[E, G]{
				Title:     localizeFixedTitle(language, categoryTitles[category.Name]),
				Language:  language,
				Dashboard: data,
			})
		},
		Goals: func(c *gin.Context) {
			goals, err := tracker.Goals(c.Request.Context(), currentUserID(c))
			if err != nil {
				a.respondServiceError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"goals": goals})
		},
		SaveGoals: func(c *gin.Context) {
			userID := currentUserID(c)
			if userID == "" {
				a.respondResult(c, service.ErrUnauthenticated, category.GoalsSaved)
				return
			}
			var goals G
			if err := c.ShouldBind(&goals); err != nil {
				respondError(c, http.StatusBadRequest, invalidGoalsText.In(a.language(c)))
				return
			}
			a.respondResult(c, tracker.SaveGoals(c.Request.Context(), userID, goals), category.GoalsSaved)
		},
		AddEntry: func(c *gin.Context) {
			userID := currentUserID(c)
			if userID == "" {
				a.respondResult(c, service.ErrUnauthenticated, category.EntrySaved)
				return
			}
			fields, err := readFields(c)
			if err != nil {
				slog.DebugContext(c.Request.Context(), "unreadable entry payload", slog.Any("error", err))
				respondError(c, http.StatusBadRequest, locale.Pick(a.language(c), "Invalid request body.", "Solicitud no válida."))
				return
			}
			_, err = tracker.AddEntry(c.Request.Context(), userID, fields)
			a.respondResult(c, err, category.EntrySaved)
		},
		Tips: func(c *gin.Context) {
			tips, err := a.tips.ForCategory(category.Name, a.language(c))
			if err != nil {
				a.respondServiceError(c, err)
				return
			}
			c.JSON(http.StatusOK, tips)
		},
	}
}
