package handler

import (
	"net/http"

	"github.com/allive/internal/service"
	"github.com/gin-gonic/gin"
)

type statsPage struct {
	Title    string `json:"title"`
	Language string `json:"language"`
	*service.Overview
}

// ShowStats 返回统计页首屏：今日各分类完成度
func (a *API) ShowStats(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		c.Redirect(http.StatusFound, authLanding)
		return
	}
	overview, err := a.stats.Overview(c.Request.Context(), userID)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	language := a.language(c)
	c.JSON(http.StatusOK, statsPage{
		Title:    localizeFixedTitle(language, statsTitle),
		Language: language,
		Overview: overview,
	})
}

// GetWeeklyStats 返回四个分类的周图表
func (a *API) GetWeeklyStats(c *gin.Context) {
	weekly, err := a.stats.Weekly(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, weekly)
}

// GetDayActivities 返回日历中某一天的全部记录
func (a *API) GetDayActivities(c *gin.Context) {
	day, err := a.stats.DayActivities(c.Request.Context(), currentUserID(c), c.Query("date"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// GetCalendar 返回某月有记录的日期
func (a *API) GetCalendar(c *gin.Context) {
	calendar, err := a.stats.Calendar(c.Request.Context(), currentUserID(c), c.Query("month"))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, calendar)
}
