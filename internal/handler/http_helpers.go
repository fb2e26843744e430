package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/allive/internal/locale"
	"github.com/allive/internal/service"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func isJSONRequest(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Content-Type"), "application/json")
}

// readFields 读取表单或 JSON 请求体，统一转为字符串字段
func readFields(c *gin.Context) (service.Fields, error) {
	fields := service.Fields{}

	if isJSONRequest(c) {
		var payload map[string]any
		if err := c.ShouldBindJSON(&payload); err != nil {
			return nil, err
		}
		for key, value := range payload {
			switch v := value.(type) {
			case nil:
			case string:
				fields[key] = v
			case bool:
				if v {
					fields[key] = "true"
				}
			default:
				fields[key] = fmt.Sprint(v)
			}
		}
		return fields, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	for key := range c.Request.PostForm {
		fields[key] = c.Request.PostForm.Get(key)
	}
	return fields, nil
}

// statusForError 将服务层错误映射为 HTTP 状态码
func statusForError(err error) int {
	var validationErr *service.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnknownCategory):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondResult 输出写操作的 {success, message}，存储错误记录日志
func (a *API) respondResult(c *gin.Context, err error, success locale.Text) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.String("user_id", currentUserID(c)),
			slog.Any("error", err),
		)
	}
	c.JSON(status, service.ResultOf(err, success, a.language(c)))
}

// respondServiceError 用于读取接口的失败分支
func (a *API) respondServiceError(c *gin.Context, err error) {
	a.respondResult(c, err, locale.Text{})
}
