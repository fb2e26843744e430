package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/allive/internal/locale"
	"github.com/microcosm-cc/bluemonday"
)

var (
	// ErrUnauthenticated 在缺少用户身份时返回，调用方应重定向或拒绝
	ErrUnauthenticated = errors.New("user not authenticated")
	// ErrUnknownCategory 在分类名未知时返回
	ErrUnknownCategory = errors.New("unknown category")

	textPolicy = bluemonday.StrictPolicy()
)

// ValidationError 表示表单字段校验失败，不会作为系统错误记录
type ValidationError struct {
	Field string
	Text  locale.Text
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Text.EN)
}

// Message 返回指定语言的提示
func (e *ValidationError) Message(language string) string {
	return e.Text.In(language)
}

func invalid(field, es, en string) *ValidationError {
	return &ValidationError{Field: field, Text: locale.Text{ES: es, EN: en}}
}

// StorageError 包装数据库操作失败，消息中保留底层错误文本
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// ActionResult 是写操作返回给页面的统一结构
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var unauthenticatedText = locale.Text{
	ES: "Usuario no autenticado. Inicia sesión.",
	EN: "User not authenticated. Please log in.",
}

// ResultOf 将写操作的错误转换为 {success, message}
func ResultOf(err error, success locale.Text, language string) ActionResult {
	if err == nil {
		return ActionResult{Success: true, Message: success.In(language)}
	}

	var validationErr *ValidationError
	var storage *StorageError
	switch {
	case errors.As(err, &validationErr):
		return ActionResult{Message: validationErr.Message(language)}
	case errors.Is(err, ErrUnauthenticated):
		return ActionResult{Message: unauthenticatedText.In(language)}
	case errors.As(err, &storage):
		return ActionResult{Message: locale.Pick(language, "Database error: ", "Error en la base de datos: ") + storage.Err.Error()}
	default:
		return ActionResult{Message: err.Error()}
	}
}

// cleanText 去除 HTML 并截断自由文本
func cleanText(value string, maxRunes int) string {
	cleaned := strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(value)))
	if maxRunes > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxRunes {
			cleaned = strings.TrimSpace(string(runes[:maxRunes]))
		}
	}
	return cleaned
}
