package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidCredentials 在邮箱或密码错误时返回
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken 在注册邮箱已存在时返回
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidToken 在令牌无法解析、签名不符或用户不存在时返回
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired 在令牌过期时返回，可用刷新令牌换新
	ErrTokenExpired = errors.New("token expired")
	// ErrProviderNotConfigured 在远程认证服务缺少地址或密钥时于首次调用返回
	ErrProviderNotConfigured = errors.New("auth provider is not configured")
	// ErrProviderUnavailable 在认证服务不可达或返回 5xx 时返回
	ErrProviderUnavailable = errors.New("auth provider unavailable")
)

// User 是认证后的用户身份。
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

// Session 是一次登录/刷新得到的令牌对。
type Session struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	User         User   `json:"user"`
}

// Provider 是外部身份服务的抽象，路由守卫与各处理器只依赖它。
type Provider interface {
	SignUp(ctx context.Context, email, password, username string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	GetUser(ctx context.Context, accessToken string) (*User, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}

// ValidationError 表示请求字段缺失或不合法。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// APIError 携带远程认证服务返回的状态码与消息。
type APIError struct {
	Status  int
	Message string
	kind    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth provider responded %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

// StatusFor 将认证错误映射为 HTTP 状态码。
func StatusFor(err error) int {
	var apiErr *APIError
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
