package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GoTrueProvider 将认证委托给兼容 Supabase GoTrue 的远程服务。
type GoTrueProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGoTrueProvider 构造 GoTrueProvider。地址或密钥为空时不报错，首次调用时返回 ErrProviderNotConfigured。
func NewGoTrueProvider(baseURL, apiKey string, client *http.Client) *GoTrueProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoTrueProvider{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client:  client,
	}
}

type gotrueUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Username string `json:"username"`
	} `json:"user_metadata"`
}

type gotrueTokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         *gotrueUser `json:"user"`

	// 关闭自动确认时 signup 直接返回用户对象
	gotrueUser
}

type gotrueErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (r gotrueErrorResponse) text() string {
	for _, candidate := range []string{r.ErrorDescription, r.Msg, r.Message, r.Error} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

func (p *GoTrueProvider) SignUp(ctx context.Context, email, password, username string) (*Session, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" || password == "" || username == "" {
		return nil, &ValidationError{Message: "Email, username, and password are required"}
	}

	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"username": username},
	}

	var resp gotrueTokenResponse
	if err := p.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &resp); err != nil {
		return nil, err
	}
	return resp.session(), nil
}

func (p *GoTrueProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, &ValidationError{Message: "Missing email or password"}
	}

	var resp gotrueTokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := p.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &resp); err != nil {
		return nil, err
	}
	return resp.session(), nil
}

func (p *GoTrueProvider) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrInvalidToken
	}

	var resp gotrueUser
	if err := p.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, ErrInvalidToken
	}

	user := resp.toUser()
	return &user, nil
}

func (p *GoTrueProvider) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrInvalidToken
	}

	var resp gotrueTokenResponse
	body := map[string]string{"refresh_token": refreshToken}
	if err := p.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", body, &resp); err != nil {
		return nil, err
	}
	return resp.session(), nil
}

func (p *GoTrueProvider) do(ctx context.Context, method, path, bearer string, body, out any) error {
	if p.baseURL == "" || p.apiKey == "" {
		return ErrProviderNotConfigured
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if bearer == "" {
		bearer = p.apiKey
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrProviderUnavailable, err)
	}

	if resp.StatusCode >= 300 {
		return classifyGoTrueError(path, resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func classifyGoTrueError(path string, status int, raw []byte) error {
	var payload gotrueErrorResponse
	_ = json.Unmarshal(raw, &payload)
	message := payload.text()
	if message == "" {
		message = http.StatusText(status)
	}
	lower := strings.ToLower(message)

	apiErr := &APIError{Status: status, Message: message}
	switch {
	case status >= 500:
		apiErr.kind = ErrProviderUnavailable
	case strings.Contains(lower, "already registered") || strings.Contains(lower, "already exists"):
		apiErr.kind = ErrEmailTaken
	case strings.HasPrefix(path, "/auth/v1/user") && strings.Contains(lower, "expired"):
		apiErr.kind = ErrTokenExpired
	case strings.HasPrefix(path, "/auth/v1/user"), strings.Contains(path, "grant_type=refresh_token"):
		apiErr.kind = ErrInvalidToken
	default:
		apiErr.kind = ErrInvalidCredentials
	}
	return apiErr
}

func (r gotrueTokenResponse) session() *Session {
	user := r.gotrueUser
	if r.User != nil {
		user = *r.User
	}
	return &Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    r.ExpiresIn,
		User:         user.toUser(),
	}
}

func (u gotrueUser) toUser() User {
	return User{ID: u.ID, Email: u.Email, Username: u.UserMetadata.Username}
}
