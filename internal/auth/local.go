package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/allive/internal/db"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength 与 GoTrue 默认的最短密码一致
const MinPasswordLength = 6

// LocalProvider 使用本地 users 表与 bcrypt 哈希实现 Provider
type LocalProvider struct {
	db     *gorm.DB
	tokens *TokenIssuer
}

// NewLocalProvider 构造 LocalProvider
func NewLocalProvider(gdb *gorm.DB, tokens *TokenIssuer) *LocalProvider {
	return &LocalProvider{db: gdb, tokens: tokens}
}

// SignUp 创建用户并直接登录
func (p *LocalProvider) SignUp(ctx context.Context, email, password, username string) (*Session, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" || password == "" || username == "" {
		return nil, &ValidationError{Message: "Email, username, and password are required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &ValidationError{Message: "Invalid email address"}
	}
	if len(password) < MinPasswordLength {
		return nil, &ValidationError{Message: fmt.Sprintf("Password should be at least %d characters", MinPasswordLength)}
	}

	var count int64
	if err := p.db.WithContext(ctx).Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	record := db.User{
		ID:       uuid.NewString(),
		Email:    email,
		Username: username,
		Password: string(hashed),
	}
	if err := p.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return p.tokens.Issue(toUser(record))
}

// SignIn 校验邮箱与密码
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, &ValidationError{Message: "Missing email or password"}
	}

	var record db.User
	if err := p.db.WithContext(ctx).Where("email = ?", email).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return p.tokens.Issue(toUser(record))
}

// GetUser 校验 access 令牌并确认用户仍然存在
func (p *LocalProvider) GetUser(ctx context.Context, accessToken string) (*User, error) {
	claimed, err := p.tokens.Parse(accessToken, tokenTypeAccess)
	if err != nil {
		return nil, err
	}

	record, err := p.findUser(ctx, claimed.ID)
	if err != nil {
		return nil, err
	}
	user := toUser(*record)
	return &user, nil
}

// Refresh 使用 refresh 令牌换取新的令牌对
func (p *LocalProvider) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claimed, err := p.tokens.Parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	record, err := p.findUser(ctx, claimed.ID)
	if err != nil {
		return nil, err
	}
	return p.tokens.Issue(toUser(*record))
}

// EnsureUser 在邮箱与密码均非空且账号不存在时创建用户，用于启动时的种子账号。
func (p *LocalProvider) EnsureUser(ctx context.Context, email, password, username string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}
	if strings.TrimSpace(username) == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	_, err := p.SignUp(ctx, email, password, username)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	return err
}

func (p *LocalProvider) findUser(ctx context.Context, id string) (*db.User, error) {
	var record db.User
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &record, nil
}

func toUser(record db.User) User {
	return User{ID: record.ID, Email: record.Email, Username: record.Username}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
