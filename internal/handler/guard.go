package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/allive/internal/auth"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// SessionName 是会话 cookie 名
	SessionName = "allive_session"

	sessionAccessToken  = "access_token"
	sessionRefreshToken = "refresh_token"
	sessionUserID       = "user_id"

	userContextKey = "__current_user"

	authLanding      = "/login"
	protectedLanding = "/stats"
)

var (
	protectedPrefixes = []string{"/stats", "/exercises", "/nutrition", "/sleep", "/hydration"}
	authPaths         = []string{"/login", "/signup"}
)

type routeClass int

const (
	routeUnclassified routeClass = iota
	routeHome
	routeProtected
	routeAuth
)

func classifyPath(path string) routeClass {
	if path == "/" || path == "" {
		return routeHome
	}
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return routeProtected
		}
	}
	for _, candidate := range authPaths {
		if path == candidate || path == candidate+"/" {
			return routeAuth
		}
	}
	return routeUnclassified
}

// RouteGuard 按路径分类与会话状态重定向；身份查询失败时放行并记录日志
func (a *API) RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/static/") {
			c.Next()
			return
		}

		user, err := a.resolveUser(c)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "route guard identity lookup failed, passing through",
				slog.String("path", path),
				slog.Any("error", err),
			)
			c.Next()
			return
		}
		if user != nil {
			c.Set(userContextKey, *user)
		}

		switch classifyPath(path) {
		case routeHome:
			if user == nil {
				redirect(c, authLanding)
			} else {
				redirect(c, protectedLanding)
			}
			return
		case routeProtected:
			if user == nil {
				redirect(c, authLanding)
				return
			}
		case routeAuth:
			if user != nil {
				redirect(c, protectedLanding)
				return
			}
		}
		c.Next()
	}
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// resolveUser 通过会话中的访问令牌查询身份；过期时用刷新令牌续期并写回会话
func (a *API) resolveUser(c *gin.Context) (*auth.User, error) {
	if a.auth == nil {
		return nil, auth.ErrProviderNotConfigured
	}

	session := sessions.Default(c)
	accessToken, _ := session.Get(sessionAccessToken).(string)
	if accessToken == "" {
		return nil, nil
	}

	ctx := c.Request.Context()
	user, err := a.auth.GetUser(ctx, accessToken)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, auth.ErrTokenExpired):
		return a.refreshSession(ctx, c, session)
	case errors.Is(err, auth.ErrInvalidToken):
		clearSession(session)
		return nil, nil
	default:
		return nil, err
	}
}

func (a *API) refreshSession(ctx context.Context, c *gin.Context, session sessions.Session) (*auth.User, error) {
	refreshToken, _ := session.Get(sessionRefreshToken).(string)
	if refreshToken == "" {
		clearSession(session)
		return nil, nil
	}

	renewed, err := a.auth.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenExpired) || errors.Is(err, auth.ErrInvalidCredentials) {
			clearSession(session)
			return nil, nil
		}
		return nil, err
	}

	if err := saveSession(session, renewed); err != nil {
		return nil, err
	}
	return &renewed.User, nil
}

func saveSession(session sessions.Session, authSession *auth.Session) error {
	session.Set(sessionAccessToken, authSession.AccessToken)
	session.Set(sessionRefreshToken, authSession.RefreshToken)
	session.Set(sessionUserID, authSession.User.ID)
	return session.Save()
}

func clearSession(session sessions.Session) {
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		slog.Warn("clear session failed", slog.Any("error", err))
	}
}

func currentUser(c *gin.Context) (auth.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return auth.User{}, false
	}
	user, ok := value.(auth.User)
	return user, ok
}

func currentUserID(c *gin.Context) string {
	user, _ := currentUser(c)
	return user.ID
}
