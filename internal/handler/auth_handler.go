package handler

import (
	"log/slog"
	"net/http"

	"github.com/allive/internal/auth"
	"github.com/allive/internal/locale"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type authPayload struct {
	User      auth.User `json:"user"`
	ExpiresIn int       `json:"expires_in,omitempty"`
	// Pending 表示注册成功但认证服务要求先确认邮箱，尚未建立会话
	Pending bool `json:"pending,omitempty"`
}

func respondAuthError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"ok": false, "error": message})
}

func (a *API) bindCredentials(c *gin.Context) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondAuthError(c, http.StatusBadRequest, locale.Pick(a.language(c), "Invalid request body", "Cuerpo de la solicitud no válido"))
		return req, false
	}
	return req, true
}

// Login 用邮箱密码换取会话，并写入会话 cookie
func (a *API) Login(c *gin.Context) {
	req, ok := a.bindCredentials(c)
	if !ok {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondAuthError(c, http.StatusBadRequest, locale.Pick(a.language(c), "Email and password are required", "El correo y la contraseña son requeridos"))
		return
	}

	session, err := a.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		a.respondProviderError(c, "sign in", err)
		return
	}

	if err := saveSession(sessions.Default(c), session); err != nil {
		respondAuthError(c, http.StatusInternalServerError, locale.Pick(a.language(c), "Failed to save session", "No se pudo guardar la sesión"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "data": authPayload{User: session.User, ExpiresIn: session.ExpiresIn}})
}

// Signup 注册新用户；认证服务直接返回令牌时同时建立会话
func (a *API) Signup(c *gin.Context) {
	req, ok := a.bindCredentials(c)
	if !ok {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondAuthError(c, http.StatusBadRequest, locale.Pick(a.language(c), "Email and password are required", "El correo y la contraseña son requeridos"))
		return
	}

	session, err := a.auth.SignUp(c.Request.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		a.respondProviderError(c, "sign up", err)
		return
	}

	payload := authPayload{User: session.User, ExpiresIn: session.ExpiresIn}
	if session.AccessToken == "" {
		payload.Pending = true
	} else if err := saveSession(sessions.Default(c), session); err != nil {
		respondAuthError(c, http.StatusInternalServerError, locale.Pick(a.language(c), "Failed to save session", "No se pudo guardar la sesión"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": payload})
}

// Logout 清除会话 cookie
func (a *API) Logout(c *gin.Context) {
	clearSession(sessions.Default(c))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *API) respondProviderError(c *gin.Context, op string, err error) {
	status := auth.StatusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "auth provider failed",
			slog.String("op", op),
			slog.Any("error", err),
		)
	}
	respondAuthError(c, status, err.Error())
}

// ShowLogin 返回登录页数据
func (a *API) ShowLogin(c *gin.Context) {
	language := a.language(c)
	c.JSON(http.StatusOK, gin.H{"page": "login", "title": localizeFixedTitle(language, "Iniciar sesión"), "language": language})
}

// ShowSignup 返回注册页数据
func (a *API) ShowSignup(c *gin.Context) {
	language := a.language(c)
	c.JSON(http.StatusOK, gin.H{"page": "signup", "title": localizeFixedTitle(language, "Crear cuenta"), "language": language})
}
