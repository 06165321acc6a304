// Package http 包含基于 gin 的 HTTP 处理逻辑和请求/响应结构。
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/naofumiaoyama/todo-app-first/internal/domain"
	"github.com/naofumiaoyama/todo-app-first/internal/middleware"
	"github.com/naofumiaoyama/todo-app-first/internal/service"
)

// AuthHandler 封装了与用户注册、登录和身份查询相关的 HTTP 处理逻辑
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest 定义注册请求的结构体
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// UserResponse 是用户的对外公开视图 (绝不包含密码哈希)
type UserResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		Username: user.Username,
		Email:    user.Email,
		IsActive: user.IsActive,
	}
}

// Register 处理用户注册请求 (POST /api/users)
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	// 1. 绑定并验证输入 JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Register: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	// 2. 调用 Service 层处理注册逻辑
	newUser, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		logrus.WithFields(logrus.Fields{"username": req.Username, "email": req.Email}).
			WithError(err).Warn("Handler.Register: Registration failed")
		HandleServiceError(c, err)
		return
	}

	// 3. 注册成功响应
	logrus.WithField("user_id", newUser.ID).Info("Handler.Register: User registered successfully")
	c.JSON(http.StatusCreated, newUserResponse(newUser))
}

// LoginRequest 定义登录请求的结构体。
// 按 OAuth2 password-grant 惯例使用表单编码，而不是 JSON。
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// TokenResponse 定义登录成功的响应结构体
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login 处理用户登录请求 (POST /api/token)
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	// 1. 绑定并验证表单输入
	if err := c.ShouldBind(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Login: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: username and password required"})
		return
	}

	// 2. 调用 Service 层处理登录逻辑
	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logrus.WithField("username", req.Username).WithError(err).Warn("Handler.Login: Login failed")
		HandleServiceError(c, err)
		return
	}

	// 3. 登录成功响应
	logrus.WithField("username", req.Username).Info("Handler.Login: User logged in successfully")
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Me 返回当前认证用户的公开视图 (GET /api/users/me)
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		// Auth 中间件缺失或失败，不应该到达这里
		logrus.Error("Handler.Me: Current user not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}
