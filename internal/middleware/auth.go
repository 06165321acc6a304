package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/naofumiaoyama/todo-app-first/internal/domain"
	"github.com/naofumiaoyama/todo-app-first/internal/service"
)

// CurrentUserKey 是解析出的当前用户在 Gin 上下文中的键。
const CurrentUserKey = "current_user"

// ErrMissingAuthHeader 表示缺少 Authorization 头
var ErrMissingAuthHeader = errors.New("missing Authorization header")

// Auth 返回一个 Gin 中间件，用于解析 bearer token 对应的用户身份。
// 每个受保护请求经过一次: 验证 token -> 查找用户 -> 检查 is_active，
// 任何一步失败都硬性终止请求，绝不放行匿名访问。
// 成功时将 *domain.User 存入上下文供后续 Handler 使用。
func Auth(authService *service.AuthService) gin.HandlerFunc {
	if authService == nil {
		panic("AuthService cannot be nil for Auth middleware")
	}

	return func(c *gin.Context) {
		// 1. 从请求头提取 Token
		tokenStr, err := extractToken(c)
		if err != nil {
			if errors.Is(err, ErrMissingAuthHeader) {
				logrus.Warn("Auth middleware: Missing Authorization header")
			} else {
				logrus.WithError(err).Warn("Auth middleware: Malformed Authorization header")
			}
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		// 2. 解析当前用户 (验证签名/有效期 + 数据库查找 + 活跃检查)
		user, err := authService.ResolveUser(c.Request.Context(), tokenStr)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInactiveUser):
				// 身份有效但账号已停用，与登录端点保持一致返回 400
				logrus.Warn("Auth middleware: Inactive user")
				c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInactiveUser.Error()})
			case errors.Is(err, service.ErrInternalServer):
				logrus.WithError(err).Error("Auth middleware: Internal error resolving user")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not validate credentials"})
			default:
				logrus.WithError(err).Warn("Auth middleware: Invalid or expired token")
				c.Header("WWW-Authenticate", "Bearer")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			}
			c.Abort()
			return
		}

		// 3. 将解析出的用户存入上下文，作为 "谁在请求" 的唯一来源
		c.Set(CurrentUserKey, user)
		logrus.WithField("user_id", user.ID).Debug("Auth middleware: User authenticated via bearer token")

		c.Next()
	}
}

// CurrentUser 从 Gin 上下文中取出 Auth 中间件解析的用户。
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*domain.User)
	return user, ok
}

// extractToken 从 Gin 上下文中提取 Bearer Token
func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	// Authorization header 格式应为 "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header is not a bearer token")
	}
	return parts[1], nil
}
