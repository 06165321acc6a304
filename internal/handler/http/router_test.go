package http_test

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/naofumiaoyama/todo-app-first/internal/domain"
	handler "github.com/naofumiaoyama/todo-app-first/internal/handler/http"
	"github.com/naofumiaoyama/todo-app-first/internal/middleware"
	"github.com/naofumiaoyama/todo-app-first/internal/repository/mocks"
	"github.com/naofumiaoyama/todo-app-first/internal/service"
)

const testSecret = "handler-test-secret"

// testEnv 把 mock 仓库、服务和完整路由组装成一个可直接发请求的测试环境
type testEnv struct {
	router   *gin.Engine
	userRepo *mocks.UserRepository
	todoRepo *mocks.TodoRepository
	tokens   *service.TokenService
}

// newTestEnv 按照生产路由的形状搭建测试路由 (中间件 + 全部端点)
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logrus.SetLevel(logrus.ErrorLevel)

	userRepo := new(mocks.UserRepository)
	todoRepo := new(mocks.TodoRepository)

	tokens, err := service.NewTokenService(testSecret, "HS256", 30)
	require.NoError(t, err)
	authService, err := service.NewAuthService(userRepo, tokens)
	require.NoError(t, err)
	todoService := service.NewTodoService(todoRepo)

	authHandler := handler.NewAuthHandler(authService)
	todoHandler := handler.NewTodoHandler(todoService)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/users", authHandler.Register)
	api.POST("/token", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(authService))
	{
		protected.GET("/users/me", authHandler.Me)
		protected.GET("/todos", todoHandler.List)
		protected.POST("/todos", todoHandler.Create)
		protected.GET("/todos/:id", todoHandler.Get)
		protected.PUT("/todos/:id", todoHandler.Update)
		protected.DELETE("/todos/:id", todoHandler.Delete)
	}

	return &testEnv{
		router:   router,
		userRepo: userRepo,
		todoRepo: todoRepo,
		tokens:   tokens,
	}
}

// activeUser 构造一个带 bcrypt 哈希密码的活跃用户
func activeUser(t *testing.T, id uint, username, password string) *domain.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &domain.User{
		ID:       id,
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		IsActive: true,
	}
}

// bearerToken 为指定用户名签发一个测试 token
func bearerToken(t *testing.T, env *testEnv, username string) string {
	t.Helper()
	token, err := env.tokens.Issue(username)
	require.NoError(t, err)
	return token
}
