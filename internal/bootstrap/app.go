// Package bootstrap 负责加载配置、组装各层组件并管理应用生命周期。
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "github.com/naofumiaoyama/todo-app-first/internal/handler/http"
	gormpersistence "github.com/naofumiaoyama/todo-app-first/internal/infra/persistence/gorm"
	"github.com/naofumiaoyama/todo-app-first/internal/infra/setup"
	"github.com/naofumiaoyama/todo-app-first/internal/middleware"
	"github.com/naofumiaoyama/todo-app-first/internal/service"
)

// Config 结构体用于存储从环境变量或 .env 文件加载的配置。
// 进程启动时读取一次，之后不可变；请求处理路径上不读取任何环境变量。
type Config struct {
	DBUser          string
	DBPassword      string
	DBHost          string
	DBPort          string
	DBName          string
	JWTSecret       string
	JWTAlgorithm    string
	TokenTTLMinutes int
	ServerPort      string
	LogLevel        string
	AppEnv          string // development/production
	CORSOrigins     []string
	SeedDemoData    bool
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)，忽略错误，允许只使用环境变量
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBHost:       os.Getenv("DB_HOST"),
		DBPort:       os.Getenv("DB_PORT"),
		DBName:       os.Getenv("DB_NAME"),
		JWTSecret:    os.Getenv("SECRET_KEY"),
		JWTAlgorithm: os.Getenv("ALGORITHM"),
		ServerPort:   os.Getenv("SERVER_PORT"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		AppEnv:       os.Getenv("APP_ENV"),
	}

	// token 有效期，单位分钟
	cfg.TokenTTLMinutes, _ = strconv.Atoi(os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"))

	// --- 设置默认值和进行必要检查 ---
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.JWTAlgorithm == "" {
		cfg.JWTAlgorithm = "HS256"
	}
	if cfg.TokenTTLMinutes <= 0 {
		cfg.TokenTTLMinutes = 30
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("environment variable SECRET_KEY must be set")
	}

	// 允许的跨域来源，逗号分隔
	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:5173"
	}
	for _, origin := range strings.Split(origins, ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	// 演示数据只在显式开启时创建
	cfg.SeedDemoData = os.Getenv("SEED_DEMO_DATA") == "true"

	// 验证日志级别
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App 结构体包含应用的所有组件和配置
type App struct {
	Config     *Config
	Log        *logrus.Logger
	DB         *gorm.DB
	HttpServer *http.Server
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 初始化 Logger
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel) // cfg.LogLevel 已被 LoadConfig 验证
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	log.Infof("Logger initialized (Level: %s)", logLevel.String())

	// 3. 初始化基础设施
	log.Info("Initializing infrastructure...")
	db, err := setup.InitDB(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	log.Info("Database initialized")

	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database migrated")

	if cfg.SeedDemoData {
		if err := setup.SeedDemoData(db); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	// 4. 初始化 Repositories
	userRepo := gormpersistence.NewGormUserRepository(db)
	todoRepo := gormpersistence.NewGormTodoRepository(db)
	log.Info("Repositories initialized")

	// 5. 初始化 Services
	tokenService, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTLMinutes)
	if err != nil {
		return nil, fmt.Errorf("failed to create TokenService: %w", err)
	}
	authService, err := service.NewAuthService(userRepo, tokenService)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	todoService := service.NewTodoService(todoRepo)
	log.Info("Services initialized")

	// 6. 初始化 Handlers
	authHandler := httpHandler.NewAuthHandler(authService)
	todoHandler := httpHandler.NewTodoHandler(todoService)
	log.Info("Handlers initialized")

	// 7. 初始化 Gin Engine 和路由
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.CORSOrigins))

	// --- 设置路由 ---
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

	// 健康检查
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Todo API is running"})
	})
	log.Info("Router setup complete")

	// 8. 初始化 HTTP Server
	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	return &App{
		Config:     cfg,
		Log:        log,
		DB:         db,
		HttpServer: httpServer,
	}, nil
}

// Start 启动 HTTP 服务器
func (a *App) Start() {
	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	a.Log.Info("Application shutdown complete.")
}

// CORSMiddleware 创建一个 Gin 中间件，按配置的来源处理跨域请求
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggerMiddleware 创建一个 Gin 中间件用于记录请求日志
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   clientIP,
			"method":      method,
			"path":        path,
		})

		if errorMessage != "" {
			entry.Error(errorMessage)
		} else {
			// 区分状态码记录日志级别
			if statusCode >= 500 {
				entry.Error("Server error")
			} else if statusCode >= 400 {
				entry.Warn("Client error")
			} else {
				entry.Info("Request handled")
			}
		}
	}
}
