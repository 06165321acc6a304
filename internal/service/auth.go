package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/naofumiaoyama/todo-app-first/internal/domain"
	"github.com/naofumiaoyama/todo-app-first/internal/repository"
)

// AuthService 负责用户认证相关的业务逻辑:
// 注册、登录签发 token、以及按 token 解析当前用户身份。
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
}

// NewAuthService 创建 AuthService 实例。
func NewAuthService(userRepo repository.UserRepository, tokens *TokenService) (*AuthService, error) {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if tokens == nil {
		return nil, fmt.Errorf("TokenService cannot be nil for AuthService")
	}
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}, nil
}

// Register 处理用户注册。
// 用户名和邮箱的格式验证由 Handler 层的 binding 完成，
// 这里只负责重复检查、哈希密码和持久化。
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	logCtx := logrus.WithFields(logrus.Fields{"username": username, "email": email})

	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	// 1. 重复检查 (用户名和邮箱分别给出明确的错误)
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		logCtx.Warn("Registration failed: Username already exists")
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		logCtx.WithError(err).Error("Database error checking username availability")
		return nil, ErrInternalServer
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		logCtx.Warn("Registration failed: Email already exists")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		logCtx.WithError(err).Error("Database error checking email availability")
		return nil, ErrInternalServer
	}

	// 2. 哈希密码
	hashedPassword, err := hashPassword(password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}

	// 3. 创建并保存用户
	user := &domain.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 预检查和插入之间仍可能被并发注册抢先，靠唯一约束兜底
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.WithError(err).Warn("Registration failed: Username or email already exists (unique constraint)")
			return nil, ErrUsernameTaken
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return nil, ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	user.Password = "" // 清除密码哈希再返回
	return user, nil
}

// Login 处理用户登录，成功时返回签名的 bearer token。
// 用户不存在和密码错误对客户端统一返回认证失败；
// 被停用的账号拒绝登录。
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	logCtx := logrus.WithField("username", username)

	// 1. 查找用户
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Login attempt failed: User not found")
		} else {
			logCtx.WithError(err).Warn("Login attempt failed: Error finding user")
		}
		return "", ErrAuthenticationFailed
	}
	if user == nil {
		logCtx.Warn("Login attempt failed: User not found (repo returned nil user without error)")
		return "", ErrAuthenticationFailed
	}

	// 2. 验证密码 (只通过 bcrypt 自身的比较，不做明文比对)
	if !checkPassword(password, user.Password) {
		logCtx.Warn("Login attempt failed: Invalid password")
		return "", ErrAuthenticationFailed
	}

	// 3. 停用账号拒绝认证
	if !user.IsActive {
		logCtx.Warn("Login attempt failed: User is inactive")
		return "", ErrInactiveUser
	}

	// 4. 签发 token
	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		logCtx.WithError(err).Error("Failed to issue token during login")
		return "", ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User logged in successfully")
	return token, nil
}

// ResolveUser 根据 bearer token 解析当前请求的用户身份。
// 每个受保护请求调用一次，其结果是 "谁在发起请求" 的唯一可信来源。
// token 无效/过期或用户已不存在时返回 ErrAuthenticationFailed (硬失败，
// 绝不放行匿名访问)；账号被停用时返回 ErrInactiveUser。
func (s *AuthService) ResolveUser(ctx context.Context, tokenString string) (*domain.User, error) {
	subject, err := s.tokens.Verify(tokenString)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			logrus.Warn("Identity resolution failed: Token expired")
		} else {
			logrus.Warn("Identity resolution failed: Invalid token")
		}
		return nil, ErrAuthenticationFailed
	}

	logCtx := logrus.WithField("username", subject)
	user, err := s.userRepo.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Identity resolution failed: Subject no longer exists")
			return nil, ErrAuthenticationFailed
		}
		logCtx.WithError(err).Error("Database error resolving current user")
		return nil, ErrInternalServer
	}
	if user == nil {
		logCtx.Warn("Identity resolution failed: Repo returned nil user without error")
		return nil, ErrAuthenticationFailed
	}

	if !user.IsActive {
		logCtx.Warn("Identity resolution failed: User is inactive")
		return nil, ErrInactiveUser
	}

	logCtx.WithField("user_id", user.ID).Debug("Current user resolved from token")
	return user, nil
}

// --- 私有辅助函数 ---

// hashPassword 使用 bcrypt 对密码进行哈希处理
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(bytes), nil
}

// checkPassword 验证提供的密码是否与存储的哈希匹配
func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
