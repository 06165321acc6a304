package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenService 负责签发和验证无状态的 JWT bearer token。
// token 是自包含的，不维护服务端吊销列表。
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewTokenService 创建 TokenService 实例。
// secret 必须由外部配置提供，绝不允许硬编码默认值。
// algorithm 仅支持 HMAC 族 (HS256/HS384/HS512)。
// ttlMinutes <= 0 时使用默认 30 分钟。
func NewTokenService(secret, algorithm string, ttlMinutes int) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token signing secret cannot be empty")
	}
	if algorithm == "" {
		algorithm = "HS256"
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm: %s", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %s (only HMAC is supported)", algorithm)
	}
	if ttlMinutes <= 0 {
		ttlMinutes = 30 // 默认 30 分钟
	}
	return &TokenService{
		secret: []byte(secret),
		method: method,
		ttl:    time.Duration(ttlMinutes) * time.Minute,
	}, nil
}

// Issue 为指定用户名签发一个有时效的 token。
// claims: {sub: username, exp: now+ttl, iat: now}
func (s *TokenService) Issue(username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(s.method, jwt.MapClaims{
		"sub": username,
		"exp": now.Add(s.ttl).Unix(),
		"iat": now.Unix(),
	})
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify 解析并验证 token 字符串，成功时返回 subject (用户名)。
// 过期返回 ErrTokenExpired，其余验证失败统一返回 ErrInvalidToken。
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法与配置一致，防止算法替换攻击
		if token.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var validationError *jwt.ValidationError
		if errors.As(err, &validationError) && validationError.Errors&jwt.ValidationErrorExpired != 0 {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}
