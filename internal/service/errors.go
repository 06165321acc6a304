package service

import "errors"

// 业务层错误。Handler 层根据这些错误决定 HTTP 状态码。
var (
	ErrAuthenticationFailed = errors.New("incorrect username or password")
	ErrInvalidInput         = errors.New("username and password are required")
	ErrUsernameTaken        = errors.New("username already registered")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInactiveUser         = errors.New("inactive user")
	ErrTodoNotFound         = errors.New("todo not found")
	ErrEmptyTitle           = errors.New("title must not be empty")
	ErrInvalidPriority      = errors.New("priority must be 1 (low), 2 (medium) or 3 (high)")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrInternalServer       = errors.New("internal server error")
)
