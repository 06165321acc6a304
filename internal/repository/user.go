package repository

import (
	"context"

	"github.com/naofumiaoyama/todo-app-first/internal/domain"
)

// UserRepository 定义了用户数据的存储和检索操作。
type UserRepository interface {
	// FindByUsername 根据用户名查找用户。
	// 如果用户不存在，返回 ErrUserNotFound。
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByEmail 根据邮箱查找用户。
	// 如果用户不存在，返回 ErrUserNotFound。
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// Create 持久化一个新用户。
	// 违反用户名/邮箱唯一约束时返回 ErrDuplicateEntry。
	// 成功后 user.ID 和时间戳由数据库填充。
	Create(ctx context.Context, user *domain.User) error
}
