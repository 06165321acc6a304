package repository

import (
	"context"

	"github.com/naofumiaoyama/todo-app-first/internal/domain"
)

// TodoRepository 定义了待办事项数据的存储和检索操作。
// 所有单条记录的操作都必须同时按 id 和 owner_id 过滤:
// 记录不存在和记录属于他人对调用方是不可区分的 (都返回 ErrTodoNotFound)。
type TodoRepository interface {
	// FindByOwner 返回指定用户的待办事项，按主键升序排列，
	// 并按 offset/limit 分页。纯读操作，可重复执行。
	FindByOwner(ctx context.Context, ownerID uint, offset, limit int) ([]domain.Todo, error)

	// FindOwned 查找属于 ownerID 的单条待办事项。
	// 记录不存在或属于其他用户时返回 ErrTodoNotFound。
	FindOwned(ctx context.Context, id, ownerID uint) (*domain.Todo, error)

	// Create 在事务中持久化一条新的待办事项。
	// 成功后 todo.ID 和时间戳由数据库填充。
	Create(ctx context.Context, todo *domain.Todo) error

	// Update 在事务中保存修改后的待办事项，updated_at 随之刷新。
	Update(ctx context.Context, todo *domain.Todo) error

	// Delete 在事务中删除属于 ownerID 的待办事项。
	// 没有匹配的行时返回 ErrTodoNotFound。
	Delete(ctx context.Context, id, ownerID uint) error
}
