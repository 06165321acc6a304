package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/naofumiaoyama/todo-app-first/internal/domain"
	"github.com/naofumiaoyama/todo-app-first/internal/repository"
)

// GormTodoRepository 是 TodoRepository 接口的 GORM 实现
type GormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository 创建 GormTodoRepository 实例
func NewGormTodoRepository(db *gorm.DB) *GormTodoRepository {
	if db == nil {
		panic("database connection cannot be nil for GormTodoRepository")
	}
	return &GormTodoRepository{db: db}
}

// FindByOwner 实现按所有者查询待办事项列表
// 按主键升序 (即插入顺序) 返回，offset/limit 由 Service 层保证有效。
func (r *GormTodoRepository) FindByOwner(ctx context.Context, ownerID uint, offset, limit int) ([]domain.Todo, error) {
	var todos []domain.Todo
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find todos by owner %d: %w", ownerID, err)
	}
	return todos, nil
}

// FindOwned 实现按 id + owner_id 查找单条待办事项
// 记录不存在与记录属于他人统一映射为 ErrTodoNotFound。
func (r *GormTodoRepository) FindOwned(ctx context.Context, id, ownerID uint) (*domain.Todo, error) {
	var todo domain.Todo
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&todo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTodoNotFound
		}
		return nil, fmt.Errorf("gorm: find todo %d for owner %d: %w", id, ownerID, err)
	}
	return &todo, nil
}

// Create 实现在事务中插入新的待办事项
func (r *GormTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(todo).Error
	})
	if err != nil {
		return fmt.Errorf("gorm: create todo (owner: %d): %w", todo.OwnerID, err)
	}
	return nil
}

// Update 实现在事务中保存修改后的待办事项
// GORM 的 autoUpdateTime 会在保存时刷新 updated_at，
// 字段修改和时间戳刷新在同一事务中一起提交。
func (r *GormTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(todo).Error
	})
	if err != nil {
		return fmt.Errorf("gorm: update todo %d (owner: %d): %w", todo.ID, todo.OwnerID, err)
	}
	return nil
}

// Delete 实现在事务中删除属于 ownerID 的待办事项
// 没有行受影响时返回 ErrTodoNotFound (不存在与非本人所有不作区分)。
func (r *GormTodoRepository) Delete(ctx context.Context, id, ownerID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&domain.Todo{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrTodoNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return repository.ErrTodoNotFound
		}
		return fmt.Errorf("gorm: delete todo %d for owner %d: %w", id, ownerID, err)
	}
	return nil
}
