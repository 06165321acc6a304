package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/naofumiaoyama/todo-app-first/internal/domain"
	"github.com/naofumiaoyama/todo-app-first/internal/repository"
)

// 列表分页默认值
const (
	defaultListLimit = 100
)

// TodoService 负责待办事项的业务逻辑。
// 所有操作都以调用方解析出的用户 id 为准，绝不信任请求体里的所有者字段。
type TodoService struct {
	todoRepo repository.TodoRepository
}

// NewTodoService 创建 TodoService 实例。
func NewTodoService(todoRepo repository.TodoRepository) *TodoService {
	if todoRepo == nil {
		panic("TodoRepository cannot be nil for TodoService")
	}
	return &TodoService{todoRepo: todoRepo}
}

// TodoUpdate 描述一次部分更新。nil 字段保持原值不变。
type TodoUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *int
}

// List 返回指定用户的待办事项，按主键升序分页。
// skip < 0 时归零，limit <= 0 时使用默认值 100。
func (s *TodoService) List(ctx context.Context, ownerID uint, skip, limit int) ([]domain.Todo, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	todos, err := s.todoRepo.FindByOwner(ctx, ownerID, skip, limit)
	if err != nil {
		logrus.WithField("owner_id", ownerID).WithError(err).Error("Failed to list todos")
		return nil, ErrInternalServer
	}
	if todos == nil {
		todos = []domain.Todo{} // 空列表序列化为 []，而不是 null
	}
	return todos, nil
}

// Create 为指定用户创建一条新的待办事项。
// priority 为 0 (未提供) 时默认 medium；标题不能为空白。
func (s *TodoService) Create(ctx context.Context, ownerID uint, title, description string, priority int) (*domain.Todo, error) {
	logCtx := logrus.WithField("owner_id", ownerID)

	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	if priority == 0 {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, ErrInvalidPriority
	}

	todo := &domain.Todo{
		Title:       title,
		Description: description,
		Completed:   false,
		Priority:    priority,
		OwnerID:     ownerID,
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		logCtx.WithError(err).Error("Failed to create todo")
		return nil, ErrInternalServer
	}

	logCtx.WithField("todo_id", todo.ID).Info("Todo created successfully")
	return todo, nil
}

// Get 返回属于 ownerID 的单条待办事项。
// 不存在与属于他人统一返回 ErrTodoNotFound。
func (s *TodoService) Get(ctx context.Context, todoID, ownerID uint) (*domain.Todo, error) {
	todo, err := s.todoRepo.FindOwned(ctx, todoID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		logrus.WithFields(logrus.Fields{"todo_id": todoID, "owner_id": ownerID}).
			WithError(err).Error("Failed to get todo")
		return nil, ErrInternalServer
	}
	return todo, nil
}

// Update 对属于 ownerID 的待办事项应用部分更新。
// 只有非 nil 的字段被修改；没有任何字段的更新仍会保存并刷新 updated_at。
// 验证在任何存储写入之前完成。
func (s *TodoService) Update(ctx context.Context, todoID, ownerID uint, update TodoUpdate) (*domain.Todo, error) {
	logCtx := logrus.WithFields(logrus.Fields{"todo_id": todoID, "owner_id": ownerID})

	// 1. 先验证，再触碰存储
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if update.Priority != nil && !domain.ValidPriority(*update.Priority) {
		return nil, ErrInvalidPriority
	}

	// 2. 所有权检查和读取
	todo, err := s.todoRepo.FindOwned(ctx, todoID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		logCtx.WithError(err).Error("Failed to load todo for update")
		return nil, ErrInternalServer
	}

	// 3. 只应用提供的字段
	if update.Title != nil {
		todo.Title = *update.Title
	}
	if update.Description != nil {
		todo.Description = *update.Description
	}
	if update.Completed != nil {
		todo.Completed = *update.Completed
	}
	if update.Priority != nil {
		todo.Priority = *update.Priority
	}

	// 4. 保存 (事务内提交，updated_at 一并刷新)
	if err := s.todoRepo.Update(ctx, todo); err != nil {
		logCtx.WithError(err).Error("Failed to update todo")
		return nil, ErrInternalServer
	}

	logCtx.Info("Todo updated successfully")
	return todo, nil
}

// Delete 删除属于 ownerID 的待办事项。
func (s *TodoService) Delete(ctx context.Context, todoID, ownerID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"todo_id": todoID, "owner_id": ownerID})

	if err := s.todoRepo.Delete(ctx, todoID, ownerID); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return ErrTodoNotFound
		}
		logCtx.WithError(err).Error("Failed to delete todo")
		return ErrInternalServer
	}

	logCtx.Info("Todo deleted successfully")
	return nil
}
