package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/naofumiaoyama/todo-app-first/internal/domain"
	"github.com/naofumiaoyama/todo-app-first/internal/middleware"
	"github.com/naofumiaoyama/todo-app-first/internal/service"
)

// TodoHandler 封装了待办事项 CRUD 的 HTTP 处理逻辑。
// 所有操作都以 Auth 中间件解析出的用户为所有者，
// 请求体和查询参数里不存在可信任的用户 id。
type TodoHandler struct {
	todoService *service.TodoService
}

// NewTodoHandler 创建 TodoHandler 实例
func NewTodoHandler(todoService *service.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// CreateTodoRequest 定义创建待办事项请求的结构体
type CreateTodoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    int    `json:"priority" binding:"omitempty,oneof=1 2 3"`
}

// UpdateTodoRequest 定义部分更新请求的结构体。所有字段均可选。
type UpdateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	Priority    *int    `json:"priority" binding:"omitempty,oneof=1 2 3"`
}

// List 返回当前用户的待办事项列表 (GET /api/todos?skip=&limit=)
func (h *TodoHandler) List(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	todos, err := h.todoService.List(c.Request.Context(), user.ID, skip, limit)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

// Create 为当前用户创建一条待办事项 (POST /api/todos)
func (h *TodoHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateTodo: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	todo, err := h.todoService.Create(c.Request.Context(), user.ID, req.Title, req.Description, req.Priority)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "todo_id": todo.ID}).
		Info("Handler.CreateTodo: Todo created successfully")
	c.JSON(http.StatusCreated, todo)
}

// Get 返回当前用户的单条待办事项 (GET /api/todos/:id)
func (h *TodoHandler) Get(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	todoID, ok := parseTodoID(c)
	if !ok {
		return
	}

	todo, err := h.todoService.Get(c.Request.Context(), todoID, user.ID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// Update 对当前用户的待办事项应用部分更新 (PUT /api/todos/:id)
func (h *TodoHandler) Update(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	todoID, ok := parseTodoID(c)
	if !ok {
		return
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.UpdateTodo: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	todo, err := h.todoService.Update(c.Request.Context(), todoID, user.ID, service.TodoUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "todo_id": todo.ID}).
		Info("Handler.UpdateTodo: Todo updated successfully")
	c.JSON(http.StatusOK, todo)
}

// Delete 删除当前用户的待办事项 (DELETE /api/todos/:id)
func (h *TodoHandler) Delete(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	todoID, ok := parseTodoID(c)
	if !ok {
		return
	}

	if err := h.todoService.Delete(c.Request.Context(), todoID, user.ID); err != nil {
		HandleServiceError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "todo_id": todoID}).
		Info("Handler.DeleteTodo: Todo deleted successfully")
	c.Status(http.StatusNoContent)
}

// --- 私有辅助函数 ---

// requireUser 从上下文取出 Auth 中间件解析的当前用户
func requireUser(c *gin.Context) (*domain.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		logrus.Error("Handler: Current user not found in context, middleware missing or failed?")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}
	return user, true
}

// parseTodoID 解析路径参数中的待办事项 id
// 非法 id 不可能匹配任何记录，与所有权过滤保持一致地返回 404。
func parseTodoID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, service.ErrTodoNotFound.Error())
		return 0, false
	}
	return uint(id), true
}
