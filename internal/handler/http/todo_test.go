package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naofumiaoyama/todo-app-first/internal/domain"
	"github.com/naofumiaoyama/todo-app-first/internal/repository"
)

// authedRequest 构造一个带 bearer token 的请求
func authedRequest(t *testing.T, env *testEnv, method, path, body, username string) *http.Request {
	t.Helper()
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, env, username))
	return req
}

func TestListTodos_ScopedToCaller(t *testing.T) {
	env := newTestEnv(t)
	user := activeUser(t, 1, "alice", "secret123")

	env.userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)
	// 列表查询只会带上解析出的用户 id
	env.todoRepo.On("FindByOwner", mock.Anything, uint(1), 0, 100).
		Return([]domain.Todo{
			{ID: 1, Title: "First", OwnerID: 1},
			{ID: 2, Title: "Second", OwnerID: 1},
		}, nil).Once()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest(t, env, http.MethodGet, "/api/todos", "", "alice"))

	assert.Equal(t, http.StatusOK, w.Code)

	var todos []domain.Todo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todos))
	assert.Len(t, todos, 2)
	assert.Equal(t, "First", todos[0].Title)

	env.todoRepo.AssertExpectations(t)
}

func TestListTodos_Pagination(t *testing.T) {
	env := newTestEnv(t)
	user := activeUser(t, 1, "alice", "secret123")

	env.userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)
	env.todoRepo.On("FindByOwner", mock.Anything, uint(1), 5, 10).
		Return([]domain.Todo{}, nil).Once()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest(t, env, http.MethodGet, "/api/todos?skip=5&limit=10", "", "alice"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()), "空结果应为 JSON 空数组")

	env.todoRepo.AssertExpectations(t)
}

func TestCreateTodo_Success(t *testing.T) {
	env := newTestEnv(t)
	user := activeUser(t, 1, "alice", "secret123")

	env.userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)
	env.todoRepo.On("Create", mock.Anything, mock.MatchedBy(func(todo *domain.Todo) bool {
		// 所有者必须来自解析出的身份，而不是请求体
		return todo.OwnerID == 1 && todo.Title == "Buy milk" && todo.Priority == 3
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Todo).ID = 42
		}).
		Return(nil).Once()

	body := `{"title":"Buy milk","priority":3}`
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest(t, env, http.MethodPost, "/api/todos", body, "alice"))

	assert.Equal(t, http.StatusCreated, w.Code)

	var todo domain.Todo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todo))
	assert.Equal(t, uint(42), todo.ID)
	assert.False(t, todo.Completed)
	assert.Equal(t, 3, todo.Priority)

	env.todoRepo.AssertExpectations(t)
}

func TestCreateTodo_MissingTitle(t *testing.T) {
	env := newTestEnv(t)
	user := activeUser(t, 1, "alice", "secret123")

	env.userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest(t, env, http.MethodPost, "/api/todos", `{"priority":1}`, "alice"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.todoRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTodo_InvalidPriority(t *testing.T) {
	env := newTestEnv(t)
	user := activeUser(t, 1, "alice", "secret123")

	env.userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest(t, env, http.MethodPost, "/api/todos", `{"title":"X","priority":9}`, "alice"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.todoRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetTodo_NotFoundForForeignOwner(t *testing.T) {
	// 他人的待办事项返回 404，而不是 403 (对调用方不可区分)
	env := newTestEnv(t)
	bob := activeUser(t, 2, "bob", "secret123")

	env.userRepo.On("FindByUsername", mock.Anything, "bob").Return(bob, nil)
	env.todoRepo.On("FindOwned", mock.Anything, uint(42), uint(2)).
		Return(nil, repository.ErrTodoNotFound).Once()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest(t, env, http.MethodGet, "/api/todos/42", "", "bob"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	env.todoRepo.AssertExpectations(t)
}

func TestGetTodo_BadID(t *testing.T) {
	env := newTestEnv(t)
	user := activeUser(t, 1, "alice", "secret123")

	env.userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest(t, env, http.MethodGet, "/api/todos/abc", "", "alice"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	env.todoRepo.AssertNotCalled(t, "FindOwned", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTodo_Partial(t *testing.T) {
	env := newTestEnv(t)
	user := activeUser(t, 1, "alice", "secret123")
	existing := &domain.Todo{ID: 42, Title: "Buy milk", Priority: 3, OwnerID: 1}

	env.userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)
	env.todoRepo.On("FindOwned", mock.Anything, uint(42), uint(1)).Return(existing, nil).Once()
	env.todoRepo.On("Update", mock.Anything, mock.MatchedBy(func(todo *domain.Todo) bool {
		// 只有 completed 被修改，其余字段保持不变
		return todo.Completed && todo.Title == "Buy milk" && todo.Priority == 3
	})).Return(nil).Once()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest(t, env, http.MethodPut, "/api/todos/42", `{"completed":true}`, "alice"))

	assert.Equal(t, http.StatusOK, w.Code)

	var todo domain.Todo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todo))
	assert.True(t, todo.Completed)
	assert.Equal(t, "Buy milk", todo.Title)

	env.todoRepo.AssertExpectations(t)
}

func TestUpdateTodo_NotFound(t *testing.T) {
	env := newTestEnv(t)
	user := activeUser(t, 1, "alice", "secret123")

	env.userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)
	env.todoRepo.On("FindOwned", mock.Anything, uint(404), uint(1)).
		Return(nil, repository.ErrTodoNotFound).Once()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest(t, env, http.MethodPut, "/api/todos/404", `{"completed":true}`, "alice"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTodo_Success(t *testing.T) {
	env := newTestEnv(t)
	user := activeUser(t, 1, "alice", "secret123")

	env.userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)
	env.todoRepo.On("Delete", mock.Anything, uint(42), uint(1)).Return(nil).Once()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest(t, env, http.MethodDelete, "/api/todos/42", "", "alice"))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	env.todoRepo.AssertExpectations(t)
}

func TestDeleteTodo_NotFound(t *testing.T) {
	env := newTestEnv(t)
	user := activeUser(t, 1, "alice", "secret123")

	env.userRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)
	env.todoRepo.On("Delete", mock.Anything, uint(42), uint(1)).
		Return(repository.ErrTodoNotFound).Once()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, authedRequest(t, env, http.MethodDelete, "/api/todos/42", "", "alice"))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestEndToEndScenario 完整走一遍: 注册 -> 错误密码登录 401 ->
// 正确登录拿 token -> 创建待办事项 201 -> 另一个用户访问该事项 404。
func TestEndToEndScenario(t *testing.T) {
	env := newTestEnv(t)

	// --- 注册 alice ---
	env.userRepo.On("FindByUsername", mock.Anything, "alice").Return(nil, repository.ErrUserNotFound).Once()
	env.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, repository.ErrUserNotFound).Once()

	var alice *domain.User
	env.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			// 复制一份持久化状态: Register 返回前会清掉原对象上的密码哈希
			created := args.Get(1).(*domain.User)
			created.ID = 1
			persisted := *created
			alice = &persisted
		}).
		Return(nil).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(`{"username":"alice","email":"a@x.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, alice)

	// 注册之后的查找都返回持久化的 alice
	env.userRepo.On("FindByUsername", mock.Anything, "alice").Return(alice, nil)

	// --- 错误密码登录 -> 401 ---
	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// --- 正确密码登录 -> 200 + token ---
	form = url.Values{"username": {"alice"}, "password": {"secret"}}
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var tokenResp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))
	aliceToken := tokenResp["access_token"]
	require.NotEmpty(t, aliceToken)

	// --- 用 token 创建待办事项 -> 201 ---
	env.todoRepo.On("Create", mock.Anything, mock.MatchedBy(func(todo *domain.Todo) bool {
		return todo.OwnerID == 1 && todo.Title == "Buy milk" && todo.Priority == 3
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Todo).ID = 42
		}).
		Return(nil).Once()

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/todos", bytes.NewBufferString(`{"title":"Buy milk","priority":3}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created domain.Todo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.False(t, created.Completed)
	assert.Equal(t, 3, created.Priority)

	// --- bob 访问 alice 的待办事项 -> 404 ---
	bob := activeUser(t, 2, "bob", "hunter2")
	env.userRepo.On("FindByUsername", mock.Anything, "bob").Return(bob, nil)
	env.todoRepo.On("FindOwned", mock.Anything, uint(42), uint(2)).
		Return(nil, repository.ErrTodoNotFound).Once()

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/todos/42", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, env, "bob"))
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "他人的待办事项必须表现为不存在")

	env.todoRepo.AssertExpectations(t)
}
