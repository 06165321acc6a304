package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/naofumiaoyama/todo-app-first/internal/service"
)

// HandleServiceError 将业务层错误映射为 HTTP 响应。
// 存储层的内部细节绝不透给客户端，只记录日志后返回通用 500。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuthenticationFailed):
		c.Header("WWW-Authenticate", "Bearer")
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInactiveUser),
		errors.Is(err, service.ErrEmptyTitle),
		errors.Is(err, service.ErrInvalidPriority):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTodoNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	default:
		// Log the internal error for debugging
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
