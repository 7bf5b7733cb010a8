package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haierkeys/note-feed-service/internal/middleware"
	"github.com/haierkeys/note-feed-service/pkg/code"
)

// AppError 统一应用错误结构体
// 包含错误码、分类、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Status 是否成功，错误恒为 false
	Status bool `json:"status"`
	// Kind 错误分类
	Kind string `json:"kind"`
	// Message 错误消息
	Message string `json:"message"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap 实现 errors.Unwrap 接口，支持错误链路追踪
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is 与 code.Code 比较数字码
func (e *AppError) Is(target error) bool {
	var c *code.Code
	if errors.As(target, &c) {
		return c.Code() == e.Code
	}
	var a *AppError
	if errors.As(target, &a) {
		return a.Code == e.Code
	}
	return false
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:      c.Code(),
		Kind:      c.Kind().String(),
		Message:   c.Msg(),
		Details:   c.Details(),
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// WithTraceID 设置 TraceID 并返回自身（链式调用）
func (e *AppError) WithTraceID(traceID string) *AppError {
	e.TraceID = traceID
	return e
}

// FromError 将任意错误转换为 AppError
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return NewAppError(codeErr, err)
	}

	// 未知错误，返回内部错误
	return NewAppError(code.ErrorServerInternal, err)
}

// ErrorResponse 统一错误响应处理
// 从 gin.Context 获取 TraceID，将错误转换为 AppError 并返回 JSON 响应
func ErrorResponse(c *gin.Context, err error) {
	appErr := FromError(err).WithTraceID(middleware.GetTraceIDFromGin(c))
	c.Set("status_code", http.StatusOK)
	c.JSON(http.StatusOK, appErr)
}

// GetAppError 从错误链中获取 AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
