// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeTimeout      Code = "TIMEOUT"
	CodeRateLimited  Code = "RATE_LIMITED"

	// 合规审查相关
	CodeNoValidShifts    Code = "NO_VALID_SHIFTS"
	CodeInvalidTimeRange Code = "INVALID_TIME_RANGE"
	CodeAnalysisFailed   Code = "ANALYSIS_FAILED"

	// 外部辅助分析相关
	CodeAdvisoryUnavailable Code = "ADVISORY_UNAVAILABLE"

	// 数据相关
	CodeDatabaseError  Code = "DATABASE_ERROR"
	CodeValidationFail Code = "VALIDATION_FAILED"
)

// AppError 应用错误
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// codeToHTTPStatus 错误码转HTTP状态码
func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidationFail, CodeInvalidTimeRange:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeNoValidShifts:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Is 检查错误是否为特定类型
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetHTTPStatus 获取HTTP状态码
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// 预定义错误
var (
	ErrNotFound      = New(CodeNotFound, "资源不存在")
	ErrInvalidInput  = New(CodeInvalidInput, "输入参数无效")
	ErrUnauthorized  = New(CodeUnauthorized, "未授权访问")
	ErrForbidden     = New(CodeForbidden, "禁止访问")
	ErrInternal      = New(CodeInternal, "内部错误")
	ErrTimeout       = New(CodeTimeout, "操作超时")
	ErrNoValidShifts = New(CodeNoValidShifts, "没有有效的班次记录，无法执行合规审查")
)

// ValidationErrors 字段校验错误集合
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

// FieldError 单个字段错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Add 添加字段错误
func (v *ValidationErrors) Add(field, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

// HasErrors 是否有错误
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// ToAppError 转换为应用错误
func (v *ValidationErrors) ToAppError() *AppError {
	err := New(CodeValidationFail, "请求参数校验失败")
	for _, fe := range v.Errors {
		err.WithField(fe.Field, fe.Message)
	}
	return err
}

// InvalidInput 创建输入无效错误
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("字段 '%s' 无效: %s", field, reason))
}

// NoValidShifts 创建无有效班次错误
// 空班次集必须显式拒绝：空的合规问题列表会与"完全合规"混淆
func NoValidShifts(reason string) *AppError {
	if reason == "" {
		return ErrNoValidShifts
	}
	return New(CodeNoValidShifts, fmt.Sprintf("没有有效的班次记录: %s", reason))
}

// AnalysisFailed 创建审查失败错误
func AnalysisFailed(stage string, cause error) *AppError {
	return Wrap(cause, CodeAnalysisFailed, fmt.Sprintf("合规审查在 %s 阶段失败", stage))
}

// AdvisoryUnavailable 创建辅助分析不可用错误
// 该错误只用于日志记录，不传播到审查结果
func AdvisoryUnavailable(cause error) *AppError {
	return Wrap(cause, CodeAdvisoryUnavailable, "外部辅助分析不可用")
}
