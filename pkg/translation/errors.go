package translation

import (
	"errors"
	"fmt"
)

// 错误代码常量
const (
	ErrCodeInput             = "INPUT_ERROR"
	ErrCodeParse             = "PARSE_ERROR"
	ErrCodeBudgetExceeded    = "BUDGET_EXCEEDED"
	ErrCodeBudgetExhausted   = "BUDGET_EXHAUSTED"
	ErrCodeProtocolViolation = "PROTOCOL_VIOLATION"
	ErrCodeProvider          = "PROVIDER_ERROR"
	ErrCodeConfig            = "CONFIG_ERROR"
)

// 预定义错误，配合 errors.Is 按类别判断
var (
	// ErrInput 输入文档缺失或找不到负载
	ErrInput = errors.New("input error")

	// ErrParse 标记负载无法解析
	ErrParse = errors.New("parse error")

	// ErrBudgetExceeded 请求超出协作者容量（可恢复）
	ErrBudgetExceeded = errors.New("budget exceeded")

	// ErrBudgetExhausted 缩减预算后仍然失败
	ErrBudgetExhausted = errors.New("budget retries exhausted")

	// ErrProtocolViolation 响应不符合记录协议
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrProvider 协作者的其他错误
	ErrProvider = errors.New("provider error")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("invalid configuration")
)

var sentinelByCode = map[string]error{
	ErrCodeInput:             ErrInput,
	ErrCodeParse:             ErrParse,
	ErrCodeBudgetExceeded:    ErrBudgetExceeded,
	ErrCodeBudgetExhausted:   ErrBudgetExhausted,
	ErrCodeProtocolViolation: ErrProtocolViolation,
	ErrCodeProvider:          ErrProvider,
	ErrCodeConfig:            ErrInvalidConfig,
}

// TranslationError 翻译错误
type TranslationError struct {
	Code    string // 错误代码
	Message string // 错误消息
	Cause   error  // 原因
	Chunk   int    // 出错的块序号（从1开始，0表示与块无关）
}

// Error 实现error接口
func (e *TranslationError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Chunk > 0 {
		msg = fmt.Sprintf("[%s] %s at chunk %d", e.Code, e.Message, e.Chunk)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap 返回原因错误
func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// Is 让 errors.Is 可以按错误代码匹配预定义错误
func (e *TranslationError) Is(target error) bool {
	sentinel, ok := sentinelByCode[e.Code]
	return ok && sentinel == target
}

// IsRetryable 是否可重试，只有预算超限会触发缩减重试
func (e *TranslationError) IsRetryable() bool {
	return e.Code == ErrCodeBudgetExceeded
}

// NewTranslationError 创建翻译错误
func NewTranslationError(code, message string, cause error) *TranslationError {
	return &TranslationError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInputError 创建输入错误
func NewInputError(message string, cause error) *TranslationError {
	return NewTranslationError(ErrCodeInput, message, cause)
}

// NewParseError 创建解析错误
func NewParseError(message string, cause error) *TranslationError {
	return NewTranslationError(ErrCodeParse, message, cause)
}

// NewProtocolError 创建协议违规错误
func NewProtocolError(format string, args ...interface{}) *TranslationError {
	return NewTranslationError(ErrCodeProtocolViolation, fmt.Sprintf(format, args...), nil)
}

// ErrorCode 返回错误链中第一个 TranslationError 的代码
func ErrorCode(err error) string {
	var te *TranslationError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}
