package providers

import (
	"context"
	"errors"
	"time"
)

// BaseConfig 基础配置
type BaseConfig struct {
	// API配置
	APIKey      string `json:"api_key,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`

	// 超时和重试（传输层重试由 SDK 处理）
	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries"`

	// 自定义头部
	Headers map[string]string `json:"headers,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Timeout:    5 * time.Minute, // 长文本块的 LLM 请求可能很慢
		MaxRetries: 2,
		Headers:    make(map[string]string),
	}
}

// TranslationProvider 外部翻译协作者：一条指令加一段负载，返回纯文本
type TranslationProvider interface {
	// Translate 执行一次翻译请求
	Translate(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error)

	// GetName 获取提供商名称
	GetName() string
}

// ProviderRequest 提供商请求
type ProviderRequest struct {
	Instruction    string `json:"instruction"`
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
	Model          string `json:"model,omitempty"`
}

// ProviderResponse 提供商响应
type ProviderResponse struct {
	Text      string                 `json:"text"`
	Model     string                 `json:"model,omitempty"`
	TokensIn  int                    `json:"tokens_in,omitempty"`
	TokensOut int                    `json:"tokens_out,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// 错误代码
const (
	ErrCodeContextLength = "context_length_exceeded"
	ErrCodeEmptyResponse = "empty_response"
	ErrCodeAPI           = "api_error"
)

// Error 提供商错误
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	Cause      error  `json:"-"`
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return e.Code + " (" + httpStatus(e.StatusCode) + "): " + e.Message
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError 创建提供商错误
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// IsContextLengthExceeded 判断请求是否超出了模型的上下文容量
func IsContextLengthExceeded(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Code == ErrCodeContextLength
}
