package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerdneilsfield/docx-translator/pkg/providers"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config OpenAI配置（使用官方SDK）
type Config struct {
	providers.BaseConfig
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	OrgID       string  `json:"org_id,omitempty"` // 可选的组织ID
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig: providers.DefaultConfig(),
		Model:      "gpt-4o",
	}
}

// Provider OpenAI提供商
type Provider struct {
	config Config
	client openai.Client
}

// 确保 Provider 实现 providers.TranslationProvider 接口
var _ providers.TranslationProvider = (*Provider)(nil)

// New 创建新的OpenAI提供商
func New(config Config) *Provider {
	// 构建客户端选项
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	// 添加自定义端点（如果有）
	if config.APIEndpoint != "" {
		opts = append(opts, option.WithBaseURL(config.APIEndpoint))
	}

	// 添加组织ID（如果有）
	if config.OrgID != "" {
		opts = append(opts, option.WithOrganization(config.OrgID))
	}

	// 添加自定义头部
	for k, v := range config.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}

	// 设置超时
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	// 传输层重试（429/5xx），与分块预算重试无关
	opts = append(opts, option.WithMaxRetries(config.MaxRetries))

	return &Provider{
		config: config,
		client: openai.NewClient(opts...),
	}
}

// Translate 执行翻译。指令与负载合并为一条用户消息，
// 部分推理模型不接受 system 角色。
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Instruction + "\n\n" + req.Text),
		},
		Model: openai.ChatModel(model),
	}
	if p.config.Temperature > 0 {
		params.Temperature = openai.Float(p.config.Temperature)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyError(err)
	}

	if len(completion.Choices) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "no choices returned from OpenAI")
	}

	return &providers.ProviderResponse{
		Text:      completion.Choices[0].Message.Content,
		Model:     completion.Model,
		TokensIn:  int(completion.Usage.PromptTokens),
		TokensOut: int(completion.Usage.CompletionTokens),
		Metadata: map[string]interface{}{
			"finish_reason": string(completion.Choices[0].FinishReason),
			"id":            completion.ID,
		},
	}, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "openai"
}

// classifyError 把 SDK 错误转换为 providers.Error
func classifyError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("openai chat completion failed: %w", err)
	}

	code := providers.ErrCodeAPI
	if providers.LooksLikeContextLength(apiErr.Code, apiErr.Message) {
		code = providers.ErrCodeContextLength
	}
	return &providers.Error{
		Code:       code,
		Message:    apiErr.Message,
		StatusCode: apiErr.StatusCode,
		Cause:      err,
	}
}
