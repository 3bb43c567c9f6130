// Package azure talks to Azure OpenAI deployments through go-openai.
package azure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nerdneilsfield/docx-translator/pkg/providers"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultAPIVersion Azure OpenAI REST API 版本
const DefaultAPIVersion = "2024-02-01"

// Config Azure OpenAI 配置。Deployment 为空时使用请求中的模型名。
type Config struct {
	providers.BaseConfig
	Deployment  string  `json:"deployment"`
	APIVersion  string  `json:"api_version"`
	Temperature float32 `json:"temperature"`
}

// Provider Azure OpenAI 提供商
type Provider struct {
	config Config
	client *openai.Client
}

var _ providers.TranslationProvider = (*Provider)(nil)

// New 创建 Azure OpenAI 提供商
func New(config Config) (*Provider, error) {
	if config.APIEndpoint == "" {
		return nil, fmt.Errorf("azure provider requires an endpoint (base_url)")
	}
	if config.APIVersion == "" {
		config.APIVersion = DefaultAPIVersion
	}

	clientConfig := openai.DefaultAzureConfig(config.APIKey, config.APIEndpoint)
	clientConfig.APIVersion = config.APIVersion
	if config.Deployment != "" {
		deployment := config.Deployment
		clientConfig.AzureModelMapperFunc = func(string) string { return deployment }
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout:   config.Timeout,
		Transport: &headerTransport{headers: config.Headers, base: http.DefaultTransport},
	}

	return &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Deployment
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Instruction + "\n\n" + req.Text},
		},
		Temperature: p.config.Temperature,
	})
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, providers.NewError(providers.ErrCodeEmptyResponse, "no choices returned from Azure OpenAI")
	}

	return &providers.ProviderResponse{
		Text:      resp.Choices[0].Message.Content,
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
		Metadata: map[string]interface{}{
			"finish_reason": string(resp.Choices[0].FinishReason),
			"id":            resp.ID,
		},
	}, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "azure"
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("azure chat completion failed: %w", err)
	}

	code := providers.ErrCodeAPI
	if providers.LooksLikeContextLength(fmt.Sprint(apiErr.Code), apiErr.Message) {
		code = providers.ErrCodeContextLength
	}
	return &providers.Error{
		Code:       code,
		Message:    apiErr.Message,
		StatusCode: apiErr.HTTPStatusCode,
		Cause:      err,
	}
}

// headerTransport 给每个请求加上自定义头部
type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
