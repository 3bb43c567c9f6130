package factory

import (
	"fmt"
	"time"

	"github.com/nerdneilsfield/docx-translator/internal/config"
	"github.com/nerdneilsfield/docx-translator/pkg/providers"
	"github.com/nerdneilsfield/docx-translator/pkg/providers/azure"
	"github.com/nerdneilsfield/docx-translator/pkg/providers/openai"
)

// ProviderFactory 提供商工厂
type ProviderFactory struct {
	timeout    time.Duration
	maxRetries int
}

// New 创建新的提供商工厂
func New(cfg *config.Config) *ProviderFactory {
	f := &ProviderFactory{
		timeout:    providers.DefaultConfig().Timeout,
		maxRetries: providers.DefaultConfig().MaxRetries,
	}
	if cfg != nil {
		if cfg.RequestTimeout > 0 {
			f.timeout = time.Duration(cfg.RequestTimeout) * time.Second
		}
		if cfg.MaxRetries >= 0 {
			f.maxRetries = cfg.MaxRetries
		}
	}
	return f
}

// CreateProvider 根据模型配置创建提供商
func (f *ProviderFactory) CreateProvider(modelConfig config.ModelConfig) (providers.TranslationProvider, error) {
	switch modelConfig.APIType {
	case config.APITypeOpenAI, "":
		return f.createOpenAIProvider(modelConfig)
	case config.APITypeAzure:
		return f.createAzureProvider(modelConfig)
	default:
		return nil, fmt.Errorf("unsupported api_type %q for model %s", modelConfig.APIType, modelConfig.Name)
	}
}

func (f *ProviderFactory) baseConfig(modelConfig config.ModelConfig) providers.BaseConfig {
	base := providers.DefaultConfig()
	base.APIKey = modelConfig.ResolveKey()
	base.APIEndpoint = modelConfig.BaseURL
	base.Timeout = f.timeout
	base.MaxRetries = f.maxRetries
	return base
}

// createOpenAIProvider 创建 OpenAI 提供商，兼容接口（自建端点）可以不带密钥
func (f *ProviderFactory) createOpenAIProvider(modelConfig config.ModelConfig) (providers.TranslationProvider, error) {
	base := f.baseConfig(modelConfig)
	if base.APIKey == "" && base.APIEndpoint == "" {
		return nil, fmt.Errorf("model %s: no API key configured (set key or OPENAI_API_KEY)", modelConfig.Name)
	}

	return openai.New(openai.Config{
		BaseConfig:  base,
		Model:       modelConfig.ModelID,
		Temperature: modelConfig.Temperature,
	}), nil
}

// createAzureProvider 创建 Azure OpenAI 提供商，model_id 即部署名
func (f *ProviderFactory) createAzureProvider(modelConfig config.ModelConfig) (providers.TranslationProvider, error) {
	base := f.baseConfig(modelConfig)
	if base.APIKey == "" {
		return nil, fmt.Errorf("model %s: no API key configured (set key or AZURE_OPENAI_API_KEY)", modelConfig.Name)
	}

	provider, err := azure.New(azure.Config{
		BaseConfig:  base,
		Deployment:  modelConfig.ModelID,
		APIVersion:  modelConfig.APIVersion,
		Temperature: float32(modelConfig.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", modelConfig.Name, err)
	}
	return provider, nil
}
