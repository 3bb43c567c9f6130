package test

import (
	"github.com/nerdneilsfield/docx-translator/internal/config"
)

// TestModelName 测试配置中的模型名称
const TestModelName = "test-model"

// CreateTestConfig 创建用于测试的配置，模型指向 baseURL 上的 OpenAI 兼容服务
func CreateTestConfig(baseURL string) *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.SourceLang = "English"
	cfg.TargetLang = "French"
	cfg.DefaultModelName = TestModelName
	cfg.ModelConfigs[TestModelName] = config.ModelConfig{
		Name:           TestModelName,
		ModelID:        TestModelName,
		APIType:        config.APITypeOpenAI,
		BaseURL:        baseURL,
		Key:            "sk-test",
		MaxInputTokens: 1000,
	}
	cfg.RequestTimeout = 10
	cfg.MaxRetries = 0
	cfg.UseCache = false
	return cfg
}
