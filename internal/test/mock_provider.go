package test

import (
	"context"

	"github.com/nerdneilsfield/docx-translator/pkg/providers"
	"github.com/stretchr/testify/mock"
)

// MockProvider 是一个模拟的翻译协作者
type MockProvider struct {
	mock.Mock
}

var _ providers.TranslationProvider = (*MockProvider)(nil)

// Translate 执行翻译请求
func (m *MockProvider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*providers.ProviderResponse)
	return resp, args.Error(1)
}

// GetName 返回提供商名称
func (m *MockProvider) GetName() string {
	args := m.Called()
	return args.String(0)
}
