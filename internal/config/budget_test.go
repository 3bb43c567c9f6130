package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveChunkBudget(t *testing.T) {
	cfg := NewDefaultConfig()

	t.Run("已知模型", func(t *testing.T) {
		info := cfg.ResolveChunkBudget("gpt-4")
		assert.True(t, info.Known)
		assert.Equal(t, 8192, info.MaxInputTokens)
		assert.Equal(t, 29491, info.Budget)
		assert.False(t, info.Clamped)
	})

	t.Run("按model_id查找", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.ModelConfigs["mine"] = ModelConfig{Name: "mine", ModelID: "vendor-x", MaxInputTokens: 1000}
		info := cfg.ResolveChunkBudget("vendor-x")
		assert.True(t, info.Known)
		assert.Equal(t, 3600, info.Budget)
	})

	t.Run("上限截断", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.MaxChunkChars = 2000
		info := cfg.ResolveChunkBudget("gpt-4o")
		assert.Equal(t, 2000, info.Budget)
		assert.True(t, info.Clamped)
	})

	t.Run("上限大于推算值时不生效", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.MaxChunkChars = 1 << 30
		info := cfg.ResolveChunkBudget("gpt-3.5")
		assert.Equal(t, 14749, info.Budget)
		assert.False(t, info.Clamped)
	})

	t.Run("未知模型回退", func(t *testing.T) {
		info := cfg.ResolveChunkBudget("gpt4o")
		assert.False(t, info.Known)
		assert.Equal(t, FallbackInputTokens, info.MaxInputTokens)
		assert.Equal(t, 29491, info.Budget)
		assert.Contains(t, info.Suggestions, "gpt-4o")
	})

	t.Run("自定义系数", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.CharsPerToken = 2
		cfg.ChunkSafetyMargin = 0.5
		assert.Equal(t, 8192, cfg.ResolveChunkBudget("gpt-4").Budget)
	})
}

func TestSuggestModels(t *testing.T) {
	candidates := []string{"gpt-4", "gpt-4o", "gpt-4o-mini", "o1-preview"}

	assert.Contains(t, SuggestModels("4o", candidates), "gpt-4o")
	assert.LessOrEqual(t, len(SuggestModels("g", candidates)), 3)
	assert.Equal(t, []string{"gpt-4o"}, SuggestModels("gpt-4o-2024-08-06", []string{"gpt-4o", "o1-preview"}))
	assert.Empty(t, SuggestModels("zzz", candidates))
}
