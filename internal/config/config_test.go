package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "source_lang: English\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "English", cfg.SourceLang)
	assert.Equal(t, "Chinese", cfg.TargetLang)
	assert.Equal(t, DefaultCharsPerToken, cfg.CharsPerToken)
	assert.Equal(t, DefaultSafetyMargin, cfg.ChunkSafetyMargin)
	assert.Equal(t, 3, cfg.MaxBudgetAttempts)
	assert.True(t, cfg.VerifyOutput)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.Empty(t, cfg.StatsFile, "run history is off unless configured")
	assert.Contains(t, cfg.ModelConfigs, "gpt-4o")
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigModelsWithDots(t *testing.T) {
	path := writeFile(t, "config.yaml", `
target_lang: French
default_model_name: gpt-3.5-turbo-custom
max_chunk_chars: 5000
models:
  gpt-3.5-turbo-custom:
    model_id: gpt-3.5-turbo
    max_input_tokens: 16385
  azure-gpt4:
    api_type: azure
    model_id: my-deployment
    base_url: https://example.openai.azure.com
    api_version: 2024-02-01
    max_input_tokens: 8192
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "French", cfg.TargetLang)
	assert.Equal(t, 5000, cfg.MaxChunkChars)

	custom, ok := cfg.ModelConfigs["gpt-3.5-turbo-custom"]
	require.True(t, ok)
	assert.Equal(t, "gpt-3.5-turbo-custom", custom.Name)
	assert.Equal(t, "gpt-3.5-turbo", custom.ModelID)
	assert.Equal(t, APITypeOpenAI, custom.APIType)
	assert.Equal(t, 16385, custom.MaxInputTokens)

	azure, ok := cfg.ModelConfigs["azure-gpt4"]
	require.True(t, ok)
	assert.Equal(t, APITypeAzure, azure.APIType)
	assert.Equal(t, "2024-02-01", azure.APIVersion)

	assert.Contains(t, cfg.ModelConfigs, "gpt-4o", "built-in models are kept")
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigAPIVersionForms(t *testing.T) {
	path := writeFile(t, "config.yaml", `
models:
  quoted:
    api_type: azure
    api_version: "2024-06-01"
  bare:
    api_type: azure
    api_version: 2024-02-15
  preview:
    api_type: azure
    api_version: 2024-02-15-preview
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", cfg.ModelConfigs["quoted"].APIVersion)
	assert.Equal(t, "2024-02-15", cfg.ModelConfigs["bare"].APIVersion)
	assert.Equal(t, "2024-02-15-preview", cfg.ModelConfigs["preview"].APIVersion)
}

func TestTimeToStringHook(t *testing.T) {
	hook := timeToStringHook()
	str := reflect.TypeOf("")
	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	out, err := hook(reflect.TypeOf(date), str, date)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", out)

	stamp := time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC)
	out, err = hook(reflect.TypeOf(stamp), str, stamp)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01T08:30:00Z", out)

	out, err = hook(reflect.TypeOf(date), reflect.TypeOf(date), date)
	require.NoError(t, err)
	assert.Equal(t, date, out, "non-string targets are left alone")

	out, err = hook(str, str, "v1")
	require.NoError(t, err)
	assert.Equal(t, "v1", out)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DOCX_TRANSLATOR_TARGET_LANG", "German")
	path := writeFile(t, "config.yaml", "target_lang: French\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "German", cfg.TargetLang)
}

func TestLoadConfigBadFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "source_lang: [unclosed\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := NewDefaultConfig()
	cfg.TargetLang = "Japanese"
	cfg.MaxChunkChars = 1234

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Japanese", loaded.TargetLang)
	assert.Equal(t, 1234, loaded.MaxChunkChars)
	assert.Equal(t, 128000, loaded.ModelConfigs["gpt-4o"].MaxInputTokens)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"空目标语言", func(c *Config) { c.TargetLang = " " }},
		{"非正字符系数", func(c *Config) { c.CharsPerToken = 0 }},
		{"安全系数过大", func(c *Config) { c.ChunkSafetyMargin = 1.5 }},
		{"负的块上限", func(c *Config) { c.MaxChunkChars = -1 }},
		{"尝试次数为零", func(c *Config) { c.MaxBudgetAttempts = 0 }},
		{"未知接口类型", func(c *Config) {
			c.ModelConfigs["x"] = ModelConfig{Name: "x", APIType: "anthropic"}
		}},
	}

	require.NoError(t, NewDefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolveKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("AZURE_OPENAI_API_KEY", "az-env")

	assert.Equal(t, "sk-explicit", ModelConfig{Key: "sk-explicit"}.ResolveKey())
	assert.Equal(t, "sk-env", ModelConfig{APIType: APITypeOpenAI}.ResolveKey())
	assert.Equal(t, "az-env", ModelConfig{APIType: APITypeAzure}.ResolveKey())
}

func TestGetModelByID(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.ModelConfigs["fast"] = ModelConfig{Name: "fast", ModelID: "vendor/fast-model", MaxInputTokens: 1000}

	m, ok := cfg.GetModel("vendor/fast-model")
	require.True(t, ok)
	assert.Equal(t, "fast", m.Name)

	_, ok = cfg.GetModel("missing")
	assert.False(t, ok)
}
