package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// 支持的接口类型
const (
	APITypeOpenAI = "openai"
	APITypeAzure  = "azure"
)

// ModelConfig 保存模型配置
type ModelConfig struct {
	Name           string  `mapstructure:"name"`
	ModelID        string  `mapstructure:"model_id"`
	APIType        string  `mapstructure:"api_type"` // openai 或 azure
	BaseURL        string  `mapstructure:"base_url"`
	Key            string  `mapstructure:"key"`
	APIVersion     string  `mapstructure:"api_version"`      // 仅 azure 使用
	MaxInputTokens int     `mapstructure:"max_input_tokens"` // 模型上下文容量
	Temperature    float64 `mapstructure:"temperature"`
}

// Config 保存翻译器的所有配置
type Config struct {
	SourceLang       string                 `mapstructure:"source_lang"`
	TargetLang       string                 `mapstructure:"target_lang"`
	DefaultModelName string                 `mapstructure:"default_model_name"`
	ModelConfigs     map[string]ModelConfig `mapstructure:"models"`

	// 分块预算
	CharsPerToken     float64 `mapstructure:"chars_per_token"`     // 每个 token 约合的字符数
	ChunkSafetyMargin float64 `mapstructure:"chunk_safety_margin"` // 预算安全系数
	MaxChunkChars     int     `mapstructure:"max_chunk_chars"`     // 单块字符上限，0 表示只按模型推算
	MaxBudgetAttempts int     `mapstructure:"max_budget_attempts"` // 每个块位置的最大尝试次数

	// 请求
	RequestTimeout int `mapstructure:"request_timeout"` // 请求超时时间（秒）
	MaxRetries     int `mapstructure:"max_retries"`     // 传输层最大重试次数

	// 缓存与术语
	CacheDir     string `mapstructure:"cache_dir"`
	UseCache     bool   `mapstructure:"use_cache"`
	GlossaryPath string `mapstructure:"glossary_path"` // 预定义译文（TOML）路径
	StatsFile    string `mapstructure:"stats_file"`    // 运行历史 JSON 路径，为空时不记录

	// 文档处理
	WorkDir               string `mapstructure:"work_dir"`                // 解包目录，为空时使用临时目录
	KeepIntermediateFiles bool   `mapstructure:"keep_intermediate_files"` // 是否保留解包的中间文件
	SaveDebugInfo         bool   `mapstructure:"save_debug_info"`         // 是否保存占位符表到 JSON 文件
	VerifyOutput          bool   `mapstructure:"verify_output"`           // 写出前用 go-docx 校验结果

	Debug   bool `mapstructure:"debug"`
	Verbose bool `mapstructure:"verbose"` // 详细模式，显示翻译片段
}

// decodeHook 在 viper 默认钩子之外，把 YAML 解析出的日期（如 api_version: 2024-02-01）还原为字符串
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		timeToStringHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

func timeToStringHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to.Kind() != reflect.String {
			return data, nil
		}
		t, ok := data.(time.Time)
		if !ok {
			return data, nil
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02"), nil
		}
		return t.Format(time.RFC3339), nil
	}
}

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 如果配置路径已指定，则直接使用
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 查找家目录中的配置文件
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName(".docx-translator")
		v.SetConfigType("yaml")
	}

	// 读取环境变量
	v.SetEnvPrefix("DOCX_TRANSLATOR")
	v.AutomaticEnv()

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果找不到配置文件，则使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// 模型名可能含有点号（如 gpt-3.5-turbo），整体解析 models 段避免按点拆分
	var models map[string]ModelConfig
	if err := v.UnmarshalKey("models", &models, decodeHook()); err != nil {
		return nil, fmt.Errorf("failed to parse models: %w", err)
	}
	config.ModelConfigs = DefaultModelConfigs()
	for modelName, modelCfg := range models {
		if modelCfg.Name == "" {
			modelCfg.Name = modelName
		}
		if modelCfg.ModelID == "" {
			modelCfg.ModelID = modelName
		}
		if modelCfg.APIType == "" {
			modelCfg.APIType = APITypeOpenAI
		}
		config.ModelConfigs[modelName] = modelCfg
	}

	// 设置缓存目录（如果未设置）
	if config.CacheDir == "" {
		config.CacheDir = getDefaultCacheDir()
	}

	return &config, nil
}

// SaveConfig 将配置保存到文件。
// viper 的 WriteConfig 会按点号拆分模型名，这里直接用 yaml 序列化
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(home, ".docx-translator.yaml")
	}

	data, err := yaml.Marshal(structToMap(config))
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// 创建父目录（如果不存在）
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// NewDefaultConfig 创建一个新的默认配置
func NewDefaultConfig() *Config {
	return &Config{
		SourceLang:        "English",
		TargetLang:        "Chinese",
		DefaultModelName:  "gpt-4o-mini",
		ModelConfigs:      DefaultModelConfigs(),
		CharsPerToken:     DefaultCharsPerToken,
		ChunkSafetyMargin: DefaultSafetyMargin,
		MaxChunkChars:     0,
		MaxBudgetAttempts: 3,
		RequestTimeout:    300, // 默认5分钟超时
		MaxRetries:        2,
		CacheDir:          getDefaultCacheDir(),
		UseCache:          false,
		VerifyOutput:      true,
	}
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SourceLang) == "" || strings.TrimSpace(c.TargetLang) == "" {
		return fmt.Errorf("source_lang and target_lang must not be empty")
	}
	if c.CharsPerToken <= 0 {
		return fmt.Errorf("chars_per_token must be positive, got %v", c.CharsPerToken)
	}
	if c.ChunkSafetyMargin <= 0 || c.ChunkSafetyMargin > 1 {
		return fmt.Errorf("chunk_safety_margin must be in (0, 1], got %v", c.ChunkSafetyMargin)
	}
	if c.MaxChunkChars < 0 {
		return fmt.Errorf("max_chunk_chars must not be negative, got %d", c.MaxChunkChars)
	}
	if c.MaxBudgetAttempts < 1 {
		return fmt.Errorf("max_budget_attempts must be at least 1, got %d", c.MaxBudgetAttempts)
	}
	for name, m := range c.ModelConfigs {
		switch m.APIType {
		case APITypeOpenAI, APITypeAzure, "":
		default:
			return fmt.Errorf("model %s has unsupported api_type %q", name, m.APIType)
		}
	}
	return nil
}

// GetModel 按名称查找模型，名称或 model_id 都可以
func (c *Config) GetModel(name string) (ModelConfig, bool) {
	if m, ok := c.ModelConfigs[name]; ok {
		return m, true
	}
	for _, m := range c.ModelConfigs {
		if m.ModelID == name {
			return m, true
		}
	}
	return ModelConfig{}, false
}

// ModelNames 返回所有已配置的模型名称
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.ModelConfigs))
	for name := range c.ModelConfigs {
		names = append(names, name)
	}
	return names
}

// ResolveKey 返回模型的 API 密钥，未配置时读取对应的环境变量
func (m ModelConfig) ResolveKey() string {
	if m.Key != "" {
		return m.Key
	}
	if m.APIType == APITypeAzure {
		return os.Getenv("AZURE_OPENAI_API_KEY")
	}
	return os.Getenv("OPENAI_API_KEY")
}

// getDefaultCacheDir 获取默认缓存目录
func getDefaultCacheDir() string {
	// 优先使用系统缓存目录
	cacheDir, err := os.UserCacheDir()
	if err == nil {
		return filepath.Join(cacheDir, "docx-translator")
	}

	// 如果无法获取系统缓存目录，使用用户主目录
	homeDir, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(homeDir, ".docx-translator", "cache")
	}

	// 最后的兜底方案
	return "./docx-translator-cache"
}

// DefaultModelConfigs 返回默认模型配置
func DefaultModelConfigs() map[string]ModelConfig {
	openai := func(name string, maxInput int) ModelConfig {
		return ModelConfig{
			Name:           name,
			ModelID:        name,
			APIType:        APITypeOpenAI,
			MaxInputTokens: maxInput,
		}
	}

	return map[string]ModelConfig{
		"gpt-3.5":       openai("gpt-3.5", 4097),
		"gpt-3.5-turbo": openai("gpt-3.5-turbo", 16385),
		"gpt-4":         openai("gpt-4", 8192),
		"gpt-4-32k":     openai("gpt-4-32k", 32768),
		"gpt-4-turbo":   openai("gpt-4-turbo", 30000),
		"gpt-4o":        openai("gpt-4o", 128000),
		"gpt-4o-mini":   openai("gpt-4o-mini", 128000),
		"o1-preview":    openai("o1-preview", 128000),
	}
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("source_lang", "English")
	v.SetDefault("target_lang", "Chinese")
	v.SetDefault("default_model_name", "gpt-4o-mini")
	v.SetDefault("chars_per_token", DefaultCharsPerToken)
	v.SetDefault("chunk_safety_margin", DefaultSafetyMargin)
	v.SetDefault("max_chunk_chars", 0)
	v.SetDefault("max_budget_attempts", 3)
	v.SetDefault("request_timeout", 300)
	v.SetDefault("max_retries", 2)
	v.SetDefault("cache_dir", "")
	v.SetDefault("use_cache", false)
	v.SetDefault("glossary_path", "")
	v.SetDefault("stats_file", "")
	v.SetDefault("work_dir", "")
	v.SetDefault("keep_intermediate_files", false)
	v.SetDefault("save_debug_info", false)
	v.SetDefault("verify_output", true)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
}

// structToMap 将结构体转换为map
func structToMap(config *Config) map[string]interface{} {
	models := make(map[string]interface{}, len(config.ModelConfigs))
	for name, m := range config.ModelConfigs {
		models[name] = map[string]interface{}{
			"name":             m.Name,
			"model_id":         m.ModelID,
			"api_type":         m.APIType,
			"base_url":         m.BaseURL,
			"key":              m.Key,
			"api_version":      m.APIVersion,
			"max_input_tokens": m.MaxInputTokens,
			"temperature":      m.Temperature,
		}
	}

	return map[string]interface{}{
		"source_lang":             config.SourceLang,
		"target_lang":             config.TargetLang,
		"default_model_name":      config.DefaultModelName,
		"models":                  models,
		"chars_per_token":         config.CharsPerToken,
		"chunk_safety_margin":     config.ChunkSafetyMargin,
		"max_chunk_chars":         config.MaxChunkChars,
		"max_budget_attempts":     config.MaxBudgetAttempts,
		"request_timeout":         config.RequestTimeout,
		"max_retries":             config.MaxRetries,
		"cache_dir":               config.CacheDir,
		"use_cache":               config.UseCache,
		"glossary_path":           config.GlossaryPath,
		"stats_file":              config.StatsFile,
		"work_dir":                config.WorkDir,
		"keep_intermediate_files": config.KeepIntermediateFiles,
		"save_debug_info":         config.SaveDebugInfo,
		"verify_output":           config.VerifyOutput,
		"debug":                   config.Debug,
		"verbose":                 config.Verbose,
	}
}
