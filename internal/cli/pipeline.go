package cli

import (
	"fmt"

	"github.com/nerdneilsfield/docx-translator/internal/config"
	"github.com/nerdneilsfield/docx-translator/pkg/providers/factory"
	"github.com/nerdneilsfield/docx-translator/pkg/translation"
	"go.uber.org/zap"
)

// resolveModel 查找默认模型，未配置时按 OpenAI 兼容模型处理
func resolveModel(cfg *config.Config) config.ModelConfig {
	if m, ok := cfg.GetModel(cfg.DefaultModelName); ok {
		if m.Name == "" {
			m.Name = cfg.DefaultModelName
		}
		if m.ModelID == "" {
			m.ModelID = cfg.DefaultModelName
		}
		return m
	}
	return config.ModelConfig{
		Name:    cfg.DefaultModelName,
		ModelID: cfg.DefaultModelName,
		APIType: config.APITypeOpenAI,
	}
}

// newOrchestrator 按配置组装提供商、缓存、术语表与进度回调
func newOrchestrator(cfg *config.Config, log *zap.Logger, onProgress translation.ProgressFunc) (*translation.Orchestrator, error) {
	modelConfig := resolveModel(cfg)
	provider, err := factory.New(cfg).CreateProvider(modelConfig)
	if err != nil {
		return nil, translation.NewTranslationError(translation.ErrCodeConfig,
			fmt.Sprintf("cannot create provider for model %s", modelConfig.Name), err)
	}

	opts := []translation.Option{
		translation.WithLogger(log),
		translation.WithMaxAttempts(cfg.MaxBudgetAttempts),
		translation.WithRefreshCache(forceCacheRefresh),
	}
	if onProgress != nil {
		opts = append(opts, translation.WithProgress(onProgress))
	}

	cache, err := translation.NewCache(cfg.UseCache, cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if cache != nil {
		log.Debug("缓存已启用", zap.String("dir", cfg.CacheDir))
		opts = append(opts, translation.WithCache(cache))
	}

	if cfg.GlossaryPath != "" {
		glossary, err := config.LoadPredefinedTranslations(cfg.GlossaryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load glossary: %w", err)
		}
		if glossary.Matches(cfg.SourceLang, cfg.TargetLang) {
			log.Info("已加载预定义译文",
				zap.String("path", cfg.GlossaryPath),
				zap.Int("entries", len(glossary.Translations)))
			opts = append(opts, translation.WithGlossary(glossary))
		} else {
			log.Warn("预定义译文的语言对与本次翻译不一致，已忽略",
				zap.String("path", cfg.GlossaryPath),
				zap.String("glossary_source", glossary.SourceLang),
				zap.String("glossary_target", glossary.TargetLang))
		}
	}

	return translation.NewOrchestrator(provider, opts...)
}
