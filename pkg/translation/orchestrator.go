package translation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/nerdneilsfield/docx-translator/pkg/placeholder"
	"github.com/nerdneilsfield/docx-translator/pkg/providers"
	"go.uber.org/zap"
)

// Request 一次整表翻译的参数
type Request struct {
	SourceLang string
	TargetLang string
	Model      string
	Budget     int // 单个请求负载的字符上限
}

// Stats 一次运行的统计
type Stats struct {
	Segments      int           `json:"segments"`
	GlossaryHits  int           `json:"glossary_hits"`
	CacheHits     int           `json:"cache_hits"`
	CacheMisses   int           `json:"cache_misses"`
	CacheEntries  int64         `json:"cache_entries"`
	Chunks        int           `json:"chunks"`
	Requests      int           `json:"requests"`
	BudgetShrinks int           `json:"budget_shrinks"`
	InitialBudget int           `json:"initial_budget"`
	FinalBudget   int           `json:"final_budget"`
	TokensIn      int           `json:"tokens_in"`
	TokensOut     int           `json:"tokens_out"`
	Duration      time.Duration `json:"duration"`
}

// Orchestrator 按预算分块、顺序发送并合并译文
type Orchestrator struct {
	provider providers.TranslationProvider
	options  orchestratorOptions
	stats    Stats
}

// NewOrchestrator 创建编排器
func NewOrchestrator(provider providers.TranslationProvider, opts ...Option) (*Orchestrator, error) {
	if provider == nil {
		return nil, NewTranslationError(ErrCodeConfig, "translation provider is nil", ErrInvalidConfig)
	}

	options := orchestratorOptions{maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(&options)
	}
	if options.maxAttempts <= 0 {
		options.maxAttempts = DefaultMaxAttempts
	}
	if options.logger == nil {
		options.logger = zap.NewNop()
	}

	return &Orchestrator{
		provider: provider,
		options:  options,
	}, nil
}

// Stats 返回最近一次 TranslateAll 的统计
func (o *Orchestrator) Stats() Stats {
	return o.stats
}

// TranslateAll 翻译整张占位符表，返回的表与输入的键完全一致。
// 协作者报告上下文超限时预算减半，并从当前块开始对剩余记录重新分块；
// 同一块位置的尝试次数用尽、协议违规或其他协作者错误都会终止整个运行。
func (o *Orchestrator) TranslateAll(ctx context.Context, textMap *placeholder.TextMap, req Request) (*placeholder.TextMap, error) {
	start := time.Now()
	o.stats = Stats{
		Segments:      textMap.Len(),
		InitialBudget: req.Budget,
		FinalBudget:   req.Budget,
	}
	defer func() { o.stats.Duration = time.Since(start) }()

	if req.Budget <= 0 {
		return nil, NewTranslationError(ErrCodeConfig,
			fmt.Sprintf("chunk budget must be positive, got %d", req.Budget), ErrInvalidConfig)
	}

	resolved, pending := o.resolveLocally(textMap, req)
	logger := o.options.logger

	logger.Info("starting translation",
		zap.Int("segments", textMap.Len()),
		zap.Int("resolved_locally", len(resolved)),
		zap.Int("pending", len(pending)),
		zap.Int("budget", req.Budget))

	if len(pending) > 0 {
		if err := o.translateRemote(ctx, pending, req, resolved); err != nil {
			return nil, err
		}
	}

	result := placeholder.NewTextMap()
	for _, id := range textMap.Keys() {
		value, ok := resolved[id]
		if !ok {
			return nil, NewProtocolError("no translation produced for identifier %q", id)
		}
		result.Set(id, value)
	}

	if o.options.cache != nil {
		cs := o.options.cache.Stats()
		o.stats.CacheEntries = cs.Size
		logger.Debug("cache statistics",
			zap.Int64("hits", cs.Hits),
			zap.Int64("misses", cs.Misses),
			zap.Int64("entries", cs.Size))
	}

	logger.Info("translation finished",
		zap.Int("chunks", o.stats.Chunks),
		zap.Int("requests", o.stats.Requests),
		zap.Int("budget_shrinks", o.stats.BudgetShrinks),
		zap.Int("final_budget", o.stats.FinalBudget))
	return result, nil
}

// resolveLocally 先用预定义译文和缓存解决能解决的条目
func (o *Orchestrator) resolveLocally(textMap *placeholder.TextMap, req Request) (map[string]string, []placeholder.Entry) {
	resolved := make(map[string]string, textMap.Len())
	var pending []placeholder.Entry

	for _, entry := range textMap.Entries() {
		core := strings.TrimSpace(entry.Text)

		if o.options.glossary != nil {
			if value, ok := o.options.glossary.Lookup(core); ok {
				resolved[entry.ID] = Rewrap(entry.Text, value)
				o.stats.GlossaryHits++
				continue
			}
		}

		if o.options.cache != nil && !o.options.refreshCache {
			key := CacheKey(req.SourceLang, req.TargetLang, req.Model, core)
			if value, ok := o.options.cache.Get(key); ok {
				resolved[entry.ID] = Rewrap(entry.Text, value)
				o.stats.CacheHits++
				continue
			}
			o.stats.CacheMisses++
		}

		pending = append(pending, entry)
	}
	return resolved, pending
}

// translateRemote 顺序发送各块，结果写入 resolved
func (o *Orchestrator) translateRemote(ctx context.Context, pending []placeholder.Entry, req Request, resolved map[string]string) error {
	logger := o.options.logger
	instruction := o.buildInstruction(req)

	budget := req.Budget
	chunks := SplitEntries(pending, budget)
	next := 0      // pending 中第一个未完成条目的下标
	completed := 0 // 已完成的块数
	attempts := 0  // 当前块位置已尝试的次数

	for next < len(pending) {
		if err := ctx.Err(); err != nil {
			return &TranslationError{Code: ErrCodeProvider, Message: "translation cancelled", Cause: err, Chunk: completed + 1}
		}

		chunk := chunks[0]
		position := completed + 1
		total := completed + len(chunks)
		attempts++

		logger.Info("translating chunk",
			zap.Int("chunk", position),
			zap.Int("total", total),
			zap.Int("records", len(chunk.Entries)),
			zap.Int("chars", chunk.Size),
			zap.Int("budget", budget),
			zap.Int("attempt", attempts))

		o.stats.Requests++
		resp, err := o.provider.Translate(ctx, &providers.ProviderRequest{
			Instruction:    instruction,
			Text:           chunk.Payload(),
			SourceLanguage: req.SourceLang,
			TargetLanguage: req.TargetLang,
			Model:          req.Model,
		})
		if err != nil {
			failure := classifyProviderError(err, position, budget)
			if !failure.IsRetryable() {
				return failure
			}
			if attempts >= o.options.maxAttempts {
				return &TranslationError{
					Code:    ErrCodeBudgetExhausted,
					Message: fmt.Sprintf("request still too large after %d attempts (budget %d)", attempts, budget),
					Cause:   failure,
					Chunk:   position,
				}
			}

			budget = budget / 2
			if budget < 1 {
				budget = 1
			}
			o.stats.BudgetShrinks++
			o.stats.FinalBudget = budget
			chunks = SplitEntries(pending[next:], budget)

			logger.Warn("context length exceeded, shrinking budget",
				zap.Int("chunk", position),
				zap.Int("new_budget", budget),
				zap.Int("remaining_chunks", len(chunks)),
				zap.Error(failure))
			continue
		}

		text := resp.Text
		if HasReasoningPrefix(text) {
			logger.Debug("stripping reasoning prefix from response", zap.Int("chunk", position))
			text = StripReasoning(text)
		}

		records, err := ParseRecords(text, chunk.IDs())
		if err != nil {
			if te, ok := err.(*TranslationError); ok {
				te.Chunk = position
			}
			logger.Error("response does not follow the record protocol",
				zap.Int("chunk", position),
				zap.String("response", placeholder.Preview(resp.Text)),
				zap.Error(err))
			return err
		}

		for _, entry := range chunk.Entries {
			value, _ := records.Get(entry.ID)
			resolved[entry.ID] = Rewrap(entry.Text, value)
			o.remember(req, entry.Text, value)
		}

		o.stats.Chunks++
		o.stats.TokensIn += resp.TokensIn
		o.stats.TokensOut += resp.TokensOut

		next += len(chunk.Entries)
		chunks = chunks[1:]
		completed++
		attempts = 0

		if o.options.progress != nil {
			o.options.progress(completed, completed+len(chunks))
		}
	}
	return nil
}

// classifyProviderError 上下文超限归为可恢复的 BUDGET_EXCEEDED，其余归为 PROVIDER_ERROR
func classifyProviderError(err error, chunk, budget int) *TranslationError {
	if providers.IsContextLengthExceeded(err) {
		return &TranslationError{
			Code:    ErrCodeBudgetExceeded,
			Message: fmt.Sprintf("request exceeds the model context (budget %d)", budget),
			Cause:   err,
			Chunk:   chunk,
		}
	}
	return &TranslationError{Code: ErrCodeProvider, Message: "translation request failed", Cause: err, Chunk: chunk}
}

func (o *Orchestrator) buildInstruction(req Request) string {
	pb := NewPromptBuilder(req.SourceLang, req.TargetLang)
	for _, extra := range o.options.extra {
		pb.AddInstruction(extra)
	}
	return pb.BuildInstruction()
}

// remember 写入缓存，失败只记日志
func (o *Orchestrator) remember(req Request, source, translated string) {
	if o.options.cache == nil {
		return
	}
	key := CacheKey(req.SourceLang, req.TargetLang, req.Model, strings.TrimSpace(source))
	if err := o.options.cache.Set(key, strings.TrimSpace(translated)); err != nil {
		o.options.logger.Warn("failed to write translation cache", zap.Error(err))
	}
}

// Rewrap 把源文本的首尾空白套回译文
func Rewrap(source, translated string) string {
	trimmedLeft := strings.TrimLeftFunc(source, unicode.IsSpace)
	lead := source[:len(source)-len(trimmedLeft)]
	trail := trimmedLeft[len(strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)):]
	return lead + strings.TrimSpace(translated) + trail
}
