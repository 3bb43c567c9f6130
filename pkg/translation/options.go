package translation

import "go.uber.org/zap"

// DefaultMaxAttempts 每个块位置最多尝试的次数（含首次请求）
const DefaultMaxAttempts = 3

// Glossary 预定义译文查询，命中的文本不再发送给协作者
type Glossary interface {
	Lookup(text string) (string, bool)
}

// ProgressFunc 每完成一个块回调一次
type ProgressFunc func(done, total int)

// Option 编排器配置选项函数
type Option func(*orchestratorOptions)

// orchestratorOptions 编排器内部选项
type orchestratorOptions struct {
	cache        Cache
	refreshCache bool
	glossary     Glossary
	maxAttempts  int
	progress     ProgressFunc
	logger       *zap.Logger
	extra        []string
}

// WithCache 设置缓存
func WithCache(cache Cache) Option {
	return func(o *orchestratorOptions) {
		o.cache = cache
	}
}

// WithRefreshCache 跳过缓存读取，但仍然写入新结果
func WithRefreshCache(refresh bool) Option {
	return func(o *orchestratorOptions) {
		o.refreshCache = refresh
	}
}

// WithGlossary 设置预定义译文
func WithGlossary(glossary Glossary) Option {
	return func(o *orchestratorOptions) {
		o.glossary = glossary
	}
}

// WithMaxAttempts 设置每个块位置的最大尝试次数
func WithMaxAttempts(n int) Option {
	return func(o *orchestratorOptions) {
		o.maxAttempts = n
	}
}

// WithProgress 设置进度回调
func WithProgress(fn ProgressFunc) Option {
	return func(o *orchestratorOptions) {
		o.progress = fn
	}
}

// WithInstruction 追加额外的提示词指令
func WithInstruction(instruction string) Option {
	return func(o *orchestratorOptions) {
		o.extra = append(o.extra, instruction)
	}
}

// WithLogger 设置logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *orchestratorOptions) {
		o.logger = logger
	}
}
