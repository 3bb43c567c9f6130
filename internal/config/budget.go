package config

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	// DefaultCharsPerToken 每个 token 约合的字符数
	DefaultCharsPerToken = 4.0
	// DefaultSafetyMargin 预算安全系数
	DefaultSafetyMargin = 0.9
	// FallbackInputTokens 未知模型使用的上下文容量
	FallbackInputTokens = 8192
)

// BudgetInfo 分块预算的推算结果
type BudgetInfo struct {
	Model          string
	MaxInputTokens int
	Budget         int      // 单块字符上限
	Known          bool     // 模型是否在配置中
	Clamped        bool     // 是否被 max_chunk_chars 截断
	Suggestions    []string // 未知模型时的相近名称
}

// ResolveChunkBudget 由模型上下文容量推算单块字符预算：
// maxInputTokens × chars_per_token × chunk_safety_margin，
// max_chunk_chars 大于 0 时作为上限。
func (c *Config) ResolveChunkBudget(modelName string) BudgetInfo {
	info := BudgetInfo{Model: modelName, MaxInputTokens: FallbackInputTokens}

	if m, ok := c.GetModel(modelName); ok {
		info.Known = true
		if m.MaxInputTokens > 0 {
			info.MaxInputTokens = m.MaxInputTokens
		}
	} else {
		info.Suggestions = SuggestModels(modelName, c.ModelNames())
	}

	charsPerToken := c.CharsPerToken
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	margin := c.ChunkSafetyMargin
	if margin <= 0 || margin > 1 {
		margin = DefaultSafetyMargin
	}

	info.Budget = int(float64(info.MaxInputTokens) * charsPerToken * margin)
	if c.MaxChunkChars > 0 && c.MaxChunkChars < info.Budget {
		info.Budget = c.MaxChunkChars
		info.Clamped = true
	}
	if info.Budget < 1 {
		info.Budget = 1
	}
	return info
}

// SuggestModels 返回与 name 相近的模型名称，最多三个
func SuggestModels(name string, candidates []string) []string {
	const maxSuggestions = 3

	ranks := fuzzy.RankFindNormalizedFold(name, candidates)
	sort.Sort(ranks)

	seen := make(map[string]bool)
	var out []string
	for _, r := range ranks {
		if len(out) == maxSuggestions {
			return out
		}
		seen[r.Target] = true
		out = append(out, r.Target)
	}

	// 输入比候选更长时（如带日期后缀），反向匹配
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	for _, c := range sorted {
		if len(out) == maxSuggestions {
			break
		}
		if !seen[c] && strings.HasPrefix(strings.ToLower(name), strings.ToLower(c)) {
			out = append(out, c)
		}
	}
	return out
}
