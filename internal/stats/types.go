package stats

import (
	"time"
)

// 运行状态
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// StatisticsDB 统计数据库结构
type StatisticsDB struct {
	Version     string    `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`

	// 总体统计
	TotalRuns       int64         `json:"total_runs"`
	TotalSegments   int64         `json:"total_segments"`
	TotalCharacters int64         `json:"total_characters"`
	TotalRequests   int64         `json:"total_requests"`
	TotalErrors     int64         `json:"total_errors"`
	TotalDuration   time.Duration `json:"total_duration"`

	// 本地命中（缓存与预定义译文）
	CacheHits    int64 `json:"cache_hits"`
	GlossaryHits int64 `json:"glossary_hits"`

	// 语言对统计
	LanguagePairs map[string]*LanguagePairStats `json:"language_pairs"`

	// 模型统计
	Models map[string]*ModelStats `json:"models"`

	// 最近的运行记录
	RecentRuns []*RunRecord `json:"recent_runs"`

	// 性能统计
	PerformanceStats PerformanceStatistics `json:"performance_stats"`
}

// LanguagePairStats 语言对统计
type LanguagePairStats struct {
	SourceLanguage  string        `json:"source_language"`
	TargetLanguage  string        `json:"target_language"`
	RunCount        int64         `json:"run_count"`
	CharacterCount  int64         `json:"character_count"`
	ErrorCount      int64         `json:"error_count"`
	AverageDuration time.Duration `json:"average_duration"`
	LastUsed        time.Time     `json:"last_used"`
}

// ModelStats 模型统计
type ModelStats struct {
	Model         string    `json:"model"`
	RunCount      int64     `json:"run_count"`
	Requests      int64     `json:"requests"`
	BudgetShrinks int64     `json:"budget_shrinks"`
	TokensIn      int64     `json:"tokens_in"`
	TokensOut     int64     `json:"tokens_out"`
	ErrorCount    int64     `json:"error_count"`
	LastUsed      time.Time `json:"last_used"`
}

// RunRecord 一次文档翻译的记录
type RunRecord struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	InputFile      string    `json:"input_file"`
	OutputFile     string    `json:"output_file"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	Model          string    `json:"model"`

	// 统计信息
	Segments      int           `json:"segments"`
	Characters    int           `json:"characters"`
	Chunks        int           `json:"chunks"`
	Requests      int           `json:"requests"`
	BudgetShrinks int           `json:"budget_shrinks"`
	FinalBudget   int           `json:"final_budget"`
	CacheHits     int           `json:"cache_hits"`
	GlossaryHits  int           `json:"glossary_hits"`
	TokensIn      int           `json:"tokens_in"`
	TokensOut     int           `json:"tokens_out"`
	Leaks         int           `json:"leaks"`
	Duration      time.Duration `json:"duration"`
	Status        string        `json:"status"`

	// 错误信息
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Failed 是否为失败的运行
func (r *RunRecord) Failed() bool {
	return r.Status == StatusFailed
}

// PerformanceStatistics 性能统计
type PerformanceStatistics struct {
	AverageSpeed   float64       `json:"average_speed"` // 字符/秒
	FastestRun     time.Duration `json:"fastest_run"`
	SlowestRun     time.Duration `json:"slowest_run"`
	SpeedSamples   int64         `json:"speed_samples"`
	AverageChunks  float64       `json:"average_chunks"`
	AverageShrinks float64       `json:"average_shrinks"`
}
