package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StatsDBVersion   = "1.0.0"
	MaxRecentRecords = 100
)

// Database 运行历史数据库，以 JSON 文件保存
type Database struct {
	filePath string
	data     *StatisticsDB
	mutex    sync.RWMutex
	logger   *zap.Logger
}

// NewDatabase 创建统计数据库
func NewDatabase(filePath string, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db := &Database{
		filePath: filePath,
		logger:   logger,
	}

	// 确保目录存在
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	// 加载或创建数据
	if err := db.load(); err != nil {
		return nil, fmt.Errorf("failed to load stats database: %w", err)
	}

	return db, nil
}

// newStatisticsDB 创建空的统计数据
func newStatisticsDB() *StatisticsDB {
	now := time.Now()
	return &StatisticsDB{
		Version:       StatsDBVersion,
		CreatedAt:     now,
		LastUpdated:   now,
		LanguagePairs: make(map[string]*LanguagePairStats),
		Models:        make(map[string]*ModelStats),
		RecentRuns:    make([]*RunRecord, 0),
	}
}

// load 加载统计数据，文件不存在时从空数据开始
func (db *Database) load() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	data, err := os.ReadFile(db.filePath)
	if os.IsNotExist(err) {
		db.data = newStatisticsDB()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read stats file: %w", err)
	}

	var statsDB StatisticsDB
	if err := json.Unmarshal(data, &statsDB); err != nil {
		return fmt.Errorf("failed to parse stats file: %w", err)
	}

	// 初始化可能为 nil 的字段
	if statsDB.LanguagePairs == nil {
		statsDB.LanguagePairs = make(map[string]*LanguagePairStats)
	}
	if statsDB.Models == nil {
		statsDB.Models = make(map[string]*ModelStats)
	}
	if statsDB.RecentRuns == nil {
		statsDB.RecentRuns = make([]*RunRecord, 0)
	}

	db.data = &statsDB
	db.logger.Debug("loaded statistics database",
		zap.String("path", db.filePath),
		zap.String("version", statsDB.Version),
		zap.Int64("total_runs", statsDB.TotalRuns))

	return nil
}

// Save 保存统计数据
func (db *Database) Save() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	return db.saveUnsafe()
}

// saveUnsafe 不安全的保存（需要已持有锁）
func (db *Database) saveUnsafe() error {
	db.data.LastUpdated = time.Now()

	data, err := json.MarshalIndent(db.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats data: %w", err)
	}

	// 原子写入
	tempFile := db.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp stats file: %w", err)
	}

	if err := os.Rename(tempFile, db.filePath); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename stats file: %w", err)
	}

	return nil
}

// AddRunRecord 添加运行记录并保存
func (db *Database) AddRunRecord(record *RunRecord) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if record.Status == "" {
		record.Status = StatusCompleted
	}

	// 更新总体统计
	db.data.TotalRuns++
	db.data.TotalSegments += int64(record.Segments)
	db.data.TotalCharacters += int64(record.Characters)
	db.data.TotalRequests += int64(record.Requests)
	db.data.TotalDuration += record.Duration
	db.data.CacheHits += int64(record.CacheHits)
	db.data.GlossaryHits += int64(record.GlossaryHits)
	if record.Failed() {
		db.data.TotalErrors++
	}

	// 更新语言对统计
	langPairKey := fmt.Sprintf("%s-%s", record.SourceLanguage, record.TargetLanguage)
	langPair, exists := db.data.LanguagePairs[langPairKey]
	if !exists {
		langPair = &LanguagePairStats{
			SourceLanguage: record.SourceLanguage,
			TargetLanguage: record.TargetLanguage,
		}
		db.data.LanguagePairs[langPairKey] = langPair
	}
	langPair.RunCount++
	langPair.CharacterCount += int64(record.Characters)
	langPair.LastUsed = record.Timestamp
	if record.Failed() {
		langPair.ErrorCount++
	}
	totalDuration := time.Duration(int64(langPair.AverageDuration) * (langPair.RunCount - 1))
	langPair.AverageDuration = (totalDuration + record.Duration) / time.Duration(langPair.RunCount)

	// 更新模型统计
	model, exists := db.data.Models[record.Model]
	if !exists {
		model = &ModelStats{Model: record.Model}
		db.data.Models[record.Model] = model
	}
	model.RunCount++
	model.Requests += int64(record.Requests)
	model.BudgetShrinks += int64(record.BudgetShrinks)
	model.TokensIn += int64(record.TokensIn)
	model.TokensOut += int64(record.TokensOut)
	model.LastUsed = record.Timestamp
	if record.Failed() {
		model.ErrorCount++
	}

	// 添加到最近记录
	db.data.RecentRuns = append(db.data.RecentRuns, record)

	// 保持最近记录数量限制
	if len(db.data.RecentRuns) > MaxRecentRecords {
		sort.SliceStable(db.data.RecentRuns, func(i, j int) bool {
			return db.data.RecentRuns[i].Timestamp.After(db.data.RecentRuns[j].Timestamp)
		})
		db.data.RecentRuns = db.data.RecentRuns[:MaxRecentRecords]
	}

	// 更新性能统计
	db.updatePerformanceStats(record)

	return db.saveUnsafe()
}

// updatePerformanceStats 更新性能统计，只统计成功的运行
func (db *Database) updatePerformanceStats(record *RunRecord) {
	if record.Failed() || record.Duration <= 0 {
		return
	}
	perf := &db.data.PerformanceStats
	perf.SpeedSamples++
	n := float64(perf.SpeedSamples)

	speed := float64(record.Characters) / record.Duration.Seconds()
	perf.AverageSpeed = (perf.AverageSpeed*(n-1) + speed) / n
	perf.AverageChunks = (perf.AverageChunks*(n-1) + float64(record.Chunks)) / n
	perf.AverageShrinks = (perf.AverageShrinks*(n-1) + float64(record.BudgetShrinks)) / n

	// 更新最快/最慢运行
	if perf.FastestRun == 0 || record.Duration < perf.FastestRun {
		perf.FastestRun = record.Duration
	}
	if record.Duration > perf.SlowestRun {
		perf.SlowestRun = record.Duration
	}
}

// GetStats 获取统计数据（只读副本）
func (db *Database) GetStats() *StatisticsDB {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	// 创建深拷贝
	data, _ := json.Marshal(db.data)
	var copy StatisticsDB
	_ = json.Unmarshal(data, &copy)

	return &copy
}

// GetRecentRuns 获取最近的运行记录，最新的在前
func (db *Database) GetRecentRuns(limit int) []*RunRecord {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if limit <= 0 || limit > len(db.data.RecentRuns) {
		limit = len(db.data.RecentRuns)
	}

	sorted := make([]*RunRecord, len(db.data.RecentRuns))
	copy(sorted, db.data.RecentRuns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	return sorted[:limit]
}
