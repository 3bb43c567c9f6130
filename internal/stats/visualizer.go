package stats

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/nerdneilsfield/docx-translator/pkg/progress"
)

// Visualizer 统计数据可视化器
type Visualizer struct {
	db *Database
	w  io.Writer
}

// NewVisualizer 创建可视化器
func NewVisualizer(db *Database, w io.Writer) *Visualizer {
	return &Visualizer{db: db, w: w}
}

// ShowOverview 显示总览
func (v *Visualizer) ShowOverview() {
	stats := v.db.GetStats()

	v.printTitle(color.FgCyan, "📊 Translation History Overview")
	v.printSection("🎯 Overall Statistics", [][]string{
		{"Total Runs", formatNumber(stats.TotalRuns)},
		{"Total Segments", formatNumber(stats.TotalSegments)},
		{"Total Characters", formatNumber(stats.TotalCharacters)},
		{"Total Requests", formatNumber(stats.TotalRequests)},
		{"Total Errors", formatNumber(stats.TotalErrors)},
		{"Cache Hits", formatNumber(stats.CacheHits)},
		{"Glossary Hits", formatNumber(stats.GlossaryHits)},
		{"Total Duration", progress.FormatDuration(stats.TotalDuration)},
		{"Database Created", formatTime(stats.CreatedAt)},
		{"Last Updated", formatTime(stats.LastUpdated)},
	})

	perf := stats.PerformanceStats
	fmt.Fprintln(v.w)
	v.printSection("⚡ Performance Statistics", [][]string{
		{"Avg Speed", fmt.Sprintf("%.2f chars/sec", perf.AverageSpeed)},
		{"Avg Chunks/Run", fmt.Sprintf("%.1f", perf.AverageChunks)},
		{"Avg Budget Shrinks", fmt.Sprintf("%.2f", perf.AverageShrinks)},
		{"Fastest Run", progress.FormatDuration(perf.FastestRun)},
		{"Slowest Run", progress.FormatDuration(perf.SlowestRun)},
	})
}

// ShowLanguagePairs 显示语言对统计
func (v *Visualizer) ShowLanguagePairs() {
	stats := v.db.GetStats()

	v.printTitle(color.FgMagenta, "🌍 Language Pair Statistics")
	if len(stats.LanguagePairs) == 0 {
		fmt.Fprintln(v.w, "No language pair data available.")
		return
	}

	// 按运行次数排序
	pairs := make([]*LanguagePairStats, 0, len(stats.LanguagePairs))
	for _, pair := range stats.LanguagePairs {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].RunCount != pairs[j].RunCount {
			return pairs[i].RunCount > pairs[j].RunCount
		}
		return pairs[i].SourceLanguage+pairs[i].TargetLanguage < pairs[j].SourceLanguage+pairs[j].TargetLanguage
	})

	for i, pair := range pairs {
		if i > 0 {
			fmt.Fprintln(v.w)
		}
		successRate := float64(pair.RunCount-pair.ErrorCount) / float64(pair.RunCount) * 100
		v.printSection(fmt.Sprintf("🔄 %s → %s", pair.SourceLanguage, pair.TargetLanguage), [][]string{
			{"Runs", formatNumber(pair.RunCount)},
			{"Characters", formatNumber(pair.CharacterCount)},
			{"Errors", formatNumber(pair.ErrorCount)},
			{"Success Rate", fmt.Sprintf("%.1f%%", successRate)},
			{"Avg Duration", progress.FormatDuration(pair.AverageDuration)},
			{"Last Used", formatTime(pair.LastUsed)},
		})
	}
}

// ShowModels 显示模型统计
func (v *Visualizer) ShowModels() {
	stats := v.db.GetStats()

	v.printTitle(color.FgGreen, "🤖 Model Statistics")
	if len(stats.Models) == 0 {
		fmt.Fprintln(v.w, "No model data available.")
		return
	}

	names := make([]string, 0, len(stats.Models))
	for name := range stats.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(v.w)
		}
		model := stats.Models[name]
		v.printSection("📋 "+name, [][]string{
			{"Runs", formatNumber(model.RunCount)},
			{"Requests", formatNumber(model.Requests)},
			{"Budget Shrinks", formatNumber(model.BudgetShrinks)},
			{"Tokens", fmt.Sprintf("%s in / %s out", formatNumber(model.TokensIn), formatNumber(model.TokensOut))},
			{"Errors", formatNumber(model.ErrorCount)},
			{"Last Used", formatTime(model.LastUsed)},
		})
	}
}

// ShowRecentRuns 显示最近的运行
func (v *Visualizer) ShowRecentRuns(limit int) {
	records := v.db.GetRecentRuns(limit)

	v.printTitle(color.FgBlue, fmt.Sprintf("🕒 Recent Runs (Last %d)", len(records)))
	if len(records) == 0 {
		fmt.Fprintln(v.w, "No recent runs found.")
		return
	}

	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(v.w)
		}

		status := "✅"
		if record.Failed() {
			status = "❌"
		}

		title := fmt.Sprintf("%s %s", status, record.InputFile)
		if len([]rune(title)) > 60 {
			title = string([]rune(title)[:57]) + "..."
		}

		rows := [][]string{
			{"Timestamp", formatTime(record.Timestamp)},
			{"Language", fmt.Sprintf("%s → %s", record.SourceLanguage, record.TargetLanguage)},
			{"Model", record.Model},
			{"Segments", strconv.Itoa(record.Segments)},
			{"Chunks", fmt.Sprintf("%d (%d requests, %d shrinks)", record.Chunks, record.Requests, record.BudgetShrinks)},
			{"Duration", progress.FormatDuration(record.Duration)},
		}
		if record.OutputFile != "" && !record.Failed() {
			rows = append(rows, []string{"Output", record.OutputFile})
		}
		v.printSection(title, rows)

		if record.ErrorMessage != "" {
			color.New(color.FgRed).Fprintf(v.w, "  ❌ Error: [%s] %s\n", record.ErrorCode, record.ErrorMessage)
		}
	}
}

// printTitle 打印标题
func (v *Visualizer) printTitle(attr color.Attribute, title string) {
	c := color.New(attr, color.Bold)
	c.Fprintln(v.w, title)
	c.Fprintln(v.w, strings.Repeat("=", 50))
}

// printSection 打印一个统计部分
func (v *Visualizer) printSection(title string, data [][]string) {
	color.New(color.FgYellow, color.Bold).Fprintf(v.w, "%s\n", title)

	// 计算最大标签长度
	maxLabelLen := 0
	for _, row := range data {
		if len(row[0]) > maxLabelLen {
			maxLabelLen = len(row[0])
		}
	}

	labelColor := color.New(color.FgCyan)
	valueColor := color.New(color.FgWhite, color.Bold)
	for _, row := range data {
		labelColor.Fprintf(v.w, "  %-*s: ", maxLabelLen, row[0])
		valueColor.Fprintln(v.w, row[1])
	}
}

// formatNumber 格式化数字（添加千位分隔符）
func formatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}
	if len(str) <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(char)
	}
	return result.String()
}

// formatTime 格式化时间
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}

	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04:05")
	}
	if t.Year() == now.Year() {
		return t.Format("Jan 02 15:04")
	}
	return t.Format("2006-01-02 15:04")
}
