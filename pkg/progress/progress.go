package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Tracker 在终端单行渲染块翻译进度。
// 预算缩减会让剩余块被重新切分，所以总数可以在运行中变化。
type Tracker struct {
	mu sync.Mutex

	totalUnits     int64
	completedUnits int64
	startTime      time.Time
	unitSymbol     string
	writer         io.Writer
	isDone         bool

	// 渲染相关
	barWidth      int
	completedChar string
	remainingChar string
	percentFormat string
	message       string

	// 颜色设置
	percentColor text.Colors
	barColor     text.Colors
	unitColor    text.Colors
	timeColor    text.Colors
	messageColor text.Colors
}

// Option 定义进度跟踪器的选项
type Option func(*Tracker)

// NewTracker creates a new progress tracker.
func NewTracker(totalUnits int64, options ...Option) *Tracker {
	pt := &Tracker{
		totalUnits:    totalUnits,
		startTime:     time.Now(),
		unitSymbol:    "chunks",
		writer:        os.Stderr,
		barWidth:      40,
		completedChar: "█",
		remainingChar: "░",
		percentFormat: "%.1f%%",
		message:       "翻译进度",
		percentColor:  text.Colors{text.FgHiWhite},
		barColor:      text.Colors{text.FgCyan},
		unitColor:     text.Colors{text.FgYellow},
		timeColor:     text.Colors{text.FgGreen},
		messageColor:  text.Colors{text.FgWhite},
	}

	for _, option := range options {
		option(pt)
	}
	return pt
}

// WithUnit 设置单位符号
func WithUnit(symbol string) Option {
	return func(pt *Tracker) {
		pt.unitSymbol = symbol
	}
}

// WithWriter 设置输出写入器
func WithWriter(writer io.Writer) Option {
	return func(pt *Tracker) {
		pt.writer = writer
	}
}

// WithMessage 设置进度条消息
func WithMessage(message string) Option {
	return func(pt *Tracker) {
		pt.message = message
	}
}

// WithBarStyle 设置进度条样式
func WithBarStyle(width int, completedChar, remainingChar string) Option {
	return func(pt *Tracker) {
		pt.barWidth = width
		pt.completedChar = completedChar
		pt.remainingChar = remainingChar
	}
}

// Report 同时更新已完成数与总数，签名与编排器的进度回调一致
func (pt *Tracker) Report(done, total int) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.isDone {
		return
	}
	pt.totalUnits = int64(total)
	pt.completedUnits = int64(done)
	pt.render()
}

// Update 更新已完成的单位数
func (pt *Tracker) Update(completedUnits int64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.isDone {
		return
	}
	pt.completedUnits = completedUnits
	pt.render()
}

// SetTotal 设置总单位数
func (pt *Tracker) SetTotal(totalUnits int64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.totalUnits = totalUnits
}

// GetPercentage 获取完成百分比
func (pt *Tracker) GetPercentage() float64 {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	return pt.percentLocked()
}

func (pt *Tracker) percentLocked() float64 {
	if pt.totalUnits <= 0 {
		return 0
	}
	return float64(pt.completedUnits) / float64(pt.totalUnits) * 100
}

// Done 结束进度条，并在有统计时渲染总结表格
func (pt *Tracker) Done(summary *SummaryStats) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if !pt.isDone && pt.totalUnits > 0 {
		pt.render()
		fmt.Fprintln(pt.writer)
	}
	pt.isDone = true

	if summary != nil {
		RenderSummary(pt.writer, summary)
	}
}

// render 渲染进度条
func (pt *Tracker) render() {
	if pt.writer == nil {
		return
	}

	var builder strings.Builder
	builder.WriteString("\x1b[K\r")

	if pt.message != "" {
		builder.WriteString(pt.messageColor.Sprint(pt.message))
		builder.WriteString(": ")
	}

	builder.WriteString(pt.percentColor.Sprint(fmt.Sprintf(pt.percentFormat, pt.percentLocked())))
	builder.WriteString(" [")

	var completedWidth int
	if pt.totalUnits > 0 {
		completedWidth = int(float64(pt.barWidth) * float64(pt.completedUnits) / float64(pt.totalUnits))
		if completedWidth > pt.barWidth {
			completedWidth = pt.barWidth
		}
	}
	if completedWidth > 0 {
		builder.WriteString(pt.barColor.Sprint(strings.Repeat(pt.completedChar, completedWidth)))
	}
	builder.WriteString(strings.Repeat(pt.remainingChar, pt.barWidth-completedWidth))
	builder.WriteString("] ")

	builder.WriteString(pt.unitColor.Sprint(fmt.Sprintf("%d/%d %s", pt.completedUnits, pt.totalUnits, pt.unitSymbol)))
	builder.WriteString(" ")
	builder.WriteString(pt.timeColor.Sprint("用时: " + FormatDuration(time.Since(pt.startTime))))

	fmt.Fprint(pt.writer, builder.String())
}

// FormatDuration 格式化时间间隔
func FormatDuration(d time.Duration) string {
	// 对于小于1分钟的时间，显示秒
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	// 对于小于1小时的时间，显示分钟和秒
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", h, m, s)
}

// SummaryStats 一次文档翻译的总结
type SummaryStats struct {
	InputPath     string
	OutputPath    string
	Model         string
	Segments      int
	GlossaryHits  int
	CacheHits     int
	CacheMisses   int
	CacheEntries  int64
	Chunks        int
	Requests      int
	BudgetShrinks int
	InitialBudget int
	FinalBudget   int
	TokensIn      int
	TokensOut     int
	Leaks         int
	TotalTime     time.Duration
}

// RenderSummary 渲染最终的总结表格
func RenderSummary(w io.Writer, stats *SummaryStats) {
	if w == nil || stats == nil {
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)

	tw.AppendRow(table.Row{"项", "值"})
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"输入文件", stats.InputPath})
	tw.AppendRow(table.Row{"输出文件", stats.OutputPath})
	tw.AppendRow(table.Row{"模型", stats.Model})
	tw.AppendRow(table.Row{"文本片段", stats.Segments})
	if stats.GlossaryHits > 0 {
		tw.AppendRow(table.Row{"术语表命中", stats.GlossaryHits})
	}
	// 未启用缓存时三项都为零
	if stats.CacheHits > 0 || stats.CacheMisses > 0 || stats.CacheEntries > 0 {
		tw.AppendRow(table.Row{"缓存命中", stats.CacheHits})
		tw.AppendRow(table.Row{"缓存未命中", stats.CacheMisses})
		tw.AppendRow(table.Row{"缓存条目", stats.CacheEntries})
	}

	tw.AppendSeparator()
	tw.AppendRow(table.Row{"块数", stats.Chunks})
	tw.AppendRow(table.Row{"请求次数", stats.Requests})
	tw.AppendRow(table.Row{"预算缩减", stats.BudgetShrinks})
	tw.AppendRow(table.Row{"预算 (字符)", fmt.Sprintf("%d -> %d", stats.InitialBudget, stats.FinalBudget)})

	if stats.TokensIn > 0 || stats.TokensOut > 0 {
		tw.AppendSeparator()
		tw.AppendRow(table.Row{"输入 Tokens", stats.TokensIn})
		tw.AppendRow(table.Row{"输出 Tokens", stats.TokensOut})
	}

	tw.AppendSeparator()
	if stats.Leaks > 0 {
		tw.AppendRow(table.Row{"残留标识符", text.FgRed.Sprint(stats.Leaks)})
	}
	tw.AppendRow(table.Row{"总耗时", FormatDuration(stats.TotalTime)})

	tw.SetStyle(table.StyleLight)
	tw.Render()
}
