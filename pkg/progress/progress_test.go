package progress

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerReport(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker(4, WithWriter(&buf), WithMessage("chunks"), WithBarStyle(10, "#", "."))

	tracker.Report(1, 4)
	assert.Contains(t, buf.String(), "1/4 chunks")
	assert.InDelta(t, 25.0, tracker.GetPercentage(), 0.001)

	// A budget shrink re-chunks the remainder and grows the total.
	tracker.Report(2, 6)
	assert.Contains(t, buf.String(), "2/6 chunks")
	assert.InDelta(t, 33.33, tracker.GetPercentage(), 0.01)
}

func TestTrackerDoneStopsRendering(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker(2, WithWriter(&buf))

	tracker.Update(2)
	tracker.Done(nil)
	written := buf.Len()

	tracker.Report(1, 3)
	tracker.Update(3)
	assert.Equal(t, written, buf.Len())
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, &SummaryStats{
		InputPath:     "in.docx",
		OutputPath:    "out.docx",
		Model:         "gpt-4o-mini",
		Segments:      12,
		Chunks:        3,
		Requests:      4,
		BudgetShrinks: 1,
		InitialBudget: 400,
		FinalBudget:   200,
		TotalTime:     90 * time.Second,
	})

	out := buf.String()
	assert.Contains(t, out, "in.docx")
	assert.Contains(t, out, "out.docx")
	assert.Contains(t, out, "gpt-4o-mini")
	assert.Contains(t, out, "400 -> 200")
	assert.Contains(t, out, "1m30s")
	assert.NotContains(t, out, "Tokens")
	assert.NotContains(t, out, "残留标识符")
	assert.NotContains(t, out, "缓存命中")
}

func TestRenderSummaryCacheRows(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, &SummaryStats{
		Segments:     5,
		CacheHits:    3,
		CacheMisses:  2,
		CacheEntries: 41,
	})

	out := buf.String()
	assert.Contains(t, out, "缓存命中")
	assert.Contains(t, out, "缓存未命中")
	assert.Contains(t, out, "41")
	assert.NotContains(t, out, "术语表命中")
}

func TestRenderSummaryNil(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m5s", FormatDuration(125*time.Second))
	assert.Equal(t, "1h1m1s", FormatDuration(time.Hour+time.Minute+time.Second))
}
