package translation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nerdneilsfield/docx-translator/pkg/placeholder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []placeholder.Entry {
	texts := []string{
		"short",
		"a somewhat longer sentence with words",
		"x",
		strings.Repeat("long ", 30),
		"中文文本",
		"  padded  ",
		"multi\nline",
		"tail",
	}
	entries := make([]placeholder.Entry, len(texts))
	for i, text := range texts {
		entries[i] = placeholder.Entry{ID: testID(i), Text: text}
	}
	return entries
}

func TestSplitEntriesCoverage(t *testing.T) {
	entries := sampleEntries()

	for _, budget := range []int{1, 10, 25, 60, 100, 1000, 100000} {
		chunks := SplitEntries(entries, budget)
		require.NotEmpty(t, chunks)

		var flattened []placeholder.Entry
		for _, chunk := range chunks {
			require.NotEmpty(t, chunk.Entries, "budget %d produced an empty chunk", budget)
			assert.Len(t, chunk.Records, len(chunk.Entries))
			assert.Equal(t, utf8.RuneCountInString(chunk.Payload()), chunk.Size)
			if len(chunk.Entries) > 1 {
				assert.LessOrEqual(t, chunk.Size, budget, "multi-record chunk over budget %d", budget)
			}
			flattened = append(flattened, chunk.Entries...)
		}
		assert.Equal(t, entries, flattened, "budget %d must keep every entry once in order", budget)
	}
}

func TestSplitEntriesTinyBudget(t *testing.T) {
	entries := sampleEntries()
	chunks := SplitEntries(entries, 1)
	assert.Len(t, chunks, len(entries), "every record is oversized and gets its own chunk")
}

func TestSplitEntriesLargeBudget(t *testing.T) {
	entries := sampleEntries()
	chunks := SplitEntries(entries, 1<<20)
	require.Len(t, chunks, 1)
	assert.Equal(t, len(entries), len(chunks[0].Entries))
}

func TestSplitEntriesBoundary(t *testing.T) {
	entries := []placeholder.Entry{
		{ID: testID(1), Text: "aaaa"},
		{ID: testID(2), Text: "bbbb"},
	}
	// 每条记录 12 + 2 + 4 = 18 字符，两条加分隔符正好 38
	assert.Len(t, SplitEntries(entries, 38), 1)
	assert.Len(t, SplitEntries(entries, 37), 2)
}

func TestSplitEmpty(t *testing.T) {
	assert.Empty(t, Split(placeholder.NewTextMap(), 100))
}

func TestChunkSizeCountsRunes(t *testing.T) {
	chunks := SplitEntries([]placeholder.Entry{{ID: testID(1), Text: "中文"}}, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, 16, chunks[0].Size)
}
