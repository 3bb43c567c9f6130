package translation

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nerdneilsfield/docx-translator/pkg/placeholder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testID(i int) string {
	return fmt.Sprintf("%08x-%03x", i, i)
}

func TestEncodeRecord(t *testing.T) {
	assert.Equal(t, "0000000a-00a: Hello", EncodeRecord("0000000a-00a", "  Hello \n"))
	assert.Equal(t, `0000000a-00a: line one\n\nline two`, EncodeRecord("0000000a-00a", "line one\n\nline two"))
	assert.Equal(t, `0000000a-00a: C:\\new`, EncodeRecord("0000000a-00a", `C:\new`))
	assert.NotContains(t, EncodeRecord("0000000a-00a", "a\r\n\r\nb"), "\n")
}

func TestParseRecordsRoundTrip(t *testing.T) {
	texts := []string{
		"Hello",
		"two\n\nparagraphs",
		`back\slash and \n literal`,
		"key: value: more",
		"ünïcødé 中文",
	}

	var records, ids []string
	for i, text := range texts {
		ids = append(ids, testID(i))
		records = append(records, EncodeRecord(testID(i), text))
	}

	got, err := ParseRecords(strings.Join(records, RecordSeparator), ids)
	require.NoError(t, err)
	require.Equal(t, len(texts), got.Len())
	for i, text := range texts {
		value, ok := got.Get(testID(i))
		require.True(t, ok)
		assert.Equal(t, text, value)
	}
}

func TestParseRecordsTolerance(t *testing.T) {
	ids := []string{testID(1), testID(2)}

	t.Run("CRLF和多余空行", func(t *testing.T) {
		response := "\r\n" + testID(1) + ": uno\r\n\r\n\r\n\r\n" + testID(2) + ": dos\r\n"
		got, err := ParseRecords(response, ids)
		require.NoError(t, err)
		v1, _ := got.Get(testID(1))
		v2, _ := got.Get(testID(2))
		assert.Equal(t, "uno", v1)
		assert.Equal(t, "dos", v2)
	})

	t.Run("空译文", func(t *testing.T) {
		response := testID(1) + ": \n\n" + testID(2) + ": dos"
		got, err := ParseRecords(response, ids)
		require.NoError(t, err)
		v1, ok := got.Get(testID(1))
		require.True(t, ok)
		assert.Empty(t, v1)

		got, err = ParseRecords(testID(2)+": dos\n\n"+testID(1)+":", ids)
		require.NoError(t, err)
		v1, _ = got.Get(testID(1))
		assert.Empty(t, v1)
	})

	t.Run("结果按期望顺序排列", func(t *testing.T) {
		response := testID(2) + ": dos\n\n" + testID(1) + ": uno"
		got, err := ParseRecords(response, ids)
		require.NoError(t, err)
		assert.Equal(t, ids, got.Keys())
	})
}

func TestParseRecordsViolations(t *testing.T) {
	ids := []string{testID(1), testID(2)}

	tests := []struct {
		name     string
		response string
	}{
		{"缺少分隔符", testID(1) + ":uno\n\n" + testID(2) + ": dos"},
		{"未知标识符", testID(1) + ": uno\n\n" + testID(3) + ": tres"},
		{"重复标识符", testID(1) + ": uno\n\n" + testID(1) + ": otra vez\n\n" + testID(2) + ": dos"},
		{"缺失标识符", testID(1) + ": uno"},
		{"空响应", ""},
		{"闲聊", "Sure! Here is the translation."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecords(tt.response, ids)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, ErrProtocolViolation))
			assert.Equal(t, ErrCodeProtocolViolation, ErrorCode(err))
		})
	}
}

func TestParseRecordsAcceptsSplitEntries(t *testing.T) {
	m := placeholder.NewTextMap()
	m.Set(testID(1), "first")
	m.Set(testID(2), "second\nline")

	chunks := Split(m, 1000)
	require.Len(t, chunks, 1)

	got, err := ParseRecords(chunks[0].Payload(), chunks[0].IDs())
	require.NoError(t, err)
	v, _ := got.Get(testID(2))
	assert.Equal(t, "second\nline", v)
}
