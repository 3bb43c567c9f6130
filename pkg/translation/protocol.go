package translation

import (
	"strings"

	"github.com/nerdneilsfield/docx-translator/pkg/placeholder"
)

const (
	// RecordSeparator 记录之间的空行
	RecordSeparator = "\n\n"
	// KeyValueSeparator 标识符与文本之间的分隔符
	KeyValueSeparator = ": "
)

var (
	escaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)
	unescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\r`, "\r")
)

// EncodeRecord 编码一条 "identifier: text" 记录。
// 文本首尾空白被去掉，换行和反斜杠被转义，因此记录内部不会出现空行；
// 标识符只含 [0-9a-f-]，第一个 ": " 总是键值边界。
func EncodeRecord(id, text string) string {
	return id + KeyValueSeparator + escaper.Replace(strings.TrimSpace(text))
}

// DecodeValue 还原记录文本中的转义
func DecodeValue(value string) string {
	return unescaper.Replace(value)
}

// ParseRecords 把响应拆回记录，结果按 expected 的顺序排列。
// 缺少分隔符、未知标识符、重复或缺失的标识符都视为协议违规。
func ParseRecords(response string, expected []string) (*placeholder.TextMap, error) {
	want := make(map[string]bool, len(expected))
	for _, id := range expected {
		want[id] = true
	}

	response = strings.ReplaceAll(response, "\r\n", "\n")
	got := make(map[string]string, len(expected))

	for _, block := range strings.Split(strings.TrimSpace(response), RecordSeparator) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		parts := strings.SplitN(block, KeyValueSeparator, 2)
		// 空译文 "id: " 在去除空白后只剩 "id:"
		if len(parts) == 1 && strings.HasSuffix(block, ":") {
			parts = []string{strings.TrimSuffix(block, ":"), ""}
		}
		if len(parts) != 2 {
			return nil, NewProtocolError("record %q has no identifier separator", clip(block))
		}

		id := strings.TrimSpace(parts[0])
		if !want[id] {
			return nil, NewProtocolError("response contains unexpected identifier %q", clip(id))
		}
		if _, dup := got[id]; dup {
			return nil, NewProtocolError("identifier %q appears more than once", id)
		}
		got[id] = DecodeValue(parts[1])
	}

	records := placeholder.NewTextMap()
	for _, id := range expected {
		value, ok := got[id]
		if !ok {
			return nil, NewProtocolError("response is missing identifier %q", id)
		}
		records.Set(id, value)
	}
	return records, nil
}

func clip(s string) string {
	const max = 80
	if r := []rune(s); len(r) > max {
		return string(r[:max]) + "..."
	}
	return s
}
