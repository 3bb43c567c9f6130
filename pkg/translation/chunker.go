package translation

import (
	"strings"
	"unicode/utf8"

	"github.com/nerdneilsfield/docx-translator/pkg/placeholder"
)

// Chunk 一次请求发送的一组记录
type Chunk struct {
	Entries []placeholder.Entry
	Records []string
	Size    int // 序列化后的字符数（含记录分隔符）
}

// Payload 返回发送给协作者的负载
func (c Chunk) Payload() string {
	return strings.Join(c.Records, RecordSeparator)
}

// IDs 返回块内标识符，顺序与记录一致
func (c Chunk) IDs() []string {
	ids := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		ids[i] = e.ID
	}
	return ids
}

// Split 按预算把占位符表切成块
func Split(textMap *placeholder.TextMap, budget int) []Chunk {
	return SplitEntries(textMap.Entries(), budget)
}

// SplitEntries 按顺序贪心装箱：加入下一条记录会超出预算时先结束当前块。
// 单条超出预算的记录独占一块；不会产生空块。
func SplitEntries(entries []placeholder.Entry, budget int) []Chunk {
	var (
		chunks  []Chunk
		current Chunk
	)
	sepLen := utf8.RuneCountInString(RecordSeparator)

	for _, entry := range entries {
		record := EncodeRecord(entry.ID, entry.Text)
		size := utf8.RuneCountInString(record)

		add := size
		if len(current.Records) > 0 {
			add += sepLen
		}
		if len(current.Records) > 0 && current.Size+add > budget {
			chunks = append(chunks, current)
			current = Chunk{}
			add = size
		}

		current.Entries = append(current.Entries, entry)
		current.Records = append(current.Records, record)
		current.Size += add
	}

	if len(current.Records) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
