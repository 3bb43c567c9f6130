package placeholder

import (
	"bytes"
	"encoding/json"
)

// Entry 是 TextMap 中的一条记录
type Entry struct {
	ID   string
	Text string
}

// TextMap 是按插入顺序迭代的标识符到文本映射
type TextMap struct {
	keys   []string
	values map[string]string
}

// NewTextMap 创建空映射
func NewTextMap() *TextMap {
	return &TextMap{values: make(map[string]string)}
}

// Set 写入一条记录；已存在的键保持原有位置
func (m *TextMap) Set(id, text string) {
	if _, exists := m.values[id]; !exists {
		m.keys = append(m.keys, id)
	}
	m.values[id] = text
}

// Get 按标识符查找
func (m *TextMap) Get(id string) (string, bool) {
	text, ok := m.values[id]
	return text, ok
}

// Has 判断标识符是否存在
func (m *TextMap) Has(id string) bool {
	_, ok := m.values[id]
	return ok
}

// Len 返回记录数
func (m *TextMap) Len() int {
	return len(m.keys)
}

// Keys 按插入顺序返回标识符
func (m *TextMap) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Entries 按插入顺序返回全部记录
func (m *TextMap) Entries() []Entry {
	entries := make([]Entry, len(m.keys))
	for i, id := range m.keys {
		entries[i] = Entry{ID: id, Text: m.values[id]}
	}
	return entries
}

// MarshalJSON 按插入顺序输出 JSON 对象
func (m *TextMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.values[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
