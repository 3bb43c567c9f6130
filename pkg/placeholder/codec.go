// Package placeholder swaps the text of a markup tree for short identifiers
// and back again.
package placeholder

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/nerdneilsfield/docx-translator/pkg/markup"
	"go.uber.org/zap"
)

// previewWidth 日志中文本预览的显示宽度
const previewWidth = 60

// Codec 负责提取与回填文本
type Codec struct {
	ids    *IDGenerator
	logger *zap.Logger
}

// NewCodec 创建编解码器，每次运行使用一个新的实例
func NewCodec(logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{
		ids:    NewIDGenerator(),
		logger: logger,
	}
}

// IDs 返回本次运行的标识符生成器
func (c *Codec) IDs() *IDGenerator {
	return c.ids
}

// Extract 先序遍历：节点文本、子节点、尾部文本。
// 非空白文本被替换为标识符，原文（不去除空白）写入 m。
func (c *Codec) Extract(node *markup.Node, m *TextMap) {
	if text := node.Text(); strings.TrimSpace(text) != "" {
		id := c.ids.Next()
		m.Set(id, text)
		node.SetText(id)
		c.logger.Debug("replaced text with id", zap.String("id", id), zap.String("text", Preview(text)))
	}

	for _, child := range node.Children() {
		c.Extract(child, m)
	}

	if tail := node.Tail(); strings.TrimSpace(tail) != "" {
		id := c.ids.Next()
		m.Set(id, tail)
		node.SetTail(id)
		c.logger.Debug("replaced tail with id", zap.String("id", id), zap.String("text", Preview(tail)))
	}
}

// Restore 镜像遍历，把标识符替换为 translated 中的文本。
// 映射中不存在的标识符保持原样，返回替换次数。
func (c *Codec) Restore(node *markup.Node, translated *TextMap) int {
	replaced := 0

	if value, ok := translated.Get(strings.TrimSpace(node.Text())); ok {
		node.SetText(value)
		replaced++
	}

	for _, child := range node.Children() {
		replaced += c.Restore(child, translated)
	}

	if value, ok := translated.Get(strings.TrimSpace(node.Tail())); ok {
		node.SetTail(value)
		replaced++
	}

	return replaced
}

// Preview 截断文本用于日志
func Preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return runewidth.Truncate(text, previewWidth, "...")
}
