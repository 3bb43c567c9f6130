package translation

import (
	"fmt"
	"strings"
)

// PromptBuilder 提示词构建器
type PromptBuilder struct {
	// 源语言
	SourceLang string
	// 目标语言
	TargetLang string
	// 额外的指令
	ExtraInstructions []string
}

// NewPromptBuilder 创建提示词构建器
func NewPromptBuilder(sourceLang, targetLang string) *PromptBuilder {
	return &PromptBuilder{
		SourceLang:        sourceLang,
		TargetLang:        targetLang,
		ExtraInstructions: make([]string, 0),
	}
}

// AddInstruction 添加额外指令
func (pb *PromptBuilder) AddInstruction(instruction string) *PromptBuilder {
	pb.ExtraInstructions = append(pb.ExtraInstructions, instruction)
	return pb
}

// BuildInstruction 构建批量记录翻译指令
func (pb *PromptBuilder) BuildInstruction() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a translator. Translate the following text from %s to %s. "+
		"Only translate the text content and do not alter any code, tags, or placeholders.",
		pb.SourceLang, pb.TargetLang)

	sb.WriteString(`

Input format:
- Each record is a single line of the form "<identifier>: <text>".
- Records are separated by one blank line.

Output rules:
1. Return exactly one record for every input record, in the same order.
2. Copy each identifier unchanged, followed by ": " and the translated text.
3. Separate records with one blank line. Never put a blank line inside a record.
4. Keep escape sequences such as \n and \\ exactly as written.
5. Do not add explanations, headings, code fences, or any other text.`)

	if len(pb.ExtraInstructions) > 0 {
		sb.WriteString("\n\nAdditional Instructions:")
		for i, instruction := range pb.ExtraInstructions {
			fmt.Fprintf(&sb, "\n%d. %s", i+1, instruction)
		}
	}
	return sb.String()
}
