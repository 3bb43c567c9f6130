package translation

import (
	"regexp"
	"strings"
)

// 常见的推理标记，只在响应开头出现时才会被移除，
// 记录中的同名文本保持不变
var leadingReasoningPatterns = func() []*regexp.Regexp {
	tags := []struct {
		start string
		end   string
	}{
		{"<think>", "</think>"},
		{"<thinking>", "</thinking>"},
		{"<thought>", "</thought>"},
		{"<reasoning>", "</reasoning>"},
		{"[THINKING]", "[/THINKING]"},
		{"[REASONING]", "[/REASONING]"},
	}

	patterns := make([]*regexp.Regexp, 0, len(tags)+1)
	for _, tag := range tags {
		pattern := `^\s*` + regexp.QuoteMeta(tag.start) + `(?s:.*?)` + regexp.QuoteMeta(tag.end)
		patterns = append(patterns, regexp.MustCompile(pattern))
	}
	// Markdown 代码块格式的推理过程
	patterns = append(patterns, regexp.MustCompile("^\\s*```(?:thinking|reasoning)[^\\n]*\\n(?s:.*?)\\n```"))
	return patterns
}()

// StripReasoning 移除推理模型放在响应开头的思考过程
func StripReasoning(content string) string {
	for {
		stripped := content
		for _, re := range leadingReasoningPatterns {
			stripped = re.ReplaceAllString(stripped, "")
		}
		if stripped == content {
			return strings.TrimSpace(content)
		}
		content = stripped
	}
}

// HasReasoningPrefix 检查响应开头是否是推理过程
func HasReasoningPrefix(content string) bool {
	for _, re := range leadingReasoningPatterns {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}
