package config

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageName 把 BCP-47 代码（fr、pt-BR）展开为英文名称，
// 已经是名称（French）或无法识别时原样返回
func LanguageName(code string) string {
	code = strings.TrimSpace(code)
	if !looksLikeTag(code) {
		return code
	}

	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil || tag == language.Und {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

// looksLikeTag 主语言子标签只有两三个字母
func looksLikeTag(code string) bool {
	primary := code
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		primary = code[:i]
	}
	return len(primary) == 2 || len(primary) == 3
}
