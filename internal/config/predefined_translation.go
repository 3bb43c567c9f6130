package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// PredefinedTranslation 预定义译文（术语表），整段文本精确匹配时直接使用
type PredefinedTranslation struct {
	SourceLang   string            `toml:"source_lang"`
	TargetLang   string            `toml:"target_lang"`
	Translations map[string]string `toml:"translations"`
}

func NewPredefinedTranslation(sourceLang, targetLang string, translations map[string]string) *PredefinedTranslation {
	return &PredefinedTranslation{
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
		Translations: translations,
	}
}

func LoadPredefinedTranslations(path string) (*PredefinedTranslation, error) {
	// check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("predefined translations file not found: %s", path)
	}

	translations := &PredefinedTranslation{}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read predefined translations file: %w", err)
	}
	if err := toml.Unmarshal(content, translations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal predefined translations: %w", err)
	}
	if translations.SourceLang == "" || translations.TargetLang == "" {
		return nil, fmt.Errorf("predefined translations file is missing source_lang or target_lang")
	}
	return translations, nil
}

// Matches 判断术语表的语言对是否与本次翻译一致，代码与名称视为相同
func (p *PredefinedTranslation) Matches(sourceLang, targetLang string) bool {
	same := func(a, b string) bool {
		return strings.EqualFold(LanguageName(a), LanguageName(b))
	}
	return same(p.SourceLang, sourceLang) && same(p.TargetLang, targetLang)
}

// Lookup 按去掉首尾空白的文本查找译文
func (p *PredefinedTranslation) Lookup(text string) (string, bool) {
	if p == nil || len(p.Translations) == 0 {
		return "", false
	}
	v, ok := p.Translations[strings.TrimSpace(text)]
	return v, ok
}
