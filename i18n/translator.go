package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional values substituted into {name} placeholders (for
// example "value" or "allowed").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var catalog = map[string]map[string]string{
	"en": {
		"invalid_type":      "expected {expected}, got {got}",
		"invalid_cast":      "cannot cast {value} to {kind}",
		"invalid_enum":      "value {value} invalid, allowed values are {allowed}",
		"custom_validation": "validation failed",
		"required":          "required property missing",
	},
	"ja": {
		"invalid_type":      "型が不正です ({expected} が必要です)",
		"invalid_cast":      "{value} を {kind} に変換できません",
		"invalid_enum":      "{value} は無効な値です (許可: {allowed})",
		"custom_validation": "検証に失敗しました",
		"required":          "必須プロパティが不足しています",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalog[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

// Default returns the English translator.
func Default() Translator { return dictTranslator{lang: "en"} }

// New returns the built-in translator closest to lang. lang may be a BCP 47
// tag, an Accept-Language list, or a POSIX locale such as "ja_JP.UTF-8".
// Unknown or empty input falls back to English.
func New(lang string) Translator {
	lang = normalizeLocale(lang)
	if lang == "" {
		return Default()
	}
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return Default()
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default()
	}
	base, _ := supported[idx].Base()
	return dictTranslator{lang: base.String()}
}

func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "C" || s == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}
