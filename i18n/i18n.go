// Package i18n resolves request languages and renders server messages in them.
package i18n

import (
	"strings"

	"cityportal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LangParam is the query parameter used to select a language.
const LangParam = "lang"

var (
	supported = []language.Tag{language.English, language.Russian}
	matcher   = language.NewMatcher(supported)
	fallback  = language.English
)

func init() {
	for key, m := range catalog {
		message.SetString(language.English, key, m.EN)
		message.SetString(language.Russian, key, m.RU)
	}
}

// SetDefault changes the language used when nothing else matches.
func SetDefault(code string) {
	if tag, ok := Parse(code); ok {
		fallback = tag
	}
}

// Default returns the fallback language.
func Default() language.Tag {
	return fallback
}

// Supported returns the supported language tags.
func Supported() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// Parse maps a language code onto a supported tag.
func Parse(code string) (language.Tag, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return fallback, false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return fallback, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return fallback, false
	}
	return supported[idx], true
}

// IsSupported reports whether code names a supported language.
func IsSupported(code string) bool {
	_, ok := Parse(code)
	return ok
}

// MatchAccept resolves an Accept-Language header.
func MatchAccept(header string) language.Tag {
	if strings.TrimSpace(header) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}

// Code returns the two letter code used in LocalizedText.
func Code(tag language.Tag) string {
	base, _ := tag.Base()
	switch base.String() {
	case models.LangRU:
		return models.LangRU
	default:
		return models.LangEN
	}
}

// T renders the message key in the given language.
func T(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag).Sprintf(key, args...)
}

// Localized renders the key in every supported language.
func Localized(key string, args ...any) models.LocalizedText {
	return models.LocalizedText{
		EN: T(language.English, key, args...),
		RU: T(language.Russian, key, args...),
	}
}

// LocalizedFunc is Localized with arguments that depend on the language,
// e.g. an enum value that itself needs translating.
func LocalizedFunc(key string, args func(tag language.Tag) []any) models.LocalizedText {
	return models.LocalizedText{
		EN: T(language.English, key, args(language.English)...),
		RU: T(language.Russian, key, args(language.Russian)...),
	}
}
