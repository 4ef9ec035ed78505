package i18n

import (
	"context"
	"strings"
)

type Lang string

const (
	EN Lang = "en"
	ZH Lang = "zh"
	JA Lang = "ja"
)

// FromLanguageCode maps a BCP 47-ish code ("zh-CN", "ja-JP", ...) to a
// supported language, defaulting to English.
func FromLanguageCode(code string) Lang {
	code = strings.ToLower(strings.TrimSpace(code))
	switch {
	case strings.HasPrefix(code, "zh"):
		return ZH
	case strings.HasPrefix(code, "ja"):
		return JA
	default:
		return EN
	}
}

func Parse(s string) Lang {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zh":
		return ZH
	case "ja":
		return JA
	case "en":
		return EN
	default:
		return EN
	}
}

type langKey struct{}

// WithLang threads the request language through the context. The language is
// always request-scoped; there is deliberately no package-level current
// language, so concurrent requests cannot leak locales into each other.
func WithLang(ctx context.Context, lang Lang) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFrom returns the request language, defaulting to English.
func LangFrom(ctx context.Context) Lang {
	v := ctx.Value(langKey{})
	if v == nil {
		return EN
	}
	return v.(Lang)
}
