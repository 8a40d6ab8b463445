package translate

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

// AutoDetect asks a backend to identify the source language itself.
const AutoDetect = "auto"

// Translator defines the interface for machine translation backends.
// This abstraction lets the selection trigger switch between providers
// (Google, Google CN, LibreTranslate) without changing its decision logic.
type Translator interface {
	// Translate translates text into targetLang. An empty sourceLang or
	// AutoDetect lets the backend detect the source language.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (*Result, error)

	// CheckHealth verifies that the translation backend is reachable.
	CheckHealth(ctx context.Context) error

	// SupportedLanguages returns the language codes accepted by this backend.
	SupportedLanguages(ctx context.Context) ([]string, error)
}

// Result is a translation plus what the backend reported about its input.
type Result struct {
	TranslatedText   string
	Source           SourceText
	DetectedLanguage string
}

// SourceText describes the backend's view of the submitted text.
// Value holds the corrected or suggested text when either flag is set.
type SourceText struct {
	Value         string
	AutoCorrected bool
	DidYouMean    bool
}

// HasSuggestion reports whether the backend corrected or questioned the input.
func (s SourceText) HasSuggestion() bool {
	return s.AutoCorrected || s.DidYouMean
}

// LanguageMapper handles conversion between the language codes users write
// in settings and the formats backends expect.
type LanguageMapper struct{}

// NewLanguageMapper creates a new language mapper instance.
func NewLanguageMapper() *LanguageMapper {
	return &LanguageMapper{}
}

// ToBackendCode converts a language code to a bare ISO 639-1 code.
// Examples:
//   - "EN" -> "en"
//   - "fr-CA" -> "fr"
//   - "zh_CN" -> "zh"
func (lm *LanguageMapper) ToBackendCode(code string) string {
	lang := strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(lang, "-_"); idx >= 0 {
		lang = lang[:idx]
	}
	return lang
}

// Canonical returns the BCP 47 form of code ("zh-cn" -> "zh-CN").
// Unparseable codes are returned trimmed and otherwise untouched.
func (lm *LanguageMapper) Canonical(code string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(code, "_", "-"))
	if trimmed == "" || strings.EqualFold(trimmed, AutoDetect) {
		return trimmed
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	return tag.String()
}

// SameLanguage reports whether two codes name the same language. When either
// side has no region or script, only base languages are compared.
func (lm *LanguageMapper) SameLanguage(a, b string) bool {
	ca, cb := lm.Canonical(a), lm.Canonical(b)
	if ca == "" || cb == "" {
		return false
	}
	if strings.EqualFold(ca, cb) {
		return true
	}
	if strings.ContainsAny(ca, "-") && strings.ContainsAny(cb, "-") {
		return false
	}
	return lm.ToBackendCode(ca) == lm.ToBackendCode(cb)
}

func isAutoDetect(sourceLang string) bool {
	s := strings.TrimSpace(sourceLang)
	return s == "" || strings.EqualFold(s, AutoDetect)
}
