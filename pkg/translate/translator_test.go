package translate

import "testing"

func TestLanguageMapperToBackendCode(t *testing.T) {
	t.Parallel()

	lm := NewLanguageMapper()
	for in, want := range map[string]string{"EN": "en", "fr-CA": "fr", "zh_CN": "zh", " de ": "de"} {
		if got := lm.ToBackendCode(in); got != want {
			t.Fatalf("ToBackendCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLanguageMapperSameLanguage(t *testing.T) {
	t.Parallel()

	lm := NewLanguageMapper()
	tests := []struct {
		a, b string
		want bool
	}{
		{"zh-cn", "zh-CN", true},
		{"zh", "zh-CN", true},
		{"EN", "en", true},
		{"zh-TW", "zh-CN", false},
		{"en", "fr", false},
		{"", "en", false},
	}
	for _, tt := range tests {
		if got := lm.SameLanguage(tt.a, tt.b); got != tt.want {
			t.Fatalf("SameLanguage(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
