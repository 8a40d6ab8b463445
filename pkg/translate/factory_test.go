package translate

import "testing"

func TestParseProviderType(t *testing.T) {
	t.Parallel()

	tests := map[string]ProviderType{
		"":               ProviderGoogle,
		"Google":         ProviderGoogle,
		"google-cn":      ProviderGoogleCN,
		" GOOGLE_CN ":    ProviderGoogleCN,
		"libretranslate": ProviderLibreTranslate,
	}
	for in, want := range tests {
		got, err := ParseProviderType(in)
		if err != nil {
			t.Fatalf("ParseProviderType(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseProviderType(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseProviderType("deepl"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewTranslatorSelectsBackend(t *testing.T) {
	t.Parallel()

	tr, err := NewTranslator(Config{Provider: ProviderGoogleCN, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("NewTranslator returned error: %v", err)
	}
	inst, ok := tr.(*InstrumentedTranslator)
	if !ok {
		t.Fatalf("expected instrumented translator, got %T", tr)
	}
	google, ok := inst.Unwrap().(*GoogleClient)
	if !ok {
		t.Fatalf("expected *GoogleClient, got %T", inst.Unwrap())
	}
	if google.baseURL != DefaultGoogleCNURL {
		t.Fatalf("base URL = %q, want %q", google.baseURL, DefaultGoogleCNURL)
	}

	tr, err = NewTranslator(Config{Provider: ProviderLibreTranslate, BaseURL: "http://mt:5000/", Logger: quietLogger()})
	if err != nil {
		t.Fatalf("NewTranslator returned error: %v", err)
	}
	libre, ok := tr.(*InstrumentedTranslator).Unwrap().(*LibreTranslateClient)
	if !ok {
		t.Fatalf("expected *LibreTranslateClient")
	}
	if libre.baseURL != "http://mt:5000" {
		t.Fatalf("base URL = %q", libre.baseURL)
	}

	if _, err := NewTranslator(Config{Provider: "argos", Logger: quietLogger()}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
