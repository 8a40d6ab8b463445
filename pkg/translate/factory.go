package translate

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ProviderType names a translation backend.
type ProviderType string

const (
	// ProviderGoogle uses the public Google Translate web endpoint.
	ProviderGoogle ProviderType = "google"
	// ProviderGoogleCN uses the same endpoint served from translate.google.cn.
	ProviderGoogleCN ProviderType = "google-cn"
	// ProviderLibreTranslate uses a self-hosted LibreTranslate server.
	ProviderLibreTranslate ProviderType = "libretranslate"
)

// Config holds configuration for creating a Translator instance.
type Config struct {
	// Provider specifies which backend to use.
	Provider ProviderType
	// BaseURL overrides the backend's default base URL.
	BaseURL string
	// APIKey is sent to backends that accept one (LibreTranslate).
	APIKey string
	// Logger is the logger instance to use. If nil, a default logger is created.
	Logger *logrus.Logger
}

// NewTranslator creates a Translator for cfg.Provider, wrapped so every call
// is recorded in the provider metrics.
func NewTranslator(cfg Config) (Translator, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	cfg.Logger.WithFields(logrus.Fields{
		"provider": cfg.Provider,
		"base_url": cfg.BaseURL,
	}).Debug("Creating translator instance")

	var tr Translator
	switch cfg.Provider {
	case ProviderGoogle:
		tr = NewGoogleClient(orDefault(cfg.BaseURL, DefaultGoogleURL), cfg.Logger)
	case ProviderGoogleCN:
		tr = NewGoogleClient(orDefault(cfg.BaseURL, DefaultGoogleCNURL), cfg.Logger)
	case ProviderLibreTranslate:
		tr = NewLibreTranslateClient(cfg.BaseURL, cfg.APIKey, cfg.Logger)
	default:
		cfg.Logger.WithFields(logrus.Fields{
			"provider": cfg.Provider,
		}).Error("Unknown translation provider")
		return nil, fmt.Errorf("unknown translation provider: %s", cfg.Provider)
	}

	return NewInstrumentedTranslator(tr, string(cfg.Provider)), nil
}

// ParseProviderType parses a provider name, case-insensitively.
// An empty name selects ProviderGoogle.
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "google":
		return ProviderGoogle, nil
	case "google-cn", "google_cn", "googlecn":
		return ProviderGoogleCN, nil
	case "libretranslate", "libre":
		return ProviderLibreTranslate, nil
	default:
		return "", fmt.Errorf("unknown provider type: %s (supported: google, google-cn, libretranslate)", s)
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimRight(strings.TrimSpace(value), "/")
}
