// Package settings holds the user-facing translation settings: which provider
// to call, the target language, and the detection fallback.
package settings

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dasmlab/glance/pkg/translate"
)

const (
	// DefaultTargetLanguage is used when the file does not set targetLanguage.
	DefaultTargetLanguage = "zh-CN"
	// DefaultFromLanguage is the detection fallback language.
	DefaultFromLanguage = "en"
)

// Settings is one snapshot of the translation configuration.
type Settings struct {
	// Provider selects the backend: google, google-cn or libretranslate.
	Provider string `toml:"api" json:"api"`
	// TargetLanguage is what selections are translated into.
	TargetLanguage string `toml:"targetLanguage" json:"targetLanguage"`
	// Detection enables the "already in the target language" redirect.
	Detection bool `toml:"detection" json:"detection"`
	// FromLanguage is the language selections are translated into when they
	// are already written in TargetLanguage.
	FromLanguage string `toml:"fromLanguage" json:"fromLanguage"`
	// Endpoint overrides the provider's base URL.
	Endpoint string `toml:"endpoint,omitempty" json:"endpoint,omitempty"`
	// APIKey is passed to providers that accept one.
	APIKey string `toml:"apiKey,omitempty" json:"apiKey,omitempty"`
}

type file struct {
	Translation Settings `toml:"translation"`
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		Provider:       string(translate.ProviderGoogle),
		TargetLanguage: DefaultTargetLanguage,
		Detection:      true,
		FromLanguage:   DefaultFromLanguage,
	}
}

// Parse decodes a TOML document with a [translation] table. Keys missing
// from the document keep their Default values.
func Parse(data []byte) (Settings, error) {
	f := file{Translation: Default()}
	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&f); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	s := f.Translation.Normalize()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load reads and parses the settings file at path.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadOrDefault behaves like Load but returns Default when path does not exist.
func LoadOrDefault(path string) (Settings, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Marshal encodes s as a settings file.
func Marshal(s Settings) ([]byte, error) {
	return toml.Marshal(file{Translation: s})
}

// Normalize trims whitespace and fills empty fields from Default.
func (s Settings) Normalize() Settings {
	def := Default()
	s.Provider = strings.TrimSpace(s.Provider)
	if s.Provider == "" {
		s.Provider = def.Provider
	}
	s.TargetLanguage = strings.TrimSpace(s.TargetLanguage)
	if s.TargetLanguage == "" {
		s.TargetLanguage = def.TargetLanguage
	}
	s.FromLanguage = strings.TrimSpace(s.FromLanguage)
	if s.FromLanguage == "" {
		s.FromLanguage = def.FromLanguage
	}
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	s.APIKey = strings.TrimSpace(s.APIKey)
	return s
}

// Validate checks that the provider is known.
func (s Settings) Validate() error {
	if _, err := translate.ParseProviderType(s.Provider); err != nil {
		return fmt.Errorf("invalid api: %w", err)
	}
	if strings.EqualFold(s.TargetLanguage, translate.AutoDetect) {
		return fmt.Errorf("targetLanguage cannot be %q", translate.AutoDetect)
	}
	return nil
}

// TranslatorConfig maps s onto a translate.Config.
func (s Settings) TranslatorConfig() (translate.Config, error) {
	provider, err := translate.ParseProviderType(s.Provider)
	if err != nil {
		return translate.Config{}, err
	}
	return translate.Config{
		Provider: provider,
		BaseURL:  s.Endpoint,
		APIKey:   s.APIKey,
	}, nil
}
