// Package messages renders the notices shown to the user, in the user's
// locale, from catalogs embedded in the binary.
package messages

import (
	"embed"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// Message IDs.
const (
	TranslateOn  = "TranslateOn"
	TranslateOff = "TranslateOff"
	DidYouMean   = "DidYouMean"
)

//go:embed active.*.toml
var localeFS embed.FS

var catalogFiles = []string{"active.en.toml", "active.fr.toml", "active.zh.toml"}

// Catalog is a thin wrapper around go-i18n's Bundle/Localizer bound to one
// locale.
type Catalog struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	logger    *logrus.Logger
}

// New builds a Catalog for locale (e.g. "fr", "zh-CN"), falling back to
// English for unknown locales and missing messages.
func New(locale string, logger *logrus.Logger) *Catalog {
	if logger == nil {
		logger = logrus.New()
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, file := range catalogFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.WithError(err).WithField("file", file).Warn("Failed to load message catalog")
		}
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, language.English.String())

	return &Catalog{
		bundle:    bundle,
		localizer: i18n.NewLocalizer(bundle, languages...),
		logger:    logger,
	}
}

// T renders the message identified by id. Unknown ids render as the id.
func (c *Catalog) T(id string, data map[string]any) string {
	if id == "" {
		return ""
	}
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		c.logger.WithError(err).WithField("message_id", id).Debug("Localize failed")
		return id
	}
	return msg
}
