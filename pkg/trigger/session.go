// Package trigger turns editor selection changes into translations shown in
// a status item.
//
// A Session debounces selection events, asks the configured provider for a
// translation and post-processes the response before displaying it:
//
//   - a selection already written in the target language is translated into
//     the fallback source language instead;
//   - provider spelling suggestions are surfaced as warnings;
//   - a selection the provider left untouched is retried once with its
//     identifier case boundaries split into words.
//
// Every retry goes through displayFinalResult, which never retries again.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/glance/pkg/messages"
	"github.com/dasmlab/glance/pkg/settings"
	"github.com/dasmlab/glance/pkg/translate"
)

const (
	// DefaultDebounceDelay is how long a selection must stay put before it
	// is translated.
	DefaultDebounceDelay = 100 * time.Millisecond

	// minHeuristicLength is the query length above which suggestions are
	// surfaced and the case-splitting retry is attempted.
	minHeuristicLength = 5
)

// ErrInactive is returned by commands that need the translator switched on.
var ErrInactive = errors.New("selection translator is switched off")

// TranslatorFactory builds the translator for a settings snapshot.
type TranslatorFactory func(settings.Settings) (translate.Translator, error)

// Detector identifies the language of text, returning "" when unsure.
type Detector interface {
	Detect(text string) string
}

// Localizer renders user-facing notices.
type Localizer interface {
	T(id string, data map[string]any) string
}

// Config holds the collaborators of a Session.
type Config struct {
	// Host provides the status item, notices and selection replacement.
	Host Host
	// Settings is the initial configuration snapshot.
	Settings settings.Settings
	// NewTranslator builds translators. Defaults to DefaultTranslatorFactory.
	NewTranslator TranslatorFactory
	// Detector is consulted when detection is on and the provider reports no
	// source language. Optional.
	Detector Detector
	// Messages renders notices. Defaults to the English catalog.
	Messages Localizer
	// DebounceDelay defaults to DefaultDebounceDelay.
	DebounceDelay time.Duration
	// Logger is the logger instance to use. If nil, a default logger is created.
	Logger *logrus.Logger
}

// Session owns the enabled flag, the status item and the pending debounce
// task of one editor. It is safe for concurrent use.
type Session struct {
	host          Host
	newTranslator TranslatorFactory
	detector      Detector
	messages      Localizer
	delay         time.Duration
	logger        *logrus.Logger
	mapper        *translate.LanguageMapper
	debouncer     Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	enabled    bool
	settings   settings.Settings
	translator translate.Translator
	item       StatusItem
	generation uint64
}

// round is the state one translation round runs against, captured when its
// debounce task fires.
type round struct {
	generation uint64
	translator translate.Translator
	settings   settings.Settings
}

// DefaultTranslatorFactory builds translators with translate.NewTranslator.
func DefaultTranslatorFactory(logger *logrus.Logger) TranslatorFactory {
	return func(s settings.Settings) (translate.Translator, error) {
		cfg, err := s.TranslatorConfig()
		if err != nil {
			return nil, err
		}
		cfg.Logger = logger
		return translate.NewTranslator(cfg)
	}
}

// NewSession creates a switched-off session.
func NewSession(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.NewTranslator == nil {
		cfg.NewTranslator = DefaultTranslatorFactory(cfg.Logger)
	}
	if cfg.Messages == nil {
		cfg.Messages = messages.New("", cfg.Logger)
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		host:          cfg.Host,
		newTranslator: cfg.NewTranslator,
		detector:      cfg.Detector,
		messages:      cfg.Messages,
		delay:         cfg.DebounceDelay,
		logger:        cfg.Logger,
		mapper:        translate.NewLanguageMapper(),
		ctx:           ctx,
		cancel:        cancel,
		settings:      cfg.Settings.Normalize(),
	}
}

// Enabled reports whether the translator is switched on.
func (s *Session) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Settings returns the current configuration snapshot.
func (s *Session) Settings() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Toggle switches the translator on or off and returns the new state.
// Switching on creates the status item and applies the current settings;
// switching off cancels the pending translation and disposes the item.
func (s *Session) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enabled {
		s.disableLocked()
		s.host.ShowInformation(s.messages.T(messages.TranslateOff, nil))
		s.logger.Info("Selection translator switched off")
		return false
	}

	s.enabled = true
	sessionEnabled.Set(1)
	s.host.ShowInformation(s.messages.T(messages.TranslateOn, nil))
	s.item = s.host.CreateStatusItem()
	s.applySettingsLocked()
	s.logger.Info("Selection translator switched on")
	return true
}

// OnConfigChanged stores a new settings snapshot and, while switched on,
// rebuilds the translator from it.
func (s *Session) OnConfigChanged(next settings.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = next.Normalize()
	if s.enabled {
		s.applySettingsLocked()
	}
}

// OnSelectionChanged schedules the translation of sel, replacing any
// translation still waiting for the debounce delay. Empty selections and
// events received while switched off are ignored.
func (s *Session) OnSelectionChanged(sel Selection) {
	if sel.Empty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}

	s.generation++
	generation := s.generation
	query := NewQuery(sel.Text())
	selectionEventsTotal.Inc()

	_, superseded := s.debouncer.Schedule(s.delay, func() {
		s.run(generation, query)
	})
	if superseded {
		debounceSupersededTotal.Inc()
	}
}

// Replace asks the host to replace the current selection with the displayed
// translation and returns the text used.
func (s *Session) Replace() (string, error) {
	s.mu.Lock()
	if !s.enabled || s.item == nil {
		s.mu.Unlock()
		return "", ErrInactive
	}
	text := s.item.Text()
	s.mu.Unlock()

	if err := s.host.ReplaceSelection(text); err != nil {
		return "", fmt.Errorf("replace selection: %w", err)
	}
	return text, nil
}

// SupportedLanguages lists the language codes the configured provider
// accepts. A translator is built from the current settings when the session
// is switched off.
func (s *Session) SupportedLanguages(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	tr := s.translator
	current := s.settings
	s.mu.Unlock()

	if tr == nil {
		var err error
		if tr, err = s.newTranslator(current); err != nil {
			return nil, fmt.Errorf("create translator: %w", err)
		}
	}
	return tr.SupportedLanguages(ctx)
}

// Close switches the session off without notices and aborts in-flight
// translations. The session cannot be reused.
func (s *Session) Close() {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		s.disableLocked()
	}
}

func (s *Session) disableLocked() {
	s.enabled = false
	sessionEnabled.Set(0)
	s.debouncer.Cancel()
	if s.item != nil {
		s.item.Dispose()
		s.item = nil
	}
	s.translator = nil
}

func (s *Session) applySettingsLocked() {
	tr, err := s.newTranslator(s.settings)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"api": s.settings.Provider,
		}).Error("Failed to create translator, selections will be ignored")
		s.translator = nil
		return
	}
	s.translator = tr

	s.logger.WithFields(logrus.Fields{
		"api":             s.settings.Provider,
		"target_language": s.settings.TargetLanguage,
		"detection":       s.settings.Detection,
		"from_language":   s.settings.FromLanguage,
	}).Info("Translator configured")
}

// snapshot captures the state a round runs against.
func (s *Session) snapshot(generation uint64) (round, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.translator == nil {
		return round{}, false
	}
	return round{
		generation: generation,
		translator: s.translator,
		settings:   s.settings,
	}, true
}

func (s *Session) run(generation uint64, query Query) {
	r, ok := s.snapshot(generation)
	if !ok {
		roundsTotal.WithLabelValues(outcomeDropped).Inc()
		s.logger.WithField("query_id", query.ID).Warn("No translator configured, dropping selection")
		return
	}
	s.translateQuery(s.ctx, r, query)
}

// translateQuery translates query into the target language and applies the
// post-processing rules to the response.
func (s *Session) translateQuery(ctx context.Context, r round, query Query) {
	target := r.settings.TargetLanguage
	log := s.logger.WithFields(logrus.Fields{
		"query_id":    query.ID,
		"target_lang": target,
		"text_length": query.Len(),
	})

	res, err := r.translator.Translate(ctx, query.Text, translate.AutoDetect, target)
	if err != nil {
		roundsTotal.WithLabelValues(outcomeFailed).Inc()
		log.WithError(err).Error("Translation failed")
		return
	}

	if r.settings.Detection {
		detected := res.DetectedLanguage
		if detected == "" && s.detector != nil {
			detected = s.detector.Detect(query.Text)
		}
		from := r.settings.FromLanguage
		if s.mapper.SameLanguage(detected, target) && !s.mapper.SameLanguage(detected, from) {
			roundsTotal.WithLabelValues(outcomeRedirectedDetection).Inc()
			log.WithFields(logrus.Fields{
				"detected_lang": detected,
				"from_lang":     from,
			}).Debug("Selection already in target language, translating into fallback language")
			s.displayFinalResult(ctx, r, query, from)
			return
		}
	}

	if query.Len() > minHeuristicLength {
		if res.Source.HasSuggestion() {
			suggestionsTotal.Inc()
			s.host.ShowWarning(s.messages.T(messages.DidYouMean, map[string]any{
				"Suggestion": res.Source.Value,
			}))
		}
		if res.TranslatedText == query.Text {
			if split := Decamelize(query.Text); split != query.Text {
				roundsTotal.WithLabelValues(outcomeRedirectedSplit).Inc()
				log.WithField("split", split).Debug("Translation was a no-op, retrying with case boundaries split")
				s.displayFinalResult(ctx, r, query.withText(split), target)
				return
			}
		}
	}

	s.display(r, query, res.TranslatedText)
}

// displayFinalResult translates query into target and displays the result
// as-is.
func (s *Session) displayFinalResult(ctx context.Context, r round, query Query, target string) {
	res, err := r.translator.Translate(ctx, query.Text, translate.AutoDetect, target)
	if err != nil {
		roundsTotal.WithLabelValues(outcomeFailed).Inc()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"query_id":    query.ID,
			"target_lang": target,
		}).Error("Translation failed")
		return
	}
	s.display(r, query, res.TranslatedText)
}

func (s *Session) display(r round, query Query, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.item == nil {
		roundsTotal.WithLabelValues(outcomeDropped).Inc()
		return
	}
	// Rounds are not cancelled when a newer selection arrives, so a slow
	// response can still overwrite a newer one.
	if r.generation != s.generation {
		s.logger.WithFields(logrus.Fields{
			"query_id":   query.ID,
			"generation": r.generation,
			"latest":     s.generation,
		}).Debug("Superseded round is updating the display")
	}

	roundsTotal.WithLabelValues(outcomeDisplayed).Inc()
	s.item.SetText(text)
	s.item.Show()
}
