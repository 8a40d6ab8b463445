package trigger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/glance/pkg/settings"
	"github.com/dasmlab/glance/pkg/translate"
)

type fakeItem struct {
	mu       sync.Mutex
	text     string
	visible  bool
	disposed bool
	shown    chan string
}

func (i *fakeItem) SetText(text string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.text = text
}

func (i *fakeItem) Text() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.text
}

func (i *fakeItem) Show() {
	i.mu.Lock()
	i.visible = true
	text := i.text
	i.mu.Unlock()
	select {
	case i.shown <- text:
	default:
	}
}

func (i *fakeItem) Hide() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.visible = false
}

func (i *fakeItem) Dispose() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.disposed = true
	i.visible = false
}

type fakeHost struct {
	mu       sync.Mutex
	items    []*fakeItem
	infos    []string
	warnings []string
	replaced []string
	shown    chan string
}

func newFakeHost() *fakeHost {
	return &fakeHost{shown: make(chan string, 16)}
}

func (h *fakeHost) CreateStatusItem() StatusItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	item := &fakeItem{shown: h.shown}
	h.items = append(h.items, item)
	return item
}

func (h *fakeHost) ShowInformation(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.infos = append(h.infos, message)
}

func (h *fakeHost) ShowWarning(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.warnings = append(h.warnings, message)
}

func (h *fakeHost) ReplaceSelection(text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replaced = append(h.replaced, text)
	return nil
}

func (h *fakeHost) lastItem() *fakeItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.items) == 0 {
		return nil
	}
	return h.items[len(h.items)-1]
}

func (h *fakeHost) warningCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.warnings)
}

type translateCall struct {
	text   string
	target string
}

// fakeTranslator answers from a function and records every call.
type fakeTranslator struct {
	mu     sync.Mutex
	calls  []translateCall
	answer func(text, target string) (*translate.Result, error)
}

func (f *fakeTranslator) Translate(_ context.Context, text, _, targetLang string) (*translate.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, translateCall{text: text, target: targetLang})
	answer := f.answer
	f.mu.Unlock()
	return answer(text, targetLang)
}

func (f *fakeTranslator) CheckHealth(context.Context) error { return nil }

func (f *fakeTranslator) SupportedLanguages(context.Context) ([]string, error) { return nil, nil }

func (f *fakeTranslator) recorded() []translateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]translateCall(nil), f.calls...)
}

var errBackend = errors.New("backend unavailable")

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type fixedLocalizer struct{}

func (fixedLocalizer) T(id string, data map[string]any) string {
	if s, ok := data["Suggestion"].(string); ok {
		return id + ": " + s
	}
	return id
}

// newTestSession returns a switched-on session backed by tr.
func newTestSession(host *fakeHost, tr translate.Translator, st settings.Settings) *Session {
	s := NewSession(Config{
		Host:     host,
		Settings: st,
		NewTranslator: func(settings.Settings) (translate.Translator, error) {
			return tr, nil
		},
		Messages:      fixedLocalizer{},
		DebounceDelay: 20 * time.Millisecond,
		Logger:        quietLogger(),
	})
	s.Toggle()
	return s
}

func (i *fakeItem) state() (visible, disposed bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.visible, i.disposed
}

func visibleOf(i *fakeItem) bool {
	visible, _ := i.state()
	return visible
}
