// Package clipwatch turns clipboard changes into selection events so the
// translator can run without an editor plugin.
package clipwatch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"

	"github.com/dasmlab/glance/pkg/trigger"
)

// DefaultInterval is the clipboard polling interval.
const DefaultInterval = 300 * time.Millisecond

// Sink receives clipboard selections. *trigger.Session satisfies it.
type Sink interface {
	OnSelectionChanged(trigger.Selection)
}

// Watcher polls the clipboard and forwards new content to a Sink.
type Watcher struct {
	sink     Sink
	interval time.Duration
	logger   *logrus.Logger

	// read and write default to the system clipboard.
	read  func() (string, error)
	write func(string) error

	mu      sync.Mutex
	last    string
	written string
	failing bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithClipboard replaces the system clipboard, mainly for tests.
func WithClipboard(read func() (string, error), write func(string) error) Option {
	return func(w *Watcher) {
		w.read = read
		w.write = write
	}
}

// New creates a watcher polling every interval.
func New(sink Sink, interval time.Duration, logger *logrus.Logger, opts ...Option) *Watcher {
	if logger == nil {
		logger = logrus.New()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	w := &Watcher{
		sink:     sink,
		interval: interval,
		logger:   logger,
		read:     clipboard.ReadAll,
		write:    clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Supported reports whether a system clipboard is available.
func Supported() bool {
	return !clipboard.Unsupported
}

// Run polls until ctx is cancelled. Content present when Run starts is
// not treated as a selection.
func (w *Watcher) Run(ctx context.Context) error {
	if text, err := w.read(); err == nil {
		w.mu.Lock()
		w.last = text
		w.mu.Unlock()
	}

	w.logger.WithFields(logrus.Fields{
		"interval": w.interval.String(),
	}).Info("Watching clipboard for selections")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	text, err := w.read()

	w.mu.Lock()
	if err != nil {
		if !w.failing {
			w.logger.WithError(err).Warn("Failed to read clipboard")
		}
		w.failing = true
		w.mu.Unlock()
		return
	}
	w.failing = false

	if text == w.last {
		w.mu.Unlock()
		return
	}
	w.last = text
	// Our own replacement coming back around.
	if text == w.written {
		w.written = ""
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		return
	}
	w.logger.WithField("text_length", len(text)).Debug("Clipboard changed")
	w.sink.OnSelectionChanged(trigger.TextSelection(text))
}

// Write puts text on the clipboard without it being picked up as a new
// selection. It is used as the replace target in clipboard mode.
func (w *Watcher) Write(text string) error {
	w.mu.Lock()
	w.written = text
	w.mu.Unlock()

	if err := w.write(text); err != nil {
		w.mu.Lock()
		w.written = ""
		w.mu.Unlock()
		return err
	}
	return nil
}
