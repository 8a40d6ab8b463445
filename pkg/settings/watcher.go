package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// reloadDelay coalesces the burst of events editors emit when saving.
const reloadDelay = 50 * time.Millisecond

// Watcher reloads a settings file whenever it changes on disk.
type Watcher struct {
	path     string
	logger   *logrus.Logger
	onChange func(Settings)
}

// NewWatcher creates a Watcher for path. onChange receives every successfully
// parsed version; invalid versions are logged and skipped.
func NewWatcher(path string, onChange func(Settings), logger *logrus.Logger) *Watcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Watcher{path: path, logger: logger, onChange: onChange}
}

// Run watches until ctx is cancelled. The parent directory is watched rather
// than the file so that atomic rename-on-save is picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", w.path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w.logger.WithFields(logrus.Fields{
		"path": abs,
	}).Info("Watching settings file")

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				reload = time.After(reloadDelay)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("Settings watcher error")
		case <-reload:
			reload = nil
			s, err := Load(abs)
			if err != nil {
				w.logger.WithError(err).Warn("Ignoring invalid settings file, keeping previous settings")
				continue
			}
			w.logger.WithFields(logrus.Fields{
				"api":             s.Provider,
				"target_language": s.TargetLanguage,
				"detection":       s.Detection,
				"from_language":   s.FromLanguage,
			}).Info("Settings reloaded")
			w.onChange(s)
		}
	}
}
