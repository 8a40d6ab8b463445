package clipwatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/glance/pkg/trigger"
)

type fakeClipboard struct {
	mu   sync.Mutex
	text string
	err  error
}

func (c *fakeClipboard) read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, c.err
}

func (c *fakeClipboard) write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	return nil
}

func (c *fakeClipboard) set(text string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.err = err
}

type recordingSink struct {
	mu    sync.Mutex
	texts []string
}

func (s *recordingSink) OnSelectionChanged(sel trigger.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, sel.Text())
}

func (s *recordingSink) got() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

func newTestWatcher(cb *fakeClipboard, sink Sink) *Watcher {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return New(sink, time.Millisecond, logger, WithClipboard(cb.read, cb.write))
}

func TestPollForwardsChanges(t *testing.T) {
	cb := &fakeClipboard{text: "already there"}
	sink := &recordingSink{}
	w := newTestWatcher(cb, sink)
	w.last = "already there"

	w.poll()
	if got := sink.got(); len(got) != 0 {
		t.Fatalf("unchanged clipboard forwarded %v", got)
	}

	cb.set("helloWorld", nil)
	w.poll()
	w.poll()
	if got := sink.got(); len(got) != 1 || got[0] != "helloWorld" {
		t.Fatalf("forwarded %v, want [helloWorld]", got)
	}

	cb.set("   ", nil)
	w.poll()
	if got := sink.got(); len(got) != 1 {
		t.Fatalf("blank clipboard forwarded: %v", got)
	}
}

func TestWriteIsNotForwarded(t *testing.T) {
	cb := &fakeClipboard{}
	sink := &recordingSink{}
	w := newTestWatcher(cb, sink)

	if err := w.Write("bonjour"); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	w.poll()
	if got := sink.got(); len(got) != 0 {
		t.Fatalf("own write forwarded: %v", got)
	}

	// The same text copied again later is a real selection.
	cb.set("other", nil)
	w.poll()
	cb.set("bonjour", nil)
	w.poll()
	if got := sink.got(); len(got) != 2 || got[1] != "bonjour" {
		t.Fatalf("forwarded %v", got)
	}
}

func TestPollReadError(t *testing.T) {
	cb := &fakeClipboard{}
	sink := &recordingSink{}
	w := newTestWatcher(cb, sink)

	cb.set("", errors.New("no clipboard utility"))
	w.poll()
	w.poll()
	if !w.failing {
		t.Fatal("expected watcher to record read failure")
	}

	cb.set("recovered", nil)
	w.poll()
	if got := sink.got(); len(got) != 1 || got[0] != "recovered" {
		t.Fatalf("forwarded %v", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cb := &fakeClipboard{text: "start"}
	sink := &recordingSink{}
	w := newTestWatcher(cb, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		w.mu.Lock()
		primed := w.last == "start"
		w.mu.Unlock()
		if primed {
			break
		}
		time.Sleep(time.Millisecond)
	}

	cb.set("copied", nil)
	for len(sink.got()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
	if got := sink.got(); len(got) != 1 || got[0] != "copied" {
		t.Fatalf("forwarded %v", got)
	}
}
