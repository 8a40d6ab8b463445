package server

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/glance/pkg/trigger"
)

// Event types sent to the editor plugin.
const (
	EventStatus  = "status"
	EventInfo    = "info"
	EventWarning = "warning"
	EventReplace = "replace"
)

// Event is one message on the /api/v1/events stream.
type Event struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Visible   bool      `json:"visible,omitempty"`
	Disposed  bool      `json:"disposed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Status is the current state of the status item.
type Status struct {
	Enabled bool   `json:"enabled"`
	Visible bool   `json:"visible"`
	Text    string `json:"text"`
}

// subscriberBuffer is how many events a slow subscriber may lag behind
// before events are dropped for it.
const subscriberBuffer = 32

// Hub fans events out to SSE subscribers.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	logger      *logrus.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.New()
	}
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a subscriber. The returned function unsubscribes.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}
}

// Publish delivers ev to every subscriber without blocking.
func (h *Hub) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.logger.WithFields(logrus.Fields{
				"type": ev.Type,
			}).Warn("Dropping event for slow subscriber")
		}
	}
}

// Host implements trigger.Host by publishing to a Hub. The editor plugin
// renders status events and applies replace events.
type Host struct {
	hub *Hub

	// Replacer, when set, is called for every replacement in addition to the
	// replace event (clipboard mode writes the clipboard here).
	Replacer func(text string) error

	mu   sync.Mutex
	item *statusItem
}

var _ trigger.Host = (*Host)(nil)

// NewHost creates a Host publishing to hub.
func NewHost(hub *Hub) *Host {
	return &Host{hub: hub}
}

// CreateStatusItem creates a hidden, empty status item.
func (h *Host) CreateStatusItem() trigger.StatusItem {
	item := &statusItem{hub: h.hub}
	h.mu.Lock()
	h.item = item
	h.mu.Unlock()
	return item
}

// ShowInformation publishes an info event.
func (h *Host) ShowInformation(message string) {
	h.hub.Publish(Event{Type: EventInfo, Text: message})
}

// ShowWarning publishes a warning event.
func (h *Host) ShowWarning(message string) {
	h.hub.Publish(Event{Type: EventWarning, Text: message})
}

// ReplaceSelection publishes a replace event and calls Replacer.
func (h *Host) ReplaceSelection(text string) error {
	if h.Replacer != nil {
		if err := h.Replacer(text); err != nil {
			return err
		}
	}
	h.hub.Publish(Event{Type: EventReplace, Text: text})
	return nil
}

// Status reports the state of the most recent status item.
func (h *Host) Status() Status {
	h.mu.Lock()
	item := h.item
	h.mu.Unlock()
	if item == nil {
		return Status{}
	}
	return item.status()
}

type statusItem struct {
	hub *Hub

	mu       sync.Mutex
	text     string
	visible  bool
	disposed bool
}

func (i *statusItem) SetText(text string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.disposed {
		return
	}
	if i.text == text {
		return
	}
	i.text = text
	if i.visible {
		i.publishLocked()
	}
}

func (i *statusItem) Text() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.text
}

func (i *statusItem) Show() {
	i.setVisible(true)
}

func (i *statusItem) Hide() {
	i.setVisible(false)
}

func (i *statusItem) setVisible(visible bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.disposed || i.visible == visible {
		return
	}
	i.visible = visible
	i.publishLocked()
}

func (i *statusItem) Dispose() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.disposed {
		return
	}
	i.disposed = true
	i.visible = false
	i.hub.Publish(Event{Type: EventStatus, Disposed: true})
}

func (i *statusItem) publishLocked() {
	i.hub.Publish(Event{Type: EventStatus, Text: i.text, Visible: i.visible})
}

func (i *statusItem) status() Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	return Status{Enabled: !i.disposed, Visible: i.visible, Text: i.text}
}
