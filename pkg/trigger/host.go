package trigger

import (
	"github.com/google/uuid"
)

// StatusItem is the status display primitive the host provides.
type StatusItem interface {
	SetText(text string)
	Text() string
	Show()
	Hide()
	Dispose()
}

// Host is everything the session needs from the editor it runs in.
type Host interface {
	// CreateStatusItem creates a hidden, empty status item.
	CreateStatusItem() StatusItem
	// ShowInformation shows a transient, non-blocking notice.
	ShowInformation(message string)
	// ShowWarning shows a non-blocking warning.
	ShowWarning(message string)
	// ReplaceSelection replaces the editor's current selection with text.
	ReplaceSelection(text string) error
}

// Selection is the editor selection carried by a selection-changed event.
// Start and End are rune offsets into Document.
type Selection struct {
	Document string
	Start    int
	End      int
}

// TextSelection selects all of text.
func TextSelection(text string) Selection {
	return Selection{Document: text, Start: 0, End: len([]rune(text))}
}

// Empty reports whether the selection covers no characters.
func (s Selection) Empty() bool {
	start, end := s.bounds()
	return start == end
}

// Text returns the selected part of Document.
func (s Selection) Text() string {
	start, end := s.bounds()
	if start == end {
		return ""
	}
	return string([]rune(s.Document)[start:end])
}

// bounds clamps the offsets to the document and orders them, so a selection
// made backwards reads the same as one made forwards.
func (s Selection) bounds() (int, int) {
	n := len([]rune(s.Document))
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > n {
			return n
		}
		return v
	}
	start, end := clamp(s.Start), clamp(s.End)
	if start > end {
		start, end = end, start
	}
	return start, end
}

// Query is the text captured from one selection, translated in one round.
type Query struct {
	ID   string
	Text string
}

// NewQuery captures text under a fresh round id.
func NewQuery(text string) Query {
	return Query{ID: uuid.NewString(), Text: text}
}

// Len is the query length in characters.
func (q Query) Len() int {
	return len([]rune(q.Text))
}

// withText keeps the round id for a derived query.
func (q Query) withText(text string) Query {
	return Query{ID: q.ID, Text: text}
}
