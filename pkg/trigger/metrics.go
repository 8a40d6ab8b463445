package trigger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Round outcomes.
const (
	outcomeDisplayed           = "displayed"
	outcomeFailed              = "failed"
	outcomeRedirectedDetection = "redirected_detection"
	outcomeRedirectedSplit     = "redirected_split"
	outcomeDropped             = "dropped"
)

var (
	selectionEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glance_selection_events_total",
			Help: "Non-empty selection-changed events received while enabled",
		},
	)

	debounceSupersededTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glance_debounce_superseded_total",
			Help: "Scheduled translations cancelled by a newer selection",
		},
	)

	roundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glance_rounds_total",
			Help: "Translation rounds by outcome",
		},
		[]string{"outcome"},
	)

	suggestionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glance_suggestions_total",
			Help: "Did-you-mean warnings shown to the user",
		},
	)

	sessionEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "glance_session_enabled",
			Help: "1 while the selection translator is switched on",
		},
	)
)
