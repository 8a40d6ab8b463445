package translate

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	translationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glance_translation_requests_total",
			Help: "Total number of translation requests",
		},
		[]string{"provider", "status"},
	)

	translationRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glance_translation_request_duration_seconds",
			Help:    "Duration of translation requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"provider", "status"},
	)

	translationRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glance_translation_request_size_bytes",
			Help:    "Size of translation request text in bytes",
			Buckets: []float64{8, 32, 128, 512, 2048, 8192, 32768},
		},
		[]string{"provider"},
	)

	translationResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glance_translation_response_size_bytes",
			Help:    "Size of translation response text in bytes",
			Buckets: []float64{8, 32, 128, 512, 2048, 8192, 32768},
		},
		[]string{"provider"},
	)

	translationSuggestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glance_translation_suggestions_total",
			Help: "Responses in which the provider corrected or questioned the input",
		},
		[]string{"provider", "kind"},
	)
)

// InstrumentedTranslator records request metrics around another Translator.
type InstrumentedTranslator struct {
	next     Translator
	provider string
}

// NewInstrumentedTranslator wraps next; provider labels every sample.
func NewInstrumentedTranslator(next Translator, provider string) *InstrumentedTranslator {
	return &InstrumentedTranslator{next: next, provider: provider}
}

// Translate delegates to the wrapped translator and records the outcome.
func (t *InstrumentedTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (*Result, error) {
	start := time.Now()
	res, err := t.next.Translate(ctx, text, sourceLang, targetLang)

	responseSize := 0
	if res != nil {
		responseSize = len(res.TranslatedText)
	}
	t.record(time.Since(start), err == nil, len(text), responseSize)

	if res != nil {
		switch {
		case res.Source.AutoCorrected:
			translationSuggestionsTotal.WithLabelValues(t.provider, "autocorrected").Inc()
		case res.Source.DidYouMean:
			translationSuggestionsTotal.WithLabelValues(t.provider, "did_you_mean").Inc()
		}
	}
	return res, err
}

// CheckHealth delegates to the wrapped translator.
func (t *InstrumentedTranslator) CheckHealth(ctx context.Context) error {
	return t.next.CheckHealth(ctx)
}

// SupportedLanguages delegates to the wrapped translator.
func (t *InstrumentedTranslator) SupportedLanguages(ctx context.Context) ([]string, error) {
	return t.next.SupportedLanguages(ctx)
}

// Unwrap returns the wrapped translator.
func (t *InstrumentedTranslator) Unwrap() Translator {
	return t.next
}

func (t *InstrumentedTranslator) record(duration time.Duration, success bool, requestSize, responseSize int) {
	status := "success"
	if !success {
		status = "error"
	}

	translationRequestsTotal.WithLabelValues(t.provider, status).Inc()
	translationRequestDuration.WithLabelValues(t.provider, status).Observe(duration.Seconds())
	translationRequestSize.WithLabelValues(t.provider).Observe(float64(requestSize))
	if success {
		translationResponseSize.WithLabelValues(t.provider).Observe(float64(responseSize))
	}
}
