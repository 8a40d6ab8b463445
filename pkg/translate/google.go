package translate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	// DefaultGoogleURL is the public Google Translate web API host.
	DefaultGoogleURL = "https://translate.googleapis.com"
	// DefaultGoogleCNURL serves the same API from mainland China.
	DefaultGoogleCNURL = "https://translate.google.cn"
	// DefaultGoogleTimeout bounds a single selection translation.
	DefaultGoogleTimeout = 10 * time.Second
)

// googleDataTypes selects the response blocks we read: translation (t),
// alternate translations (at), dictionary (bd), language detection (ld) and
// spelling correction (qca).
var googleDataTypes = []string{"t", "at", "bd", "ld", "qca"}

// googleSuggestionMarkup rewrites the HTML emphasis Google wraps around
// corrected words.
var googleSuggestionMarkup = strings.NewReplacer("<b><i>", "[", "</i></b>", "]")

// GoogleClient implements the Translator interface against the keyless
// translate_a/single endpoint used by the Google Translate web client.
type GoogleClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewGoogleClient creates a new Google Translate client.
// baseURL is DefaultGoogleURL or DefaultGoogleCNURL in practice.
func NewGoogleClient(baseURL string, logger *logrus.Logger) *GoogleClient {
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &GoogleClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultGoogleTimeout,
		},
		logger: logger,
	}
}

func (c *GoogleClient) translateURL(text, sourceLang, targetLang string) string {
	if isAutoDetect(sourceLang) {
		sourceLang = AutoDetect
	}
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", sourceLang)
	q.Set("tl", targetLang)
	q.Set("hl", targetLang)
	for _, dt := range googleDataTypes {
		q.Add("dt", dt)
	}
	q.Set("ie", "UTF-8")
	q.Set("oe", "UTF-8")
	q.Set("q", text)
	return c.baseURL + "/translate_a/single?" + q.Encode()
}

// Translate translates text into targetLang.
func (c *GoogleClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (*Result, error) {
	c.logger.WithFields(logrus.Fields{
		"source_lang": sourceLang,
		"target_lang": targetLang,
		"text_length": len(text),
	}).Debug("Translating text with Google")

	endpoint := c.translateURL(text, sourceLang, targetLang)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"url": c.baseURL,
		}).Error("Translation request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Debug("Translation request completed")

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"response":    truncate(string(body), 256),
		}).Error("Translation request returned non-OK status")
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse reads the positional array returned by translate_a/single:
//
//	[0]    [[translated, original, ...], ...] one entry per sentence
//	[2]    detected source language
//	[7]    [suggestion html, suggestion text, ..., autocorrected flag at [5]]
//	[8]    [[source languages], ...]; [8][0][0] overrides [2] when they differ
func parseGoogleResponse(body []byte) (*Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode response: invalid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("decode response: expected array, got %s", root.Type)
	}

	sentences := root.Get("0")
	if !sentences.IsArray() {
		return nil, fmt.Errorf("decode response: missing translation segments")
	}
	var sb strings.Builder
	sentences.ForEach(func(_, segment gjson.Result) bool {
		if part := segment.Get("0"); part.Type == gjson.String {
			sb.WriteString(part.String())
		}
		return true
	})

	detected := root.Get("2").String()
	if lang := root.Get("8.0.0"); lang.Type == gjson.String && lang.String() != "" {
		detected = lang.String()
	}

	result := &Result{
		TranslatedText:   sb.String(),
		DetectedLanguage: detected,
	}

	if suggestion := root.Get("7.0"); suggestion.Type == gjson.String && suggestion.String() != "" {
		result.Source.Value = googleSuggestionMarkup.Replace(suggestion.String())
		if root.Get("7.5").Bool() {
			result.Source.AutoCorrected = true
		} else {
			result.Source.DidYouMean = true
		}
	}

	return result, nil
}

// CheckHealth verifies the endpoint answers a one-word translation.
func (c *GoogleClient) CheckHealth(ctx context.Context) error {
	c.logger.Debug("Checking Google Translate health")

	if _, err := c.Translate(ctx, "ok", AutoDetect, "en"); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	c.logger.Debug("Google Translate health check passed")
	return nil
}

// SupportedLanguages returns the language codes Google Translate accepts.
// The web endpoint has no listing call, so this is a fixed list.
func (c *GoogleClient) SupportedLanguages(ctx context.Context) ([]string, error) {
	_ = ctx
	return []string{
		"af", "ar", "bg", "bn", "ca", "cs", "da", "de", "el", "en",
		"es", "et", "fa", "fi", "fr", "he", "hi", "hr", "hu", "id",
		"it", "ja", "ko", "lt", "lv", "ms", "nl", "no", "pl", "pt",
		"ro", "ru", "sk", "sl", "sr", "sv", "th", "tr", "uk", "vi",
		"zh-CN", "zh-TW",
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
