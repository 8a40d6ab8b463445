package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dasmlab/glance/pkg/server"
	"github.com/dasmlab/glance/pkg/settings"
)

// client talks to the glanced HTTP bridge.
type client struct {
	baseURL    string
	httpClient *http.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// apiError is a non-2xx bridge response.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("glanced returned status %d: %s", e.StatusCode, e.Message)
}

func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach glanced: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &e) != nil || e.Message == "" {
			e.Message = strings.TrimSpace(string(data))
		}
		return &apiError{StatusCode: resp.StatusCode, Message: e.Message}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *client) Select(ctx context.Context, text string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/selection", map[string]string{"text": text}, nil)
}

func (c *client) Toggle(ctx context.Context) (bool, error) {
	var out struct {
		Enabled bool `json:"enabled"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/commands/toggle", nil, &out)
	return out.Enabled, err
}

func (c *client) Replace(ctx context.Context) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/commands/replace", nil, &out)
	return out.Text, err
}

func (c *client) Status(ctx context.Context) (server.Status, error) {
	var out server.Status
	err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, &out)
	return out, err
}

func (c *client) Settings(ctx context.Context) (settings.Settings, error) {
	var out settings.Settings
	err := c.do(ctx, http.MethodGet, "/api/v1/settings", nil, &out)
	return out, err
}

func (c *client) UpdateSettings(ctx context.Context, update map[string]any) (settings.Settings, error) {
	var out settings.Settings
	err := c.do(ctx, http.MethodPut, "/api/v1/settings", update, &out)
	return out, err
}

// Languages returns the provider name and the language codes it accepts.
func (c *client) Languages(ctx context.Context) (string, []string, error) {
	var out struct {
		API       string   `json:"api"`
		Languages []string `json:"languages"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/languages", nil, &out)
	return out.API, out.Languages, err
}

// Watch streams bridge events to fn until ctx is cancelled or the stream
// ends. The client timeout does not apply.
func (c *client) Watch(ctx context.Context, fn func(server.Event)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/events", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	stream := &http.Client{Transport: c.httpClient.Transport}
	resp, err := stream.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach glanced: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &apiError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var ev server.Event
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}
		fn(ev)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// settingsKeys maps accepted `settings set` keys to their JSON names.
var settingsKeys = map[string]string{
	"api":            "api",
	"provider":       "api",
	"targetlanguage": "targetLanguage",
	"target":         "targetLanguage",
	"detection":      "detection",
	"fromlanguage":   "fromLanguage",
	"from":           "fromLanguage",
	"endpoint":       "endpoint",
	"apikey":         "apiKey",
}

// parseSettingsArgs turns key=value arguments into a partial settings update.
func parseSettingsArgs(args []string) (map[string]any, error) {
	update := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		name, known := settingsKeys[strings.ToLower(strings.TrimSpace(key))]
		if !known {
			return nil, fmt.Errorf("unknown setting %q", key)
		}
		if name == "detection" {
			b, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("detection must be true or false: %w", err)
			}
			update[name] = b
			continue
		}
		update[name] = strings.TrimSpace(value)
	}
	return update, nil
}
