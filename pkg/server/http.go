package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/dasmlab/glance/pkg/settings"
	"github.com/dasmlab/glance/pkg/trigger"
)

// sseKeepAlive is how often an idle event stream gets a comment line so
// proxies do not close it.
const sseKeepAlive = 15 * time.Second

// Session is the part of *trigger.Session the bridge drives.
type Session interface {
	Enabled() bool
	Settings() settings.Settings
	Toggle() bool
	OnConfigChanged(settings.Settings)
	OnSelectionChanged(trigger.Selection)
	Replace() (string, error)
	SupportedLanguages(ctx context.Context) ([]string, error)
}

// HTTPServer is the bridge between an editor plugin and the session:
// selection and settings notifications and commands come in as JSON
// requests, display updates go out as Server-Sent Events.
type HTTPServer struct {
	session Session
	host    *Host
	hub     *Hub
	logger  *logrus.Logger
	port    int
	echo    *echo.Echo

	closing   chan struct{}
	closeOnce sync.Once
}

// NewHTTPServer creates a new HTTP bridge.
func NewHTTPServer(session Session, host *Host, hub *Hub, logger *logrus.Logger, port int) *HTTPServer {
	if logger == nil {
		logger = logrus.New()
	}
	s := &HTTPServer{
		session: session,
		host:    host,
		hub:     hub,
		logger:  logger,
		port:    port,
		closing: make(chan struct{}),
	}
	s.echo = s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.echo
}

func (s *HTTPServer) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	api := e.Group("/api/v1")
	api.POST("/selection", s.handleSelection)
	api.GET("/settings", s.handleGetSettings)
	api.PUT("/settings", s.handlePutSettings)
	api.POST("/commands/toggle", s.handleToggle)
	api.POST("/commands/replace", s.handleReplace)
	api.GET("/status", s.handleStatus)
	api.GET("/languages", s.handleLanguages)
	api.GET("/events", s.handleEvents)

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

// Start starts the HTTP server and blocks until it stops.
func (s *HTTPServer) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.WithFields(logrus.Fields{
		"port": s.port,
	}).Info("Starting HTTP bridge")

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes open event streams and stops accepting requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.closing) })
	return s.echo.Shutdown(ctx)
}

type selectionRequest struct {
	Document *string `json:"document"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Text     *string `json:"text"`
}

func (s *HTTPServer) handleSelection(c echo.Context) error {
	var req selectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid selection payload")
	}

	var sel trigger.Selection
	switch {
	case req.Document != nil:
		sel = trigger.Selection{Document: *req.Document, Start: req.Start, End: req.End}
	case req.Text != nil:
		sel = trigger.TextSelection(*req.Text)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "document or text is required")
	}

	s.session.OnSelectionChanged(sel)
	return c.NoContent(http.StatusAccepted)
}

func (s *HTTPServer) handleGetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, s.session.Settings())
}

func (s *HTTPServer) handlePutSettings(c echo.Context) error {
	next := s.session.Settings()
	if err := json.NewDecoder(c.Request().Body).Decode(&next); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid settings payload")
	}
	next = next.Normalize()
	if err := next.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	s.session.OnConfigChanged(next)
	s.logger.WithFields(logrus.Fields{
		"api":             next.Provider,
		"target_language": next.TargetLanguage,
	}).Info("Settings updated over HTTP")
	return c.JSON(http.StatusOK, s.session.Settings())
}

func (s *HTTPServer) handleToggle(c echo.Context) error {
	enabled := s.session.Toggle()
	return c.JSON(http.StatusOK, map[string]bool{"enabled": enabled})
}

func (s *HTTPServer) handleReplace(c echo.Context) error {
	text, err := s.session.Replace()
	if errors.Is(err, trigger.ErrInactive) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		s.logger.WithError(err).Error("Replace command failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"text": text})
}

func (s *HTTPServer) handleStatus(c echo.Context) error {
	status := s.host.Status()
	status.Enabled = s.session.Enabled()
	if !status.Enabled {
		status.Visible = false
	}
	return c.JSON(http.StatusOK, status)
}

type languagesResponse struct {
	API       string   `json:"api"`
	Languages []string `json:"languages"`
}

func (s *HTTPServer) handleLanguages(c echo.Context) error {
	current := s.session.Settings()
	languages, err := s.session.SupportedLanguages(c.Request().Context())
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"api": current.Provider,
		}).Error("Failed to list supported languages")
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, languagesResponse{API: current.Provider, Languages: languages})
}

// handleEvents streams hub events as Server-Sent Events, starting with the
// current status.
func (s *HTTPServer) handleEvents(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
	w.WriteHeader(http.StatusOK)

	events, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	status := s.host.Status()
	if err := s.sendSSEEvent(w, Event{
		Type:      EventStatus,
		Text:      status.Text,
		Visible:   status.Visible && s.session.Enabled(),
		Timestamp: time.Now(),
	}); err != nil {
		return nil
	}

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.closing:
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.sendSSEEvent(w, ev); err != nil {
				return nil
			}
		}
	}
}

// sendSSEEvent writes one event in SSE format: event: <type>\ndata: <json>\n\n
func (s *HTTPServer) sendSSEEvent(w *echo.Response, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal SSE event")
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func (s *HTTPServer) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
