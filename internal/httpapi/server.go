// Package httpapi serves the task list, reordering and live deadline alerts
// over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
	"github.com/twiced-technology-gmbh/lumina/internal/observability"
	"github.com/twiced-technology-gmbh/lumina/internal/store"
)

// Engine is the part of the deadline engine the API drives.
type Engine interface {
	Rearm()
	Running() bool
	Notified(id string) bool
	NotifiedCount() int
}

// Server holds the API dependencies.
type Server struct {
	store    store.Store
	engine   Engine
	hub      *AlertHub
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
	upgrader websocket.Upgrader
}

// New creates a server. metrics may be nil.
func New(s store.Store, engine Engine, hub *AlertHub, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		store:   s,
		engine:  engine,
		hub:     hub,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     sameOrigin,
		},
	}
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/v1/tasks", s.handleListTasks)
	r.Post("/v1/tasks", s.handleCreateTask)
	r.Put("/v1/tasks/order", s.handleReorder)
	r.Get("/v1/tasks/{id}", s.handleGetTask)
	r.Post("/v1/tasks/{id}/toggle", s.handleToggleTask)
	r.Delete("/v1/tasks/{id}", s.handleDeleteTask)
	r.Get("/v1/alerts/ws", s.handleAlertsWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"store_mode":        store.Mode(s.store),
		"scheduler_running": s.engine.Running(),
		"notified":          s.engine.NotifiedCount(),
		"ws_clients":        s.hub.Clients(),
	})
}

// countRequests records each request under its route pattern.
func (s *Server) countRequests(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondStoreError maps structured errors to HTTP statuses.
func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	var ce *clierr.Error
	if !errors.As(err, &ce) {
		s.logger.Error("request failed", "err", err)
		respondError(w, http.StatusInternalServerError, clierr.InternalError, err.Error())
		return
	}
	status := http.StatusBadRequest
	switch ce.Code {
	case clierr.TaskNotFound:
		status = http.StatusNotFound
	case clierr.StoreUnavailable:
		status = http.StatusServiceUnavailable
	case clierr.InternalError:
		status = http.StatusInternalServerError
	}
	respondError(w, status, ce.Code, ce.Message)
}

// sameOrigin admits non-browser clients and browser pages served from this host.
func sameOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
