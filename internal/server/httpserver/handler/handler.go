package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/dew-go/internal/core/domain"
	"github.com/yndnr/dew-go/internal/storage"
	"github.com/yndnr/dew-go/internal/storage/snapshot"
	"github.com/yndnr/dew-go/internal/telemetry/logger"
)

// maxBodyBytes bounds request bodies. A todo is at most a few KiB.
const maxBodyBytes = 1 << 20

// HeaderInstance carries the server instance id on generation responses.
// Clients compare it to detect a restart, since the generation starts
// over at zero.
const HeaderInstance = "X-Dew-Instance"

// TodoService is the set of todo operations exposed over HTTP.
type TodoService interface {
	List(ctx context.Context) ([]*domain.Todo, error)
	CreateOrReplace(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	SetStatus(ctx context.Context, id string, status domain.Status) (*domain.Todo, error)
	SetTitle(ctx context.Context, id, title string) (*domain.Todo, error)
	DeleteCompleted(ctx context.Context) (int, error)
	Generation(ctx context.Context) uint64
}

// Admin is the storage control surface used by the admin routes.
type Admin interface {
	TriggerSnapshot(ctx context.Context) (*snapshot.Info, error)
	Stats() storage.Stats
}

// Config holds the handler dependencies.
type Config struct {
	Todos TodoService
	Admin Admin

	// InstanceID identifies this server process.
	InstanceID string

	// Settings is the sanitized configuration shown by /admin/v1/status.
	Settings any

	// Ready reports whether the server can take traffic. Nil means always.
	Ready func() error

	Logger *slog.Logger
}

// Handler routes requests to the todo, admin and health handlers.
type Handler struct {
	todos      TodoService
	admin      Admin
	instanceID string
	settings   any
	ready      func() error
	startedAt  time.Time
	logger     *slog.Logger
	mux        *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}

	h := &Handler{
		todos:      cfg.Todos,
		admin:      cfg.Admin,
		instanceID: cfg.InstanceID,
		settings:   cfg.Settings,
		ready:      cfg.Ready,
		startedAt:  time.Now().UTC(),
		logger:     l,
		mux:        http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Routes lists the route patterns served by the handler.
func (h *Handler) Routes() []string {
	return []string{
		"GET /health",
		"GET /ready",
		"GET /api/v1/todos",
		"POST /api/v1/todos",
		"DELETE /api/v1/todos/completed",
		"POST /api/v1/todos/{id}/status",
		"POST /api/v1/todos/{id}/title",
		"GET /api/v1/generation",
		"POST /admin/v1/snapshot",
		"GET /admin/v1/status",
	}
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /api/v1/todos", h.handleListTodos)
	h.mux.HandleFunc("POST /api/v1/todos", h.handleCreateTodo)
	h.mux.HandleFunc("DELETE /api/v1/todos/completed", h.handleDeleteCompleted)
	h.mux.HandleFunc("POST /api/v1/todos/{id}/status", h.handleSetStatus)
	h.mux.HandleFunc("POST /api/v1/todos/{id}/title", h.handleSetTitle)
	h.mux.HandleFunc("GET /api/v1/generation", h.handleGeneration)

	h.mux.HandleFunc("POST /admin/v1/snapshot", h.handleSnapshot)
	h.mux.HandleFunc("GET /admin/v1/status", h.handleStatus)
}

// writeJSON writes data as a raw JSON body.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response in the standard envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := logger.RequestIDFromContext(r.Context())
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		status := ErrorCodeToHTTPStatus(de.Code)
		if status >= http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "request failed", "code", de.Code, "error", err)
		}
		h.writeError(w, r, status, de.Code, de.Message, nonEmpty(de.Details))
		return
	}

	h.logger.ErrorContext(r.Context(), "internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError,
		domain.ErrInternalServer.Code, domain.ErrInternalServer.Message, nil)
}

// decodeBody decodes a JSON request body into v.
// Malformed JSON is reported as DW-SYS-4000; domain errors raised by
// custom unmarshalers (an unknown status) pass through unchanged.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(v)
	if err == nil {
		return true
	}

	if domain.IsDomainError(err, "") {
		h.handleServiceError(w, r, err)
		return false
	}

	msg := "invalid request body"
	if errors.Is(err, io.EOF) {
		msg = "request body is required"
	}
	h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, msg, err.Error())
	return false
}

// ErrorCodeToHTTPStatus maps error codes to HTTP status codes.
// The last four digits of a code carry its HTTP class.
func ErrorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.Contains(code, "-400"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
