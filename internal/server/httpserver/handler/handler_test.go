package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/dew-go/internal/core/domain"
	"github.com/yndnr/dew-go/internal/core/service"
	"github.com/yndnr/dew-go/internal/storage"
	"github.com/yndnr/dew-go/internal/storage/snapshot"
)

const testInstance = "01JTESTINSTANCE0000000000"

type testEnv struct {
	engine  *storage.Engine
	handler *Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := storage.DefaultConfig(filepath.Join(t.TempDir(), "todos.json"))
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := storage.New(cfg)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { engine.Close() })

	svc := service.NewTodoService(engine, service.WithLogger(cfg.Logger))
	h := New(Config{
		Todos:      svc,
		Admin:      engine,
		InstanceID: testInstance,
		Settings:   map[string]string{"addr": "127.0.0.1:7890"},
		Logger:     cfg.Logger,
	})
	return &testEnv{engine: engine, handler: h}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func (e *testEnv) generation(t *testing.T) uint64 {
	t.Helper()
	rec := e.do(t, http.MethodGet, "/api/v1/generation", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("generation status = %d", rec.Code)
	}
	g, err := strconv.ParseUint(strings.TrimSpace(rec.Body.String()), 10, 64)
	if err != nil {
		t.Fatalf("generation body %q: %v", rec.Body.String(), err)
	}
	return g
}

func TestHandler_CreateAndList(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/todos",
		`{"id":"a","title":"buy milk","status":"Active","created":"2024-01-01T00:00:00Z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	created := decode[domain.Todo](t, rec)
	if created.ID != "a" || created.Title != "buy milk" {
		t.Errorf("created = %+v", created)
	}

	env.do(t, http.MethodPost, "/api/v1/todos",
		`{"id":"b","title":"walk dog","status":"Active","created":"2024-01-02T00:00:00Z"}`)

	rec = env.do(t, http.MethodGet, "/api/v1/todos", "")
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	todos := decode[[]domain.Todo](t, rec)
	if len(todos) != 2 || todos[0].ID != "b" || todos[1].ID != "a" {
		t.Errorf("list = %+v, want [b a]", todos)
	}

	if g := env.generation(t); g != 2 {
		t.Errorf("generation = %d, want 2", g)
	}
}

func TestHandler_ListEmptyIsArray(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/todos", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestHandler_CreateFillsDefaults(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/todos", `{"title":"no id"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	todo := decode[domain.Todo](t, rec)
	if todo.ID == "" || todo.Created.IsZero() || todo.Status != domain.StatusActive {
		t.Errorf("defaults not applied: %+v", todo)
	}
}

func TestHandler_SetStatusAndTitle(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/todos", `{"id":"a","title":"buy milk"}`)

	rec := env.do(t, http.MethodPost, "/api/v1/todos/a/status", `"Completed"`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if got := decode[domain.Todo](t, rec); got.Status != domain.StatusCompleted {
		t.Errorf("status = %q, want Completed", got.Status)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/todos/a/title", `"buy oat milk"`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if got := decode[domain.Todo](t, rec); got.Title != "buy oat milk" {
		t.Errorf("title = %q", got.Title)
	}

	if g := env.generation(t); g != 3 {
		t.Errorf("generation = %d, want 3", g)
	}
}

func TestHandler_DeleteCompleted(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/todos", `{"id":"a","title":"x","status":"Completed"}`)
	env.do(t, http.MethodPost, "/api/v1/todos", `{"id":"b","title":"y"}`)

	rec := env.do(t, http.MethodDelete, "/api/v1/todos/completed", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[DeleteCompletedResponse](t, rec); got.Removed != 1 {
		t.Errorf("removed = %d, want 1", got.Removed)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/todos/completed", "")
	if got := decode[DeleteCompletedResponse](t, rec); got.Removed != 0 {
		t.Errorf("removed = %d, want 0", got.Removed)
	}

	// create, create, clear, clear
	if g := env.generation(t); g != 4 {
		t.Errorf("generation = %d, want 4", g)
	}
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"status missing id", http.MethodPost, "/api/v1/todos/nope/status", `"Completed"`, http.StatusNotFound, "DW-TODO-4040"},
		{"title missing id", http.MethodPost, "/api/v1/todos/nope/title", `"x"`, http.StatusNotFound, "DW-TODO-4040"},
		{"unknown status", http.MethodPost, "/api/v1/todos/a/status", `"Done"`, http.StatusBadRequest, "DW-TODO-4002"},
		{"status not string", http.MethodPost, "/api/v1/todos/a/status", `42`, http.StatusBadRequest, "DW-TODO-4002"},
		{"bad json", http.MethodPost, "/api/v1/todos", `{"id":`, http.StatusBadRequest, "DW-SYS-4000"},
		{"empty body", http.MethodPost, "/api/v1/todos", ``, http.StatusBadRequest, "DW-SYS-4000"},
		{"title not string", http.MethodPost, "/api/v1/todos/a/title", `{"t":1}`, http.StatusBadRequest, "DW-SYS-4000"},
		{"title too long", http.MethodPost, "/api/v1/todos/a/title", `"` + strings.Repeat("x", domain.MaxTitleLength+1) + `"`, http.StatusBadRequest, "DW-TODO-4001"},
		{"todo bad status", http.MethodPost, "/api/v1/todos", `{"id":"z","status":"Maybe"}`, http.StatusBadRequest, "DW-TODO-4002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.do(t, http.MethodPost, "/api/v1/todos", `{"id":"a","title":"buy milk"}`)
			before := env.generation(t)

			rec := env.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantCode, rec.Body)
			}
			if got := rec.Header().Get("X-Error-Code"); got != tt.wantErr {
				t.Errorf("X-Error-Code = %q, want %q", got, tt.wantErr)
			}
			resp := decode[Response](t, rec)
			if resp.Code != tt.wantErr || resp.Message == "" || resp.Timestamp == 0 {
				t.Errorf("envelope = %+v", resp)
			}

			if after := env.generation(t); after != before {
				t.Errorf("generation moved from %d to %d on a failed request", before, after)
			}
		})
	}
}

func TestHandler_GenerationHeaders(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/generation", "")
	if got := rec.Header().Get(HeaderInstance); got != testInstance {
		t.Errorf("%s = %q, want %q", HeaderInstance, got, testInstance)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
	var g uint64
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil || g != 0 {
		t.Errorf("body = %q, want bare 0", rec.Body.String())
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/todos", `{}`)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandler_Health(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/ready"} {
		rec := env.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
		if got := decode[HealthResponse](t, rec); got.Status != "ok" {
			t.Errorf("%s status field = %q", path, got.Status)
		}
	}
}

func TestHandler_ReadyFails(t *testing.T) {
	h := New(Config{Ready: func() error { return errors.New("recovering") }})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandler_AdminSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/todos", `{"id":"a","title":"buy milk"}`)

	rec := env.do(t, http.MethodPost, "/admin/v1/snapshot", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	resp := decode[SnapshotResponse](t, rec)
	if resp.Count != 1 || resp.Size == 0 || resp.SavedAt.IsZero() {
		t.Errorf("snapshot = %+v", resp)
	}
	if resp.Sealed {
		t.Error("snapshot should not be sealed without a key")
	}
}

// failingAdmin fails every snapshot write.
type failingAdmin struct{}

func (failingAdmin) TriggerSnapshot(context.Context) (*snapshot.Info, error) {
	return nil, domain.ErrPersistenceFailure.WithCause(errors.New("disk full"))
}

func (failingAdmin) Stats() storage.Stats { return storage.Stats{} }

func TestHandler_AdminSnapshotFailure(t *testing.T) {
	h := New(Config{Admin: failingAdmin{}, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/v1/snapshot", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "DW-SNAP-5002" {
		t.Errorf("X-Error-Code = %q, want DW-SNAP-5002", got)
	}
	if strings.Contains(rec.Body.String(), "disk full") {
		t.Error("the underlying cause should not leak into the response")
	}
}

func TestHandler_AdminStatus(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/todos", `{"id":"a","title":"buy milk"}`)

	rec := env.do(t, http.MethodGet, "/admin/v1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Status     string        `json:"status"`
		InstanceID string        `json:"instance_id"`
		StartedAt  time.Time     `json:"started_at"`
		Storage    storage.Stats `json:"storage"`
		Build      struct {
			Version string `json:"version"`
		} `json:"build"`
		Config map[string]string `json:"config"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "running" || resp.InstanceID != testInstance {
		t.Errorf("status = %+v", resp)
	}
	if resp.Storage.Todos != 1 || resp.Storage.Generation != 1 {
		t.Errorf("storage = %+v", resp.Storage)
	}
	if resp.Build.Version == "" {
		t.Error("build version should be reported")
	}
	if resp.Config["addr"] != "127.0.0.1:7890" {
		t.Errorf("config = %v", resp.Config)
	}
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"DW-TODO-4040", http.StatusNotFound},
		{"DW-TODO-4001", http.StatusBadRequest},
		{"DW-TODO-4002", http.StatusBadRequest},
		{"DW-SYS-4000", http.StatusBadRequest},
		{"DW-SYS-4290", http.StatusTooManyRequests},
		{"DW-SNAP-5001", http.StatusInternalServerError},
		{"DW-SNAP-5002", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := ErrorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestHandler_Routes(t *testing.T) {
	env := newTestEnv(t)
	if len(env.handler.Routes()) != 10 {
		t.Errorf("Routes() = %v", env.handler.Routes())
	}
}
