package command

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/dew-go/internal/core/domain"
	"github.com/yndnr/dew-go/internal/core/service"
	"github.com/yndnr/dew-go/internal/server/httpserver/handler"
	"github.com/yndnr/dew-go/internal/storage"
)

const testInstance = "01JTESTINSTANCE0000000000"

// testServer is a real Dew API over an in-memory engine.
type testServer struct {
	*httptest.Server
	engine *storage.Engine
	todos  *service.TodoService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := storage.DefaultConfig(filepath.Join(t.TempDir(), "todos.json"))
	cfg.Logger = logger
	engine, err := storage.New(cfg)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}

	svc := service.NewTodoService(engine, service.WithLogger(logger))
	h := handler.New(handler.Config{
		Todos:      svc,
		Admin:      engine,
		InstanceID: testInstance,
		Logger:     logger,
	})

	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		engine.Close()
	})
	return &testServer{Server: srv, engine: engine, todos: svc}
}

// seed stores a todo directly, bypassing the CLI.
func (s *testServer) seed(t *testing.T, id, title string, status domain.Status, created time.Time) {
	t.Helper()
	_, err := s.todos.CreateOrReplace(context.Background(), &domain.Todo{
		ID: id, Title: title, Status: status, Created: created,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

// run executes dew-cli against the server and returns stdout.
func (s *testServer) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := runApp(context.Background(), &out, s.URL, args...)
	return out.String(), err
}

func runApp(ctx context.Context, out io.Writer, server string, args ...string) error {
	app := App()
	app.Writer = out
	app.ErrWriter = io.Discard
	return app.RunContext(ctx, append([]string{"dew-cli", "--config", "", "--server", server}, args...))
}

// syncBuffer is a bytes.Buffer safe for a writer and a poller.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
