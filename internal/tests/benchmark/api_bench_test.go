package benchmark

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/dew-go/internal/core/domain"
	"github.com/yndnr/dew-go/internal/core/service"
	"github.com/yndnr/dew-go/internal/server/httpserver/handler"
)

func BenchmarkServiceSetStatus(b *testing.B) {
	engine, todos := newEngine(b, 1000)
	svc := service.NewTodoService(engine, service.WithLogger(discard))
	ctx := b.Context()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		status := domain.StatusActive
		if i%2 == 0 {
			status = domain.StatusCompleted
		}
		if _, err := svc.SetStatus(ctx, todos[i%len(todos)].ID, status); err != nil {
			b.Fatalf("SetStatus: %v", err)
		}
	}
}

func newAPI(b *testing.B, count int) (http.Handler, []*domain.Todo) {
	b.Helper()
	engine, todos := newEngine(b, count)
	return handler.New(handler.Config{
		Todos:      service.NewTodoService(engine, service.WithLogger(discard)),
		Admin:      engine,
		InstanceID: "bench",
		Logger:     discard,
	}), todos
}

func BenchmarkHTTPListTodos(b *testing.B) {
	runWithCounts(b, TodoCounts, func(b *testing.B, count int) {
		api, _ := newAPI(b, count)

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			rec := httptest.NewRecorder()
			api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/todos", nil))
			if rec.Code != http.StatusOK {
				b.Fatalf("status = %d", rec.Code)
			}
		}
	})
}

func BenchmarkHTTPSetStatus(b *testing.B) {
	api, todos := newAPI(b, 1000)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		body := `"Completed"`
		if i%2 == 0 {
			body = `"Active"`
		}
		path := "/api/v1/todos/" + todos[i%len(todos)].ID + "/status"
		rec := httptest.NewRecorder()
		api.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
		if rec.Code != http.StatusOK {
			b.Fatalf("status = %d: %s", rec.Code, rec.Body)
		}
	}
}

func BenchmarkHTTPGeneration(b *testing.B) {
	api, _ := newAPI(b, 100)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rec := httptest.NewRecorder()
			api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/generation", nil))
			if rec.Code != http.StatusOK {
				b.Fatalf("status = %d", rec.Code)
			}
		}
	})
}
