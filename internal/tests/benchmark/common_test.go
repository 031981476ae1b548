package benchmark

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/yndnr/dew-go/internal/core/domain"
	"github.com/yndnr/dew-go/internal/storage"
	"github.com/yndnr/dew-go/internal/storage/memory"
)

// TodoCounts are the list sizes benchmarks run at.
var TodoCounts = []int{100, 1000, 10000}

// testKey is a 32-byte master key for sealed snapshots.
var testKey = []byte("0123456789abcdef0123456789abcdef")

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTodos builds count todos, every third one completed.
func newTodos(count int) []*domain.Todo {
	todos := make([]*domain.Todo, count)
	for i := range todos {
		t := domain.NewTodo(fmt.Sprintf("todo number %d", i))
		if i%3 == 0 {
			t.Status = domain.StatusCompleted
		}
		todos[i] = t
	}
	return todos
}

func prefillStore(store *memory.Store, count int) []*domain.Todo {
	todos := newTodos(count)
	for _, t := range todos {
		store.Upsert(t)
	}
	return todos
}

// newEngine creates an engine with count todos and no background loop.
func newEngine(b *testing.B, count int) (*storage.Engine, []*domain.Todo) {
	b.Helper()

	cfg := storage.DefaultConfig(filepath.Join(b.TempDir(), "todos.json"))
	cfg.Logger = discard
	engine, err := storage.New(cfg)
	if err != nil {
		b.Fatalf("storage.New: %v", err)
	}
	b.Cleanup(func() { engine.Close() })

	todos := newTodos(count)
	for _, t := range todos {
		if _, err := engine.CreateOrReplace(b.Context(), t); err != nil {
			b.Fatalf("CreateOrReplace: %v", err)
		}
	}
	return engine, todos
}

// reportMemory reports heap usage after a GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
}

// runWithCounts runs benchFn once per entry in counts.
func runWithCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("todos_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
