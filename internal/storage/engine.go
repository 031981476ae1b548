package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yndnr/dew-go/internal/core/domain"
	"github.com/yndnr/dew-go/internal/storage/generation"
	"github.com/yndnr/dew-go/internal/storage/memory"
	"github.com/yndnr/dew-go/internal/storage/snapshot"
)

// Default configuration values.
const (
	DefaultSnapshotInterval = 5 * time.Minute
	MinSnapshotInterval     = time.Second

	snapshotTimeout = 30 * time.Second
)

// Config configures the storage engine.
type Config struct {
	// Snapshot configuration
	Snapshot snapshot.Config

	// SnapshotInterval is the interval between automatic snapshots.
	SnapshotInterval time.Duration

	// Logger is the structured logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default storage configuration.
func DefaultConfig(snapshotPath string) Config {
	return Config{
		Snapshot:         snapshot.Config{Path: snapshotPath},
		SnapshotInterval: DefaultSnapshotInterval,
		Logger:           slog.Default(),
	}
}

// Stats is a point-in-time view of the engine.
type Stats struct {
	Todos            int       `json:"todos"`
	Generation       uint64    `json:"generation"`
	SnapshotPath     string    `json:"snapshot_path"`
	SnapshotInterval string    `json:"snapshot_interval"`
	Encrypted        bool      `json:"encrypted"`
	LastSnapshotAt   time.Time `json:"last_snapshot_at,omitempty"`
	LastSnapshotErr  string    `json:"last_snapshot_error,omitempty"`
	SnapshotWrites   uint64    `json:"snapshot_writes"`
	SnapshotFailures uint64    `json:"snapshot_failures"`
}

// Engine owns the todo store, the generation counter and the snapshot
// manager. It is created once at startup and passed explicitly to every
// component that needs it.
type Engine struct {
	cfg Config

	// Components
	store    *memory.Store
	gen      *generation.Counter
	snapshot *snapshot.Manager

	// Logger
	logger *slog.Logger

	// snapMu serializes snapshot writes so an older copy never
	// replaces a newer one.
	snapMu sync.Mutex

	// mu guards lifecycle and snapshot statistics.
	mu               sync.Mutex
	started          bool
	closed           bool
	lastSnapshotAt   time.Time
	lastSnapshotErr  error
	snapshotWrites   uint64
	snapshotFailures uint64

	// Shutdown
	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a new storage engine.
//
// This initializes all components but does NOT perform recovery or start
// the snapshot loop. Call Recover() and then Start().
func New(cfg Config) (*Engine, error) {
	if cfg.Snapshot.Path == "" {
		return nil, errors.New("storage: snapshot path is required")
	}
	if cfg.SnapshotInterval == 0 {
		cfg.SnapshotInterval = DefaultSnapshotInterval
	}
	if cfg.SnapshotInterval < MinSnapshotInterval {
		return nil, fmt.Errorf("storage: snapshot interval %s below minimum %s", cfg.SnapshotInterval, MinSnapshotInterval)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	snapMgr, err := snapshot.NewManager(cfg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("storage: create snapshot manager: %w", err)
	}

	return &Engine{
		cfg:      cfg,
		store:    memory.New(),
		gen:      generation.New(),
		snapshot: snapMgr,
		logger:   cfg.Logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Recover loads the snapshot file into the store.
//
// A missing file leaves the store empty. A corrupt file or an I/O error is
// returned and must abort startup.
func (e *Engine) Recover(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	startTime := time.Now()
	e.logger.Info("storage recovery started", "path", e.snapshot.Path())

	todos, info, err := e.snapshot.Load()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if !info.Found {
		e.logger.Info("no snapshot found, starting with empty store")
		return nil
	}

	e.store.LoadFromSnapshot(todos)
	e.logger.Info("snapshot loaded",
		"path", info.Path,
		"todo_count", info.Count,
		"saved_at", info.SavedAt,
		"sealed", info.Sealed,
		"elapsed", time.Since(startTime))

	return nil
}

// Start launches the background snapshot loop.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started || e.closed {
		return
	}
	e.started = true
	go e.backgroundLoop()
}

// List returns all todos, newest first.
func (e *Engine) List(ctx context.Context) ([]*domain.Todo, error) {
	return e.store.List(), nil
}

// CreateOrReplace stores the todo under its ID and advances the generation.
func (e *Engine) CreateOrReplace(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	stored := e.store.Upsert(todo)
	e.gen.Advance()
	return stored, nil
}

// SetStatus sets the status of an existing todo.
// The generation only advances when the todo exists.
func (e *Engine) SetStatus(ctx context.Context, id string, status domain.Status) (*domain.Todo, error) {
	todo, err := e.store.UpdateStatus(id, status)
	if err != nil {
		return nil, err
	}
	e.gen.Advance()
	return todo, nil
}

// SetTitle sets the title of an existing todo.
// The generation only advances when the todo exists.
func (e *Engine) SetTitle(ctx context.Context, id, title string) (*domain.Todo, error) {
	todo, err := e.store.UpdateTitle(id, title)
	if err != nil {
		return nil, err
	}
	e.gen.Advance()
	return todo, nil
}

// DeleteCompleted removes every completed todo and advances the generation
// once, even when nothing was removed.
func (e *Engine) DeleteCompleted(ctx context.Context) (int, error) {
	removed := e.store.DeleteWhere(func(s domain.Status) bool {
		return s == domain.StatusCompleted
	})
	e.gen.Advance()
	return removed, nil
}

// Generation returns the current generation.
func (e *Engine) Generation(ctx context.Context) uint64 {
	return e.gen.Current()
}

// Count returns the number of todos in storage.
func (e *Engine) Count() int {
	return e.store.Count()
}

// TriggerSnapshot writes a snapshot of the current store.
//
// This is called by the admin API, the background loop and Close.
func (e *Engine) TriggerSnapshot(ctx context.Context) (*snapshot.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.snapMu.Lock()
	defer e.snapMu.Unlock()

	todos := e.store.All()
	info, err := e.snapshot.Save(todos)

	e.mu.Lock()
	if err != nil {
		e.snapshotFailures++
		e.lastSnapshotErr = err
	} else {
		e.snapshotWrites++
		e.lastSnapshotErr = nil
		e.lastSnapshotAt = info.SavedAt
	}
	e.mu.Unlock()

	if err != nil {
		return nil, err
	}

	e.logger.Debug("snapshot written",
		"path", info.Path,
		"todo_count", info.Count,
		"size_bytes", info.Size)

	return info, nil
}

// backgroundLoop runs periodic snapshot creation.
// It writes on every tick whether or not anything changed.
func (e *Engine) backgroundLoop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.cfg.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
			if _, err := e.TriggerSnapshot(ctx); err != nil {
				e.logger.Error("auto snapshot failed", "error", err)
			}
			cancel()

		case <-e.stopCh:
			return
		}
	}
}

// Close stops the snapshot loop and writes a final snapshot.
// Calling Close more than once is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	started := e.started
	e.mu.Unlock()

	e.logger.Info("shutting down storage engine")

	close(e.stopCh)
	if started {
		<-e.doneCh
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	info, err := e.TriggerSnapshot(ctx)
	if err != nil {
		e.logger.Error("final snapshot failed", "error", err)
		return err
	}

	e.logger.Info("storage engine shutdown complete",
		"todo_count", info.Count,
		"generation", e.gen.Current())
	return nil
}

// Stats returns current engine statistics.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Stats{
		Todos:            e.store.Count(),
		Generation:       e.gen.Current(),
		SnapshotPath:     e.snapshot.Path(),
		SnapshotInterval: e.cfg.SnapshotInterval.String(),
		Encrypted:        e.snapshot.Encrypted(),
		LastSnapshotAt:   e.lastSnapshotAt,
		SnapshotWrites:   e.snapshotWrites,
		SnapshotFailures: e.snapshotFailures,
	}
	if e.lastSnapshotErr != nil {
		s.LastSnapshotErr = e.lastSnapshotErr.Error()
	}
	return s
}
