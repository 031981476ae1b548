package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yndnr/dew-go/internal/core/domain"
)

// Mutation operation names used in logs and metrics.
const (
	OpCreate          = "create"
	OpSetStatus       = "set_status"
	OpSetTitle        = "set_title"
	OpDeleteCompleted = "delete_completed"
)

// TodoRepository defines the storage interface for todo operations.
//
// Every successful write advances the generation exactly once.
type TodoRepository interface {
	// List returns all todos, newest first.
	List(ctx context.Context) ([]*domain.Todo, error)

	// CreateOrReplace stores the todo under its ID.
	CreateOrReplace(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)

	// SetStatus sets the status of an existing todo.
	SetStatus(ctx context.Context, id string, status domain.Status) (*domain.Todo, error)

	// SetTitle sets the title of an existing todo.
	SetTitle(ctx context.Context, id, title string) (*domain.Todo, error)

	// DeleteCompleted removes every completed todo and returns the count.
	DeleteCompleted(ctx context.Context) (int, error)

	// Generation returns the current change counter.
	Generation(ctx context.Context) uint64
}

// MutationRecorder receives a notification after every successful mutation.
type MutationRecorder interface {
	RecordMutation(op string)
}

// TodoService handles todo queries and mutations.
type TodoService struct {
	repo    TodoRepository
	logger  *slog.Logger
	metrics MutationRecorder
	now     func() time.Time
}

// Option configures a TodoService.
type Option func(*TodoService)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *TodoService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the mutation recorder.
func WithMetrics(m MutationRecorder) Option {
	return func(s *TodoService) {
		s.metrics = m
	}
}

// NewTodoService creates a new TodoService.
func NewTodoService(repo TodoRepository, opts ...Option) *TodoService {
	s := &TodoService{
		repo:   repo,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all todos, newest first.
func (s *TodoService) List(ctx context.Context) ([]*domain.Todo, error) {
	return s.repo.List(ctx)
}

// CreateOrReplace stores a todo, replacing any todo with the same ID.
//
// An empty ID gets a fresh UUID, a zero Created gets the current time and
// an empty Status defaults to Active.
func (s *TodoService) CreateOrReplace(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, s.reject(ctx, OpCreate, domain.ErrTodoValidation.WithDetails("todo is required"))
	}

	t := todo.Clone()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Created.IsZero() {
		t.Created = s.now()
	}
	if t.Status == "" {
		t.Status = domain.StatusActive
	}
	if err := t.Validate(); err != nil {
		return nil, s.reject(ctx, OpCreate, err)
	}

	stored, err := s.repo.CreateOrReplace(ctx, t)
	if err != nil {
		return nil, s.reject(ctx, OpCreate, err)
	}

	s.logger.InfoContext(ctx, "created todo",
		"id", stored.ID,
		"title", stored.Title,
		"status", stored.Status)
	s.record(OpCreate)

	return stored, nil
}

// SetStatus sets the status of an existing todo.
// Returns domain.ErrTodoNotFound if the ID is unknown.
func (s *TodoService) SetStatus(ctx context.Context, id string, status domain.Status) (*domain.Todo, error) {
	if err := validateID(id); err != nil {
		return nil, s.reject(ctx, OpSetStatus, err)
	}
	if !status.Valid() {
		return nil, s.reject(ctx, OpSetStatus, domain.ErrInvalidStatus.WithDetails("unknown status "+`"`+string(status)+`"`))
	}

	todo, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		return nil, s.reject(ctx, OpSetStatus, err)
	}

	s.logger.InfoContext(ctx, "updated todo status",
		"id", todo.ID,
		"status", todo.Status)
	s.record(OpSetStatus)

	return todo, nil
}

// SetTitle sets the title of an existing todo.
// Returns domain.ErrTodoNotFound if the ID is unknown.
func (s *TodoService) SetTitle(ctx context.Context, id, title string) (*domain.Todo, error) {
	if err := validateID(id); err != nil {
		return nil, s.reject(ctx, OpSetTitle, err)
	}
	if len(title) > domain.MaxTitleLength {
		return nil, s.reject(ctx, OpSetTitle, domain.ErrTodoValidation.WithDetails("title too long"))
	}

	todo, err := s.repo.SetTitle(ctx, id, title)
	if err != nil {
		return nil, s.reject(ctx, OpSetTitle, err)
	}

	s.logger.InfoContext(ctx, "updated todo title",
		"id", todo.ID,
		"title", todo.Title)
	s.record(OpSetTitle)

	return todo, nil
}

// DeleteCompleted removes every completed todo and returns how many were removed.
func (s *TodoService) DeleteCompleted(ctx context.Context) (int, error) {
	removed, err := s.repo.DeleteCompleted(ctx)
	if err != nil {
		return 0, s.reject(ctx, OpDeleteCompleted, err)
	}

	s.logger.InfoContext(ctx, "deleted completed todos", "removed", removed)
	s.record(OpDeleteCompleted)

	return removed, nil
}

// Generation returns the current change counter.
func (s *TodoService) Generation(ctx context.Context) uint64 {
	return s.repo.Generation(ctx)
}

// reject logs a failed mutation and returns err unchanged.
// Errors without a domain code are logged as "internal".
func (s *TodoService) reject(ctx context.Context, op string, err error) error {
	code := domain.GetErrorCode(err)
	if code == "" {
		code = "internal"
	}
	s.logger.DebugContext(ctx, "todo mutation rejected", "op", op, "code", code, "error", err)
	return err
}

func (s *TodoService) record(op string) {
	if s.metrics != nil {
		s.metrics.RecordMutation(op)
	}
}

func validateID(id string) error {
	if id == "" {
		return domain.ErrTodoValidation.WithDetails("id is required")
	}
	if len(id) > domain.MaxIDLength {
		return domain.ErrTodoValidation.WithDetails("id too long")
	}
	return nil
}
