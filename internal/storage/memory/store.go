package memory

import (
	"sort"
	"sync"

	"github.com/yndnr/dew-go/internal/core/domain"
)

// Store provides in-memory todo storage.
type Store struct {
	mu    sync.Mutex
	todos map[string]*domain.Todo
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		todos: make(map[string]*domain.Todo),
	}
}

// List returns all todos, most recently created first.
// Ties on Created are broken by ID so the order is deterministic.
func (s *Store) List() []*domain.Todo {
	s.mu.Lock()
	result := make([]*domain.Todo, 0, len(s.todos))
	for _, todo := range s.todos {
		result = append(result, todo.Clone())
	}
	s.mu.Unlock()

	sortNewestFirst(result)
	return result
}

// Upsert inserts the todo or fully replaces the one with the same ID.
// It is also the creation path and always succeeds.
func (s *Store) Upsert(todo *domain.Todo) *domain.Todo {
	clone := todo.Clone()

	s.mu.Lock()
	s.todos[clone.ID] = clone
	s.mu.Unlock()

	return clone.Clone()
}

// UpdateStatus overwrites the status of an existing todo.
func (s *Store) UpdateStatus(id string, status domain.Status) (*domain.Todo, error) {
	return s.update(id, func(t *domain.Todo) {
		t.Status = status
	})
}

// UpdateTitle overwrites the title of an existing todo.
func (s *Store) UpdateTitle(id, title string) (*domain.Todo, error) {
	return s.update(id, func(t *domain.Todo) {
		t.Title = title
	})
}

func (s *Store) update(id string, apply func(*domain.Todo)) (*domain.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.todos[id]
	if !ok {
		return nil, domain.ErrTodoNotFound.WithDetails(id)
	}

	apply(todo)
	return todo.Clone(), nil
}

// DeleteWhere removes every todo whose status matches pred.
// Returns the number of todos removed.
func (s *Store) DeleteWhere(pred func(domain.Status) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, todo := range s.todos {
		if pred(todo.Status) {
			delete(s.todos, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of todos.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.todos)
}

// All returns a copy of the full contents keyed by ID.
// Used for snapshot creation.
func (s *Store) All() map[string]*domain.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*domain.Todo, len(s.todos))
	for id, todo := range s.todos {
		out[id] = todo.Clone()
	}
	return out
}

// LoadFromSnapshot replaces the store contents with the given todos.
func (s *Store) LoadFromSnapshot(todos map[string]*domain.Todo) {
	fresh := make(map[string]*domain.Todo, len(todos))
	for id, todo := range todos {
		fresh[id] = todo.Clone()
	}

	s.mu.Lock()
	s.todos = fresh
	s.mu.Unlock()
}

func sortNewestFirst(todos []*domain.Todo) {
	sort.Slice(todos, func(i, j int) bool {
		a, b := todos[i], todos[j]
		if !a.Created.Equal(b.Created) {
			return a.Created.After(b.Created)
		}
		return a.ID < b.ID
	})
}
