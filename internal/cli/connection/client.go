package connection

import (
	"context"
	"net/url"

	"github.com/yndnr/dew-go/internal/core/domain"
	"github.com/yndnr/dew-go/internal/server/httpserver/handler"
)

// Generation is the server's change counter together with the instance
// that issued it. Counters from different instances are not comparable.
type Generation struct {
	Generation uint64 `json:"generation"`
	Instance   string `json:"instance,omitempty"`
}

// Client is the typed Dew API.
type Client struct {
	http *HTTPClient
}

// NewClient wraps an HTTPClient.
func NewClient(c *HTTPClient) *Client {
	return &Client{http: c}
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.http.BaseURL()
}

// ListTodos returns all todos, newest first.
func (c *Client) ListTodos(ctx context.Context) ([]*domain.Todo, error) {
	resp, err := c.http.Get(ctx, "/api/v1/todos")
	if err != nil {
		return nil, err
	}
	var todos []*domain.Todo
	if err := ParseResponse(resp, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// CreateTodo creates or replaces a todo. Zero fields are filled in by the
// server.
func (c *Client) CreateTodo(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	resp, err := c.http.Post(ctx, "/api/v1/todos", todo)
	if err != nil {
		return nil, err
	}
	var created domain.Todo
	if err := ParseResponse(resp, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SetStatus sets the status of a todo.
func (c *Client) SetStatus(ctx context.Context, id string, status domain.Status) (*domain.Todo, error) {
	return c.update(ctx, id, "status", status)
}

// SetTitle sets the title of a todo.
func (c *Client) SetTitle(ctx context.Context, id, title string) (*domain.Todo, error) {
	return c.update(ctx, id, "title", title)
}

func (c *Client) update(ctx context.Context, id, field string, value any) (*domain.Todo, error) {
	resp, err := c.http.Post(ctx, "/api/v1/todos/"+url.PathEscape(id)+"/"+field, value)
	if err != nil {
		return nil, err
	}
	var todo domain.Todo
	if err := ParseResponse(resp, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteCompleted removes completed todos and returns how many went.
func (c *Client) DeleteCompleted(ctx context.Context) (int, error) {
	resp, err := c.http.Delete(ctx, "/api/v1/todos/completed")
	if err != nil {
		return 0, err
	}
	var result handler.DeleteCompletedResponse
	if err := ParseResponse(resp, &result); err != nil {
		return 0, err
	}
	return result.Removed, nil
}

// Generation returns the current generation and server instance.
func (c *Client) Generation(ctx context.Context) (Generation, error) {
	resp, err := c.http.Get(ctx, "/api/v1/generation")
	if err != nil {
		return Generation{}, err
	}
	g := Generation{Instance: resp.Header.Get(handler.HeaderInstance)}
	if err := ParseResponse(resp, &g.Generation); err != nil {
		return Generation{}, err
	}
	return g, nil
}

// Health calls /health, or /ready when ready is set.
func (c *Client) Health(ctx context.Context, ready bool) (*handler.HealthResponse, error) {
	path := "/health"
	if ready {
		path = "/ready"
	}
	resp, err := c.http.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	var result handler.HealthResponse
	if err := ParseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status returns the admin status report.
func (c *Client) Status(ctx context.Context) (*handler.StatusResponse, error) {
	resp, err := c.http.Get(ctx, "/admin/v1/status")
	if err != nil {
		return nil, err
	}
	var result handler.StatusResponse
	if err := ParseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Snapshot asks the server to write a snapshot now.
func (c *Client) Snapshot(ctx context.Context) (*handler.SnapshotResponse, error) {
	resp, err := c.http.Post(ctx, "/admin/v1/snapshot", nil)
	if err != nil {
		return nil, err
	}
	var result handler.SnapshotResponse
	if err := ParseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
