package handler

import (
	"net/http"
	"strconv"

	"github.com/yndnr/dew-go/internal/core/domain"
)

// handleListTodos handles GET /api/v1/todos.
func (h *Handler) handleListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todos.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if todos == nil {
		todos = []*domain.Todo{}
	}
	h.writeJSON(w, http.StatusOK, todos)
}

// handleCreateTodo handles POST /api/v1/todos.
// An existing todo with the same id is replaced.
func (h *Handler) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var todo domain.Todo
	if !h.decodeBody(w, r, &todo) {
		return
	}

	created, err := h.todos.CreateOrReplace(r.Context(), &todo)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, created)
}

// handleSetStatus handles POST /api/v1/todos/{id}/status.
// The body is a bare JSON string: "Active" or "Completed".
func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var status domain.Status
	if !h.decodeBody(w, r, &status) {
		return
	}

	todo, err := h.todos.SetStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, todo)
}

// handleSetTitle handles POST /api/v1/todos/{id}/title.
// The body is a bare JSON string.
func (h *Handler) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	var title string
	if !h.decodeBody(w, r, &title) {
		return
	}

	todo, err := h.todos.SetTitle(r.Context(), r.PathValue("id"), title)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, todo)
}

// handleDeleteCompleted handles DELETE /api/v1/todos/completed.
func (h *Handler) handleDeleteCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := h.todos.DeleteCompleted(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, DeleteCompletedResponse{Removed: n})
}

// handleGeneration handles GET /api/v1/generation.
func (h *Handler) handleGeneration(w http.ResponseWriter, r *http.Request) {
	gen := h.todos.Generation(r.Context())

	w.Header().Set(HeaderInstance, h.instanceID)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(strconv.FormatUint(gen, 10) + "\n"))
}
