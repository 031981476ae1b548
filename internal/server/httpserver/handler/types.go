package handler

import (
	"time"

	"github.com/yndnr/dew-go/internal/infra/buildinfo"
	"github.com/yndnr/dew-go/internal/storage"
)

// Response is the error envelope.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Details   any    `json:"details,omitempty"`
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// DeleteCompletedResponse is the response body for DELETE /api/v1/todos/completed.
type DeleteCompletedResponse struct {
	Removed int `json:"removed"`
}

// HealthResponse is the response body for /health and /ready.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// SnapshotResponse is the response body for POST /admin/v1/snapshot.
type SnapshotResponse struct {
	Path    string    `json:"path"`
	Count   int       `json:"count"`
	Size    int64     `json:"size"`
	Sealed  bool      `json:"sealed"`
	SavedAt time.Time `json:"saved_at"`
}

// StatusResponse is the response body for GET /admin/v1/status.
type StatusResponse struct {
	Status     string         `json:"status"`
	InstanceID string         `json:"instance_id"`
	StartedAt  time.Time      `json:"started_at"`
	Uptime     string         `json:"uptime"`
	Build      buildinfo.Info `json:"build"`
	Storage    storage.Stats  `json:"storage"`
	Config     any            `json:"config,omitempty"`
}
