package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/dew-go/internal/infra/buildinfo"
)

// handleSnapshot handles POST /admin/v1/snapshot.
// The write runs synchronously; the response reports what was stored.
func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	info, err := h.admin.TriggerSnapshot(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "snapshot written on request",
		"path", info.Path,
		"count", info.Count)

	h.writeJSON(w, http.StatusOK, SnapshotResponse{
		Path:    info.Path,
		Count:   info.Count,
		Size:    info.Size,
		Sealed:  info.Sealed,
		SavedAt: info.SavedAt,
	})
}

// handleStatus handles GET /admin/v1/status.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, StatusResponse{
		Status:     "running",
		InstanceID: h.instanceID,
		StartedAt:  h.startedAt,
		Uptime:     time.Since(h.startedAt).Truncate(time.Second).String(),
		Build:      buildinfo.Get(),
		Storage:    h.admin.Stats(),
		Config:     h.settings,
	})
}
