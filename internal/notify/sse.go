// internal/notify/sse.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bookhaven/internal/auth"
	"bookhaven/internal/httpx"
	"bookhaven/pkg/logger"
)

const heartbeatInterval = 25 * time.Second

// RefreshFunc re-pushes the caller's active announcements through the hub.
type RefreshFunc func(ctx context.Context, userID uuid.UUID) error

// Handler serves the event stream over SSE.
type Handler struct {
	hub     *Hub
	refresh RefreshFunc
	log     *logger.Logger
}

func NewHandler(hub *Hub, refresh RefreshFunc, log *logger.Logger) *Handler {
	return &Handler{hub: hub, refresh: refresh, log: log.With("handler", "notify")}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/events", h.handleStream)
	r.Post("/events/refresh", h.handleRefresh)
}

// handleStream opens a server-sent-events stream. Every connection joins
// the broadcast group plus its own user group, so both announcement
// fan-out and per-user order events reach it.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpx.RespondError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := h.hub.NewClient(userID)
	h.hub.Join(client, GroupAll)
	h.hub.Join(client, UserGroup(userID))
	defer h.hub.RemoveClient(client)

	h.log.Info("event stream opened", "user_id", userID, "client_id", client.ID)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Info("event stream closed", "user_id", userID, "client_id", client.ID)
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case event := <-client.Outbound:
			data, err := json.Marshal(event.Data)
			if err != nil {
				h.log.Error("failed to marshal event", "error", err, "type", event.Type)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}

// handleRefresh re-delivers the caller's active announcements over their
// open streams. Clients call this after a reconnect or on a poll timer.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	if err := h.refresh(r.Context(), userID); err != nil {
		h.log.Error("failed to refresh announcements", "error", err, "user_id", userID)
		httpx.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to refresh announcements")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
