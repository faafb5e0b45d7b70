package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"ticket-selling/internal/sse"
	"ticket-selling/internal/utils"
)

// StreamEvents sends committed lifecycle events as Server-Sent Events. An
// optional ticket_id query parameter narrows the stream to one ticket.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	ticketID := sse.AllTickets
	if raw := r.URL.Query().Get("ticket_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("ticket_id must be a positive integer", kindInvalidRequest))
			return
		}
		ticketID = id
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Streaming unsupported", kindInternal))
		return
	}

	setupSSEHeaders(w)

	ctx := r.Context()
	events := h.Events.Subscribe(ctx, ticketID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"ticket_id\":%d}\n\n", ticketID)
	flusher.Flush()
	h.Logger.Info("SSE", fmt.Sprintf("Client connected to lifecycle events for ticket %d", ticketID))

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize lifecycle event: %v", err))
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.EventID, event.Type, data)
			flusher.Flush()
		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from lifecycle events for ticket %d", ticketID))
			return
		}
	}
}

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
