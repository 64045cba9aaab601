package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/DemisRincon/skill-up/internal/mailer"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
)

type InviteHandler struct {
	dispatcher *mailer.Dispatcher
	logger     *logger.Logger
}

func NewInviteHandler(dispatcher *mailer.Dispatcher, logger *logger.Logger) *InviteHandler {
	return &InviteHandler{
		dispatcher: dispatcher,
		logger:     logger.Component("handler/invite"),
	}
}

type sendInvitesRequest struct {
	Invites json.RawMessage `json:"invites"`
}

// SendInvites re-delivers invitation emails for an existing batch. The
// endpoint tolerates partial failure: every invite gets a per-recipient
// status instead of the whole request failing.
func (h *InviteHandler) SendInvites(w http.ResponseWriter, r *http.Request) {
	// only unreadable JSON is a processing failure; every shape problem
	// below is the caller's
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.logger.Error("failed to parse send-invites request", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to process request",
			"details": err.Error(),
		})
		return
	}

	// the body must be an object carrying a JSON array under invites
	var req sendInvitesRequest
	trimmed := []byte(nil)
	if json.Unmarshal(raw, &req) == nil {
		trimmed = bytes.TrimSpace(req.Invites)
	}
	var elements []json.RawMessage
	if len(trimmed) == 0 || trimmed[0] != '[' || json.Unmarshal(trimmed, &elements) != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Invalid invites data",
		})
		return
	}

	// a malformed element is not fatal to the batch: its fields stay empty
	// and it comes back as a per-recipient error entry
	invites := make([]mailer.Invite, len(elements))
	for i, element := range elements {
		_ = json.Unmarshal(element, &invites[i])
	}

	results := h.dispatcher.Dispatch(r.Context(), invites)

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
