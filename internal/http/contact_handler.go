package http

import (
	"context"
	"net/http"

	"github.com/fjod/pixelwick/internal/domain"
	"github.com/fjod/pixelwick/internal/events"
	"github.com/rs/zerolog/hlog"
)

type ContactWriter interface {
	Create(ctx context.Context, c domain.ContactSubmission) error
}

type ContactHandler struct {
	contacts ContactWriter
	env      *env
}

func NewContactHandler(contacts ContactWriter, e *env) *ContactHandler {
	return &ContactHandler{contacts: contacts, env: e}
}

// POST /api/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.ContactRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !req.Complete() {
		respondError(w, r, http.StatusBadRequest, "All fields are required")
		return
	}

	contact := domain.ContactSubmission{
		ID:        h.env.ids.Next(),
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		Timestamp: h.env.timestamp(),
	}

	if err := h.contacts.Create(r.Context(), contact); err != nil {
		hlog.FromRequest(r).Error().Err(err).Int64("contact_id", contact.ID).Msg("failed to save contact")
		respondError(w, r, http.StatusInternalServerError, "Failed to save contact")
		return
	}

	h.env.recorder.ContactSubmitted()
	h.env.publish(r, events.Event{Type: events.TypeContactSubmitted, Key: contact.ID, Payload: contact})

	respondJSON(w, r, http.StatusOK, domain.SuccessResponse{
		Success: true,
		Message: "Contact form submitted successfully",
	})
}
