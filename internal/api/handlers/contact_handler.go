package handlers

import (
	"net/http"
	"strings"

	"github.com/avelarde/campushub-be/internal/services"
	"github.com/avelarde/campushub-be/internal/validate"
	"github.com/rs/zerolog/log"
)

// ContactHandler handles contact form submissions.
type ContactHandler struct {
	service services.ContactServiceProvider
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service services.ContactServiceProvider) *ContactHandler {
	return &ContactHandler{service: service}
}

// Submit validates and stores a contact form submission.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := validate.Run(form, validate.ContactRules())
	if !result.Valid() {
		writeValidationErrors(w, result, form)
		return
	}

	msg, err := h.service.SaveMessage(r.Context(), strings.TrimSpace(form["subject"]), strings.TrimSpace(form["message"]))
	if err != nil {
		log.Error().Err(err).Msg("Failed to save contact message")
		writeMessage(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// List returns all stored contact messages, newest first.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.ListMessages(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list contact messages")
		writeMessage(w, http.StatusInternalServerError, "Unable to load contact messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
