package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/avelarde/campushub-be/internal/account"
	"github.com/avelarde/campushub-be/internal/auth"
	"github.com/avelarde/campushub-be/internal/models"
	"github.com/avelarde/campushub-be/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserLister is the read side of the directory the listing endpoint needs.
type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

// UserHandler handles the user listing and the permission-gated account
// edit/delete operations.
type UserHandler struct {
	workflow account.WorkflowProvider
	lister   UserLister
	sessions auth.SessionManager
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(workflow account.WorkflowProvider, lister UserLister, sessions auth.SessionManager) *UserHandler {
	return &UserHandler{workflow: workflow, lister: lister, sessions: sessions}
}

func targetID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// List returns all registered users. Password hashes never serialize.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.lister.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		writeMessage(w, http.StatusInternalServerError, "Unable to load users list")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Update edits the target account on behalf of the session user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := targetID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	form, err := decodeForm(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := auth.SessionFromContext(r.Context())
	user, result, err := h.workflow.EditAccount(r.Context(), sess.ID, sess.User, id, form)
	if err != nil {
		log.Warn().Err(err).Int64("target_id", id).Msg("Account update rejected")
		writeAccountError(w, err)
		return
	}
	if !result.Valid() {
		writeValidationErrors(w, result, form)
		return
	}

	h.flash(r, sess.ID, session.FlashSuccess, "Account updated successfully.")
	writeJSON(w, http.StatusOK, user)
}

// Delete removes the target account (admin only, never self).
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := targetID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	sess := auth.SessionFromContext(r.Context())
	if err := h.workflow.DeleteAccount(r.Context(), sess.User, id); err != nil {
		log.Warn().Err(err).Int64("target_id", id).Msg("Account deletion rejected")
		writeAccountError(w, err)
		return
	}

	h.flash(r, sess.ID, session.FlashSuccess, "Account deleted successfully.")
	w.WriteHeader(http.StatusNoContent)
}

// flash records a one-shot message for the next request; the operation has
// already succeeded, so a failure here is only logged.
func (h *UserHandler) flash(r *http.Request, sessionID, kind, text string) {
	if err := h.sessions.SetFlash(r.Context(), sessionID, kind, text); err != nil {
		log.Warn().Err(err).Msg("Failed to set flash message")
	}
}
