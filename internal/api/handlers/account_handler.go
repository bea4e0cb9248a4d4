package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avelarde/campushub-be/internal/account"
	"github.com/avelarde/campushub-be/internal/auth"
	"github.com/avelarde/campushub-be/internal/validate"
	"github.com/rs/zerolog/log"
)

// AccountHandler handles registration, login, logout and session inspection.
type AccountHandler struct {
	workflow account.WorkflowProvider
	sessions auth.SessionManager
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(workflow account.WorkflowProvider, sessions auth.SessionManager) *AccountHandler {
	return &AccountHandler{workflow: workflow, sessions: sessions}
}

// decodeForm reads a JSON object of string fields, the submission shape every
// account operation accepts.
func decodeForm(r *http.Request) (validate.Form, error) {
	form := validate.Form{}
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		return nil, err
	}
	return form, nil
}

// echoForm returns the submission with credential fields removed, safe to
// send back for re-rendering.
func echoForm(form validate.Form) validate.Form {
	echo := validate.Form{}
	for field, value := range form {
		echo[field] = value
	}
	delete(echo, "password")
	delete(echo, "confirmPassword")
	return echo
}

func writeValidationErrors(w http.ResponseWriter, result validate.Result, form validate.Form) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"errors": result.Errors,
		"form":   echoForm(form),
	})
}

// writeAccountError maps workflow outcomes to HTTP statuses. Infrastructure
// failures log their cause and answer with a generic body.
func writeAccountError(w http.ResponseWriter, err error) {
	var forbidden *account.ForbiddenError
	switch {
	case errors.Is(err, account.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, "You must be logged in to do that.")
	case errors.As(err, &forbidden):
		writeMessage(w, http.StatusForbidden, forbidden.Reason)
	case errors.Is(err, account.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "User not found.")
	case errors.Is(err, account.ErrEmailTaken):
		writeMessage(w, http.StatusConflict, "An account with this email address already exists.")
	case errors.Is(err, account.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
	default:
		log.Error().Err(err).Msg("Account operation failed")
		writeMessage(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}

// Register handles new account registration.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, result, err := h.workflow.Register(r.Context(), form)
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			log.Info().Str("email", form["email"]).Msg("Registration rejected: email already exists")
		}
		writeAccountError(w, err)
		return
	}
	if !result.Valid() {
		writeValidationErrors(w, result, form)
		return
	}

	log.Info().Str("email", user.Email).Int64("user_id", user.ID).Msg("User registered")
	writeJSON(w, http.StatusCreated, user)
}

// Login handles credential verification and session population.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := auth.SessionFromContext(r.Context())
	snapshot, result, err := h.workflow.Login(r.Context(), sess.ID, form)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			log.Warn().Str("email", form["email"]).Msg("Failed login attempt")
		}
		writeAccountError(w, err)
		return
	}
	if !result.Valid() {
		writeValidationErrors(w, result, form)
		return
	}

	log.Info().Int64("user_id", snapshot.ID).Msg("User logged in")
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": snapshot})
}

// Logout destroys the session named by the cookie. It runs outside the
// session middleware: resolving the session is unnecessary here, and the
// cookie must be dropped even when the session store is down.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		h.workflow.Logout(r.Context(), cookie.Value)
	}
	auth.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's snapshot.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if !sess.Authenticated() {
		writeMessage(w, http.StatusUnauthorized, "You must be logged in to do that.")
		return
	}
	writeJSON(w, http.StatusOK, sess.User)
}

// Flash returns and clears the session's pending one-shot message.
func (h *AccountHandler) Flash(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	flash, err := h.sessions.TakeFlash(r.Context(), sess.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to take flash message")
		writeMessage(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}
	if flash == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, flash)
}
