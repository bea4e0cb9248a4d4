// Package account orchestrates the five account operations: register, login,
// logout, edit and delete. Each operation returns exactly one outcome: a
// value on success, a validation result, or one of the errors in errors.go.
// Infrastructure faults are never folded into domain outcomes.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avelarde/campushub-be/internal/authz"
	"github.com/avelarde/campushub-be/internal/directory"
	"github.com/avelarde/campushub-be/internal/models"
	"github.com/avelarde/campushub-be/internal/password"
	"github.com/avelarde/campushub-be/internal/validate"
	"github.com/rs/zerolog/log"
)

// Directory is the user persistence the workflow depends on. Lookups return
// directory.ErrNotFound for absence and a distinct error for store faults.
type Directory interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, name, email, passwordHash string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	Update(ctx context.Context, id int64, name, email string) (models.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// SessionWriter is the slice of the session manager the workflow mutates.
type SessionWriter interface {
	SetUser(ctx context.Context, id string, snapshot models.UserSnapshot) error
	Destroy(ctx context.Context, id string) error
}

// WorkflowProvider defines the account operations consumed by the HTTP layer.
type WorkflowProvider interface {
	Register(ctx context.Context, form validate.Form) (models.User, validate.Result, error)
	Login(ctx context.Context, sessionID string, form validate.Form) (models.UserSnapshot, validate.Result, error)
	Logout(ctx context.Context, sessionID string)
	EditAccount(ctx context.Context, sessionID string, actor *models.UserSnapshot, targetID int64, form validate.Form) (models.User, validate.Result, error)
	DeleteAccount(ctx context.Context, actor *models.UserSnapshot, targetID int64) error
}

// Workflow wires the directory, session store and hasher into the account
// operations. It holds no mutable state of its own; every method is safe for
// concurrent use.
type Workflow struct {
	directory Directory
	sessions  SessionWriter
	hasher    password.Hasher
}

// NewWorkflow creates an account workflow.
func NewWorkflow(dir Directory, sessions SessionWriter, hasher password.Hasher) *Workflow {
	return &Workflow{directory: dir, sessions: sessions, hasher: hasher}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func emptyResult() validate.Result {
	return validate.Result{Errors: []validate.FieldError{}}
}

// Register creates a new member account from a registration submission.
// An invalid submission returns the validation result with a nil error; the
// caller re-renders with the echoed fields (minus credentials). The store's
// uniqueness constraint is the authoritative guard: a duplicate insert that
// slips past the pre-check still comes back as ErrEmailTaken.
func (w *Workflow) Register(ctx context.Context, form validate.Form) (models.User, validate.Result, error) {
	result := validate.Run(form, validate.RegistrationRules())
	if !result.Valid() {
		return models.User{}, result, nil
	}

	name := strings.TrimSpace(form["name"])
	email := validate.CanonicalEmail(form["email"])

	exists, err := w.directory.EmailExists(ctx, email)
	if err != nil {
		return models.User{}, result, unavailable(err)
	}
	if exists {
		return models.User{}, result, ErrEmailTaken
	}

	hash, err := w.hasher.Hash(form["password"])
	if err != nil {
		// A weak or empty hash must never reach the store.
		return models.User{}, result, unavailable(err)
	}

	user, err := w.directory.Create(ctx, name, email, hash)
	if err != nil {
		if errors.Is(err, directory.ErrDuplicateEmail) {
			return models.User{}, result, ErrEmailTaken
		}
		return models.User{}, result, unavailable(err)
	}
	return user, result, nil
}

// Login verifies credentials and, on success, stores the user snapshot on the
// session. Unknown email and wrong password produce the identical
// ErrInvalidCredentials.
func (w *Workflow) Login(ctx context.Context, sessionID string, form validate.Form) (models.UserSnapshot, validate.Result, error) {
	result := validate.Run(form, validate.LoginRules())
	if !result.Valid() {
		return models.UserSnapshot{}, result, nil
	}

	email := validate.CanonicalEmail(form["email"])

	user, err := w.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return models.UserSnapshot{}, result, ErrInvalidCredentials
		}
		return models.UserSnapshot{}, result, unavailable(err)
	}

	if !w.hasher.Verify(form["password"], user.PasswordHash) {
		return models.UserSnapshot{}, result, ErrInvalidCredentials
	}

	snapshot := user.Snapshot()
	if err := w.sessions.SetUser(ctx, sessionID, snapshot); err != nil {
		return models.UserSnapshot{}, result, unavailable(err)
	}
	return snapshot, result, nil
}

// Logout destroys the session. It always succeeds from the caller's point of
// view: a store fault is logged, and the boundary layer drops the client
// credential unconditionally once destroy has been attempted. Logging out
// without a session is a no-op.
func (w *Workflow) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := w.sessions.Destroy(ctx, sessionID); err != nil {
		log.Warn().Err(err).Msg("Failed to destroy session on logout")
	}
}

// EditAccount updates the target account's name and email on behalf of the
// acting user. When the actor edits their own account, the session snapshot
// is refreshed to match the directory record.
func (w *Workflow) EditAccount(ctx context.Context, sessionID string, actor *models.UserSnapshot, targetID int64, form validate.Form) (models.User, validate.Result, error) {
	if actor == nil {
		return models.User{}, emptyResult(), ErrUnauthenticated
	}

	result := validate.Run(form, validate.AccountUpdateRules())
	if !result.Valid() {
		return models.User{}, result, nil
	}

	target, err := w.directory.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return models.User{}, result, ErrNotFound
		}
		return models.User{}, result, unavailable(err)
	}

	if d := authz.CanEdit(*actor, targetID); !d.Allowed {
		return models.User{}, result, &ForbiddenError{Reason: d.Reason}
	}

	name := strings.TrimSpace(form["name"])
	email := validate.CanonicalEmail(form["email"])

	// Keeping the current email is fine; only a change may collide.
	if !strings.EqualFold(email, target.Email) {
		exists, err := w.directory.EmailExists(ctx, email)
		if err != nil {
			return models.User{}, result, unavailable(err)
		}
		if exists {
			return models.User{}, result, ErrEmailTaken
		}
	}

	updated, err := w.directory.Update(ctx, targetID, name, email)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrDuplicateEmail):
			return models.User{}, result, ErrEmailTaken
		case errors.Is(err, directory.ErrNotFound):
			return models.User{}, result, ErrNotFound
		default:
			return models.User{}, result, unavailable(err)
		}
	}

	if actor.ID == targetID {
		if err := w.sessions.SetUser(ctx, sessionID, updated.Snapshot()); err != nil {
			// The directory write stands; surface the stale session as an
			// infrastructure failure rather than a clean success.
			return updated, result, unavailable(err)
		}
	}
	return updated, result, nil
}

// DeleteAccount removes the target account. Only admins may delete, and never
// themselves; both denials surface as ForbiddenError.
func (w *Workflow) DeleteAccount(ctx context.Context, actor *models.UserSnapshot, targetID int64) error {
	if actor == nil {
		return ErrUnauthenticated
	}

	if d := authz.CanDelete(*actor, targetID); !d.Allowed {
		return &ForbiddenError{Reason: d.Reason}
	}

	removed, err := w.directory.Delete(ctx, targetID)
	if err != nil {
		return unavailable(err)
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}
