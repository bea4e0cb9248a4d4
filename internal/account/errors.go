package account

import "errors"

var (
	// ErrEmailTaken is returned when a registration or edit targets an email
	// already owned by another account.
	ErrEmailTaken = errors.New("an account with this email address already exists")
	// ErrInvalidCredentials is the single outcome for every failed login,
	// whether the email is unknown or the password is wrong, so responses
	// cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotFound is returned when the target account no longer exists.
	ErrNotFound = errors.New("account not found")
	// ErrUnauthenticated is returned when an operation requiring a logged-in
	// user is attempted anonymously.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is the base of every authorization denial; match with
	// errors.Is and read the reason via errors.As on *ForbiddenError.
	ErrForbidden = errors.New("forbidden")
	// ErrUnavailable wraps infrastructure failures (directory, session store,
	// hasher). It is always distinguishable from the domain outcomes above.
	ErrUnavailable = errors.New("account backend unavailable")
)

// ForbiddenError is an authorization denial carrying the policy's reason.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}
