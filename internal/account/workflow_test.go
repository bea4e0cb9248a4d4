package account

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/avelarde/campushub-be/internal/directory"
	"github.com/avelarde/campushub-be/internal/models"
	"github.com/avelarde/campushub-be/internal/password"
	"github.com/avelarde/campushub-be/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeDirectory struct {
	emailExists    bool
	emailExistsErr error

	createOut models.User
	createErr error

	findByEmailOut models.User
	findByEmailErr error

	findByIDOut models.User
	findByIDErr error

	updateOut models.User
	updateErr error

	deleteRemoved bool
	deleteErr     error

	emailExistsCalled bool
	createCalled      bool
	updateCalled      bool
	createdName       string
	createdEmail      string
	createdHash       string
	updatedName       string
	updatedEmail      string
}

func (f *fakeDirectory) EmailExists(_ context.Context, email string) (bool, error) {
	f.emailExistsCalled = true
	return f.emailExists, f.emailExistsErr
}

func (f *fakeDirectory) Create(_ context.Context, name, email, passwordHash string) (models.User, error) {
	f.createCalled = true
	f.createdName, f.createdEmail, f.createdHash = name, email, passwordHash
	if f.createErr != nil {
		return models.User{}, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeDirectory) FindByEmail(_ context.Context, email string) (models.User, error) {
	if f.findByEmailErr != nil {
		return models.User{}, f.findByEmailErr
	}
	return f.findByEmailOut, nil
}

func (f *fakeDirectory) FindByID(_ context.Context, id int64) (models.User, error) {
	if f.findByIDErr != nil {
		return models.User{}, f.findByIDErr
	}
	return f.findByIDOut, nil
}

func (f *fakeDirectory) Update(_ context.Context, id int64, name, email string) (models.User, error) {
	f.updateCalled = true
	f.updatedName, f.updatedEmail = name, email
	if f.updateErr != nil {
		return models.User{}, f.updateErr
	}
	return f.updateOut, nil
}

func (f *fakeDirectory) Delete(_ context.Context, id int64) (bool, error) {
	return f.deleteRemoved, f.deleteErr
}

type fakeSessions struct {
	setErr     error
	destroyErr error

	setCalled   bool
	setID       string
	setSnapshot models.UserSnapshot
	destroyed   []string
}

func (f *fakeSessions) SetUser(_ context.Context, id string, snapshot models.UserSnapshot) error {
	f.setCalled = true
	f.setID = id
	f.setSnapshot = snapshot
	return f.setErr
}

func (f *fakeSessions) Destroy(_ context.Context, id string) error {
	f.destroyed = append(f.destroyed, id)
	return f.destroyErr
}

func newTestWorkflow(dir *fakeDirectory, sessions *fakeSessions) *Workflow {
	return NewWorkflow(dir, sessions, password.NewBcryptHasher(4))
}

func registrationForm() validate.Form {
	return validate.Form{
		"name":            "Jane Doeington",
		"email":           " Jane@X.COM ",
		"confirmEmail":    "jane@x.com",
		"password":        "Secr3t!ab",
		"confirmPassword": "Secr3t!ab",
	}
}

func memberSnap(id int64) *models.UserSnapshot {
	return &models.UserSnapshot{ID: id, Name: "Jane Doeington", Email: "jane@x.com", Role: models.RoleMember}
}

func adminSnap(id int64) *models.UserSnapshot {
	return &models.UserSnapshot{ID: id, Name: "Morgan Castellano", Email: "morgan@x.com", Role: models.RoleAdmin}
}

// --- Register ---

func TestRegisterSuccess(t *testing.T) {
	dir := &fakeDirectory{createOut: models.User{ID: 7, Name: "Jane Doeington", Email: "jane@x.com", Role: models.RoleMember}}
	w := newTestWorkflow(dir, &fakeSessions{})

	user, result, err := w.Register(context.Background(), registrationForm())
	require.NoError(t, err)
	assert.True(t, result.Valid())

	assert.Equal(t, "jane@x.com", dir.createdEmail, "email is stored in canonical lowercase form")
	assert.Equal(t, "Jane Doeington", dir.createdName)
	assert.NotEqual(t, "Secr3t!ab", dir.createdHash, "the plaintext never reaches the store")
	assert.True(t, password.NewBcryptHasher(4).Verify("Secr3t!ab", dir.createdHash))

	assert.Equal(t, int64(7), user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestRegisterValidationFailureSkipsDirectory(t *testing.T) {
	dir := &fakeDirectory{}
	w := newTestWorkflow(dir, &fakeSessions{})

	form := registrationForm()
	form["password"] = "short"

	_, result, err := w.Register(context.Background(), form)
	require.NoError(t, err)
	assert.False(t, result.Valid())
	assert.False(t, dir.emailExistsCalled)
	assert.False(t, dir.createCalled)
}

func TestRegisterEmailTaken(t *testing.T) {
	dir := &fakeDirectory{emailExists: true}
	w := newTestWorkflow(dir, &fakeSessions{})

	_, _, err := w.Register(context.Background(), registrationForm())
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.False(t, dir.createCalled)
}

func TestRegisterExistenceCheckFaultIsUnavailable(t *testing.T) {
	dir := &fakeDirectory{emailExistsErr: errors.New("db down")}
	w := newTestWorkflow(dir, &fakeSessions{})

	_, _, err := w.Register(context.Background(), registrationForm())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrEmailTaken)
	assert.False(t, dir.createCalled, "an undetermined existence check must not proceed")
}

func TestRegisterLosesCreateRace(t *testing.T) {
	// Pre-check passed, but a concurrent writer got there first: the store's
	// constraint answers, and the outcome is still EmailTaken.
	dir := &fakeDirectory{emailExists: false, createErr: directory.ErrDuplicateEmail}
	w := newTestWorkflow(dir, &fakeSessions{})

	_, _, err := w.Register(context.Background(), registrationForm())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterHashingFailure(t *testing.T) {
	dir := &fakeDirectory{}
	w := newTestWorkflow(dir, &fakeSessions{})

	form := registrationForm()
	// Valid per the rules, but over bcrypt's 72-byte input limit.
	long := strings.Repeat("a", 80) + "1!"
	form["password"] = long
	form["confirmPassword"] = long

	_, _, err := w.Register(context.Background(), form)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, dir.createCalled, "a failed hash must abort registration")
}

// --- Login ---

func loginForm(email, pass string) validate.Form {
	return validate.Form{"email": email, "password": pass}
}

func storedUser(t *testing.T, plaintext string) models.User {
	t.Helper()
	hash, err := password.NewBcryptHasher(4).Hash(plaintext)
	require.NoError(t, err)
	return models.User{ID: 3, Name: "Jane Doeington", Email: "jane@x.com", PasswordHash: hash, Role: models.RoleMember}
}

func TestLoginSuccess(t *testing.T) {
	dir := &fakeDirectory{findByEmailOut: storedUser(t, "Secr3t!ab")}
	sessions := &fakeSessions{}
	w := newTestWorkflow(dir, sessions)

	snap, result, err := w.Login(context.Background(), "sid-1", loginForm("Jane@X.com", "Secr3t!ab"))
	require.NoError(t, err)
	assert.True(t, result.Valid())
	assert.Equal(t, int64(3), snap.ID)

	require.True(t, sessions.setCalled)
	assert.Equal(t, "sid-1", sessions.setID)
	assert.Equal(t, snap, sessions.setSnapshot)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	unknown := &fakeDirectory{findByEmailErr: directory.ErrNotFound}
	wrongPass := &fakeDirectory{findByEmailOut: storedUser(t, "Secr3t!ab")}

	for name, dir := range map[string]*fakeDirectory{"unknown email": unknown, "wrong password": wrongPass} {
		t.Run(name, func(t *testing.T) {
			sessions := &fakeSessions{}
			w := newTestWorkflow(dir, sessions)

			_, _, err := w.Login(context.Background(), "sid-1", loginForm("jane@x.com", "Wr0ng!pass"))
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.False(t, sessions.setCalled)
		})
	}
}

func TestLoginDirectoryFaultIsNotInvalidCredentials(t *testing.T) {
	dir := &fakeDirectory{findByEmailErr: errors.New("db down")}
	w := newTestWorkflow(dir, &fakeSessions{})

	_, _, err := w.Login(context.Background(), "sid-1", loginForm("jane@x.com", "Secr3t!ab"))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginSessionFaultIsUnavailable(t *testing.T) {
	dir := &fakeDirectory{findByEmailOut: storedUser(t, "Secr3t!ab")}
	sessions := &fakeSessions{setErr: errors.New("redis down")}
	w := newTestWorkflow(dir, sessions)

	_, _, err := w.Login(context.Background(), "sid-1", loginForm("jane@x.com", "Secr3t!ab"))
	assert.ErrorIs(t, err, ErrUnavailable)
}

// --- Logout ---

func TestLogoutDestroysSession(t *testing.T) {
	sessions := &fakeSessions{}
	w := newTestWorkflow(&fakeDirectory{}, sessions)

	w.Logout(context.Background(), "sid-1")
	assert.Equal(t, []string{"sid-1"}, sessions.destroyed)
}

func TestLogoutWithoutSessionIsNoop(t *testing.T) {
	sessions := &fakeSessions{}
	w := newTestWorkflow(&fakeDirectory{}, sessions)

	w.Logout(context.Background(), "")
	assert.Empty(t, sessions.destroyed)
}

func TestLogoutSurvivesStoreFault(t *testing.T) {
	sessions := &fakeSessions{destroyErr: errors.New("redis down")}
	w := newTestWorkflow(&fakeDirectory{}, sessions)

	// Must not panic or surface the fault; the boundary drops the cookie anyway.
	w.Logout(context.Background(), "sid-1")
	assert.Equal(t, []string{"sid-1"}, sessions.destroyed)
}

// --- EditAccount ---

func editForm(name, email string) validate.Form {
	return validate.Form{"name": name, "email": email}
}

func TestEditAccountUnauthenticated(t *testing.T) {
	w := newTestWorkflow(&fakeDirectory{}, &fakeSessions{})

	_, _, err := w.EditAccount(context.Background(), "sid-1", nil, 3, editForm("Jane Doeington", "jane@x.com"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestEditAccountSelfRefreshesSession(t *testing.T) {
	dir := &fakeDirectory{
		findByIDOut: models.User{ID: 3, Name: "Jane Doeington", Email: "jane@x.com", Role: models.RoleMember},
		updateOut:   models.User{ID: 3, Name: "Jane Doeington", Email: "jane@y.com", Role: models.RoleMember},
	}
	sessions := &fakeSessions{}
	w := newTestWorkflow(dir, sessions)

	updated, result, err := w.EditAccount(context.Background(), "sid-1", memberSnap(3), 3, editForm("Jane Doeington", "Jane@Y.com"))
	require.NoError(t, err)
	assert.True(t, result.Valid())
	assert.Equal(t, "jane@y.com", dir.updatedEmail)
	assert.Equal(t, "jane@y.com", updated.Email)

	require.True(t, sessions.setCalled, "self-edit must re-sync the session snapshot")
	assert.Equal(t, updated.Snapshot(), sessions.setSnapshot)
}

func TestEditAccountByAdminLeavesSessionAlone(t *testing.T) {
	dir := &fakeDirectory{
		findByIDOut: models.User{ID: 3, Name: "Jane Doeington", Email: "jane@x.com", Role: models.RoleMember},
		updateOut:   models.User{ID: 3, Name: "Janet Doeington", Email: "jane@x.com", Role: models.RoleMember},
	}
	sessions := &fakeSessions{}
	w := newTestWorkflow(dir, sessions)

	_, _, err := w.EditAccount(context.Background(), "sid-1", adminSnap(1), 3, editForm("Janet Doeington", "jane@x.com"))
	require.NoError(t, err)
	assert.False(t, sessions.setCalled)
}

func TestEditAccountForbidden(t *testing.T) {
	dir := &fakeDirectory{
		findByIDOut: models.User{ID: 7, Name: "Sam Fletcherson", Email: "sam@x.com", Role: models.RoleMember},
	}
	w := newTestWorkflow(dir, &fakeSessions{})

	_, _, err := w.EditAccount(context.Background(), "sid-1", memberSnap(5), 7, editForm("Sam Fletcherson", "sam@x.com"))
	assert.ErrorIs(t, err, ErrForbidden)

	var forbidden *ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.NotEmpty(t, forbidden.Reason)
	assert.False(t, dir.updateCalled)
}

func TestEditAccountTargetMissing(t *testing.T) {
	dir := &fakeDirectory{findByIDErr: directory.ErrNotFound}
	w := newTestWorkflow(dir, &fakeSessions{})

	_, _, err := w.EditAccount(context.Background(), "sid-1", memberSnap(3), 3, editForm("Jane Doeington", "jane@x.com"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditAccountEmailTaken(t *testing.T) {
	dir := &fakeDirectory{
		findByIDOut: models.User{ID: 3, Name: "Jane Doeington", Email: "jane@x.com", Role: models.RoleMember},
		emailExists: true,
	}
	w := newTestWorkflow(dir, &fakeSessions{})

	_, _, err := w.EditAccount(context.Background(), "sid-1", memberSnap(3), 3, editForm("Jane Doeington", "owned@x.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.False(t, dir.updateCalled, "target record stays unchanged")
}

func TestEditAccountKeepingEmailSkipsExistenceCheck(t *testing.T) {
	dir := &fakeDirectory{
		findByIDOut: models.User{ID: 3, Name: "Jane Doeington", Email: "jane@x.com", Role: models.RoleMember},
		updateOut:   models.User{ID: 3, Name: "Janet Doeington", Email: "jane@x.com", Role: models.RoleMember},
	}
	w := newTestWorkflow(dir, &fakeSessions{})

	// Same address in different case is not a change.
	_, _, err := w.EditAccount(context.Background(), "sid-1", memberSnap(3), 3, editForm("Janet Doeington", "JANE@X.COM"))
	require.NoError(t, err)
	assert.False(t, dir.emailExistsCalled)
	assert.True(t, dir.updateCalled)
}

func TestEditAccountLosesUpdateRace(t *testing.T) {
	dir := &fakeDirectory{
		findByIDOut: models.User{ID: 3, Name: "Jane Doeington", Email: "jane@x.com", Role: models.RoleMember},
		updateErr:   directory.ErrDuplicateEmail,
	}
	w := newTestWorkflow(dir, &fakeSessions{})

	_, _, err := w.EditAccount(context.Background(), "sid-1", memberSnap(3), 3, editForm("Jane Doeington", "jane@y.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestEditAccountSessionRefreshFault(t *testing.T) {
	dir := &fakeDirectory{
		findByIDOut: models.User{ID: 3, Name: "Jane Doeington", Email: "jane@x.com", Role: models.RoleMember},
		updateOut:   models.User{ID: 3, Name: "Jane Doeington", Email: "jane@y.com", Role: models.RoleMember},
	}
	sessions := &fakeSessions{setErr: errors.New("redis down")}
	w := newTestWorkflow(dir, sessions)

	_, _, err := w.EditAccount(context.Background(), "sid-1", memberSnap(3), 3, editForm("Jane Doeington", "jane@y.com"))
	assert.ErrorIs(t, err, ErrUnavailable, "a stale session is never reported as a clean success")
}

// --- DeleteAccount ---

func TestDeleteAccountUnauthenticated(t *testing.T) {
	w := newTestWorkflow(&fakeDirectory{}, &fakeSessions{})

	err := w.DeleteAccount(context.Background(), nil, 2)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestDeleteAccountForbidden(t *testing.T) {
	tests := []struct {
		name  string
		actor *models.UserSnapshot
	}{
		{"member deleting another account", memberSnap(1)},
		{"admin deleting themselves", adminSnap(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorkflow(&fakeDirectory{deleteRemoved: true}, &fakeSessions{})
			err := w.DeleteAccount(context.Background(), tt.actor, 2)
			assert.ErrorIs(t, err, ErrForbidden)
		})
	}
}

func TestDeleteAccountSuccess(t *testing.T) {
	w := newTestWorkflow(&fakeDirectory{deleteRemoved: true}, &fakeSessions{})

	err := w.DeleteAccount(context.Background(), adminSnap(1), 2)
	assert.NoError(t, err)
}

func TestDeleteAccountMissingTarget(t *testing.T) {
	w := newTestWorkflow(&fakeDirectory{deleteRemoved: false}, &fakeSessions{})

	err := w.DeleteAccount(context.Background(), adminSnap(1), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAccountStoreFault(t *testing.T) {
	w := newTestWorkflow(&fakeDirectory{deleteErr: errors.New("db down")}, &fakeSessions{})

	err := w.DeleteAccount(context.Background(), adminSnap(1), 2)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}
