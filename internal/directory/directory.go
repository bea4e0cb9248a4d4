// Package directory persists and looks up user accounts. Lookups distinguish
// three outcomes: found, ErrNotFound, or a storage error. A failing store is
// never reported as "absent" or "no duplicate".
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avelarde/campushub-be/internal/models"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a write would violate the email
	// uniqueness constraint. The constraint lives in the database, so this
	// also fires for the losing side of a concurrent registration.
	ErrDuplicateEmail = errors.New("email already registered")
)

// SQLite is a user directory backed by a SQLite database. The users table
// carries a UNIQUE COLLATE NOCASE index on email, which is the authoritative
// uniqueness guard.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates a directory over the given database handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// EmailExists reports whether an account with the given email exists. The
// comparison is case-insensitive. A non-nil error means the answer could not
// be determined and must not be read as "does not exist".
func (d *SQLite) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	row := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check email existence: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new member account and returns it without the password
// hash. A uniqueness violation from the store surfaces as ErrDuplicateEmail.
func (d *SQLite) Create(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	now := time.Now().UTC()
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO users(name, email, password_hash, role, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)",
		name, email, passwordHash, models.RoleMember, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return models.User{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      models.RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FindByEmail retrieves a user including the password hash. Only the login
// verification path may call this; everything else uses FindByID.
func (d *SQLite) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	row := d.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, role, created_at, updated_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user without the password hash.
func (d *SQLite) FindByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	row := d.db.QueryRowContext(ctx,
		"SELECT id, name, email, role, created_at, updated_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

// Update changes a user's name and email and returns the updated record.
func (d *SQLite) Update(ctx context.Context, id int64, name, email string) (models.User, error) {
	res, err := d.db.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?",
		name, email, time.Now().UTC(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return models.User{}, ErrNotFound
	}
	return d.FindByID(ctx, id)
}

// Delete removes a user. It returns true iff a row was removed; false with a
// nil error means the user did not exist.
func (d *SQLite) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := d.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return affected > 0, nil
}

// List returns all users, newest first, without password hashes.
func (d *SQLite) List(ctx context.Context) ([]models.User, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT id, name, email, role, created_at, updated_at FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
