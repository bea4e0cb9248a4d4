// Package session manages server-side sessions in Redis. A session is a
// redis hash under an opaque uuid key; mutations touch single fields, so
// overlapping requests on the same session cannot lose each other's writes.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avelarde/campushub-be/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned when the session store cannot be reached or
// answers with an unexpected failure.
var ErrUnavailable = errors.New("session store unavailable")

// Flash kinds.
const (
	FlashError   = "error"
	FlashSuccess = "success"
)

// Flash is a one-shot message: set by one request, consumed by the next.
type Flash struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Session is the state correlated with one client. User is nil for an
// anonymous session. Reading a Session never consumes its flash; use
// Manager.TakeFlash for that.
type Session struct {
	ID    string
	User  *models.UserSnapshot
	Flash *Flash
}

// Authenticated reports whether the session carries a logged-in user.
func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

const (
	fieldCreatedAt = "created_at"
	fieldUser      = "user"
	fieldFlashKind = "flash_kind"
	fieldFlashText = "flash_text"
)

// takeFlashScript reads and clears the flash fields in one step so two
// overlapping reads cannot both observe the same message.
const takeFlashScript = `
local kind = redis.call("HGET", KEYS[1], "flash_kind")
if not kind then
  return {}
end
local text = redis.call("HGET", KEYS[1], "flash_text")
redis.call("HDEL", KEYS[1], "flash_kind", "flash_text")
return {kind, text}
`

var takeFlashLua = redis.NewScript(takeFlashScript)

// Manager is a Redis-backed session manager. prefix namespaces the keys and
// ttl bounds the lifetime of an untouched session; every mutation renews it.
type Manager struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewManager creates a session Manager over the given Redis client.
func NewManager(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Manager {
	return &Manager{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (m *Manager) key(id string) string {
	return m.prefix + ":" + id
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Create allocates a new anonymous session and returns its id.
func (m *Manager) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	key := m.key(id)
	if err := m.rdb.HSet(ctx, key, fieldCreatedAt, time.Now().UTC().Format(time.RFC3339)).Err(); err != nil {
		return "", unavailable(err)
	}
	if err := m.rdb.Expire(ctx, key, m.ttl).Err(); err != nil {
		return "", unavailable(err)
	}
	return id, nil
}

// Get loads a session. A missing or expired id yields (nil, nil); an error
// always means the store could not answer.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	fields, err := m.rdb.HGetAll(ctx, m.key(id)).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	sess := &Session{ID: id}
	if raw, ok := fields[fieldUser]; ok {
		var snapshot models.UserSnapshot
		if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
			return nil, fmt.Errorf("decode session user: %w", err)
		}
		sess.User = &snapshot
	}
	if kind, ok := fields[fieldFlashKind]; ok {
		sess.Flash = &Flash{Kind: kind, Text: fields[fieldFlashText]}
	}
	return sess, nil
}

// SetUser stores the authenticated user snapshot on the session and renews
// its lifetime.
func (m *Manager) SetUser(ctx context.Context, id string, snapshot models.UserSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	key := m.key(id)
	if err := m.rdb.HSet(ctx, key, fieldUser, raw).Err(); err != nil {
		return unavailable(err)
	}
	if err := m.rdb.Expire(ctx, key, m.ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// ClearUser removes the user snapshot, returning the session to anonymous.
func (m *Manager) ClearUser(ctx context.Context, id string) error {
	if err := m.rdb.HDel(ctx, m.key(id), fieldUser).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// SetFlash stores a one-shot message on the session, replacing any pending one.
func (m *Manager) SetFlash(ctx context.Context, id, kind, text string) error {
	if err := m.rdb.HSet(ctx, m.key(id), fieldFlashKind, kind, fieldFlashText, text).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// TakeFlash atomically reads and clears the pending flash message. It returns
// (nil, nil) when none is set.
func (m *Manager) TakeFlash(ctx context.Context, id string) (*Flash, error) {
	res, err := takeFlashLua.Run(ctx, m.rdb, []string{m.key(id)}).Slice()
	if err != nil {
		return nil, unavailable(err)
	}
	if len(res) < 2 {
		return nil, nil
	}
	kind, _ := res[0].(string)
	text, _ := res[1].(string)
	return &Flash{Kind: kind, Text: text}, nil
}

// Destroy removes the session record. Destroying a session that no longer
// exists is a no-op. Callers must drop the client credential regardless of
// the returned error.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if err := m.rdb.Del(ctx, m.key(id)).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}
