// Package auth resolves the client's session cookie into a request-scoped
// session, the prior gate every permission check builds on.
package auth

import (
	"context"
	"net/http"
	"os"

	"github.com/avelarde/campushub-be/internal/session"
	"github.com/rs/zerolog/log"
)

// SessionCookieName is the client credential correlated with a session id.
const SessionCookieName = "campushub_session"

// SessionManager is the slice of the session manager the HTTP layer uses.
type SessionManager interface {
	Create(ctx context.Context) (string, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	SetFlash(ctx context.Context, id, kind, text string) error
	TakeFlash(ctx context.Context, id string) (*session.Flash, error)
}

type contextKey string

const sessionContextKey = contextKey("session")

// SessionFromContext returns the request's session. The session middleware
// guarantees it is present on every route mounted behind it.
func SessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

func secureCookies() bool {
	return os.Getenv("APP_ENV") == "production"
}

// SetSessionCookie correlates the client with the given session id.
func SetSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		HttpOnly: true,
		Secure:   secureCookies(),
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// ClearSessionCookie drops the client credential. Called unconditionally on
// logout, whatever the session store reported.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secureCookies(),
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// SessionMiddleware resolves the session cookie to a session record,
// creating a fresh anonymous session on first contact or when the presented
// id no longer resolves. The resolved session rides on the request context.
func SessionMiddleware(manager SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var sess *session.Session
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				sess, err = manager.Get(ctx, cookie.Value)
				if err != nil {
					log.Error().Err(err).Msg("Failed to load session")
					http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
					return
				}
			}

			if sess == nil {
				id, err := manager.Create(ctx)
				if err != nil {
					log.Error().Err(err).Msg("Failed to create session")
					http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
					return
				}
				SetSessionCookie(w, id)
				sess = &session.Session{ID: id}
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionContextKey, sess)))
		})
	}
}
