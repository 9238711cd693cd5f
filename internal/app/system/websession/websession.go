// internal/app/system/websession/websession.go
package websession

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// The app has no accounts or logins; the cookie session exists only to
// give each browser a stable identity so per-session state (the last
// generated partition, flash messages) has something to hang off.

const (
	sessionIDKey = "session_id"
	flashKey     = "flash"
)

// Manager wraps a gorilla cookie store and hands out stable session IDs.
type Manager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewManager builds a Manager from the configured signing key and cookie
// settings. Secure should be set in production so cookies are HTTPS-only.
func NewManager(sessionKey, cookieName, domain string, secure bool, logger *zap.Logger) (*Manager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 30,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{store: store, name: cookieName, log: logger}, nil
}

type ctxKey string

const sessionCtxKey ctxKey = "websession"

// EnsureSession is middleware that assigns a session ID to first-time
// visitors and puts the ID into the request context for handlers.
func (m *Manager) EnsureSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.store.Get(r, m.name)

		id, _ := sess.Values[sessionIDKey].(string)
		if id == "" {
			id = uuid.NewString()
			sess.Values[sessionIDKey] = id
			if err := sess.Save(r, w); err != nil {
				m.log.Warn("session save failed", zap.Error(err))
			}
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ID returns the request's session ID, or "" when EnsureSession did not
// run (direct handler tests, health probes).
func ID(r *http.Request) string {
	id, _ := r.Context().Value(sessionCtxKey).(string)
	return id
}

// WithTestID injects a session ID into the request context. Test helper.
func WithTestID(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionCtxKey, id))
}

// Flash stores a one-shot message shown on the next rendered page.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, msg string) {
	sess, _ := m.store.Get(r, m.name)
	sess.AddFlash(msg, flashKey)
	if err := sess.Save(r, w); err != nil {
		m.log.Warn("flash save failed", zap.Error(err))
	}
}

// PopFlashes returns and clears any pending flash messages.
func (m *Manager) PopFlashes(w http.ResponseWriter, r *http.Request) []string {
	sess, _ := m.store.Get(r, m.name)
	raw := sess.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		m.log.Warn("flash clear failed", zap.Error(err))
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
