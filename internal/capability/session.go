package capability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// sessionCookie names the cookie carrying the session identifier.
const sessionCookie = "docgate_session"

// ErrSessionNotFound is returned by a SessionStore when no row exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// Session is a server-held capability record.
type Session struct {
	ID        string
	Scope     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionStore persists capability sessions. Expiry is enforced by the
// manager, not the store; Get returns whatever row exists for the id.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionManager is the stateful capability form: the capability lives in the
// store and the client holds only an opaque session id in a cookie. Unlike the
// token form, a session can be revoked before it expires.
type SessionManager struct {
	store        SessionStore
	ttl          time.Duration
	secureCookie bool
	now          func() time.Time
}

// NewSessionManager creates a SessionManager backed by store. secureCookie
// marks the issued cookie Secure (set it in production behind TLS).
func NewSessionManager(store SessionStore, ttl time.Duration, secureCookie bool) *SessionManager {
	return &SessionManager{store: store, ttl: ttl, secureCookie: secureCookie, now: time.Now}
}

// Issue creates a session row and returns the cookie that references it.
func (m *SessionManager) Issue(ctx context.Context) (*Grant, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Scope:     []string{ScopeUpload},
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, err
	}

	return &Grant{Cookie: &http.Cookie{
		Name:     sessionCookie,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}}, nil
}

// Verify resolves the session cookie on r to a live capability. Missing
// cookie, unknown id, expiry, and wrong scope all collapse to ErrUnauthorized.
func (m *SessionManager) Verify(ctx context.Context, r *http.Request) (*Capability, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, ErrUnauthorized
	}

	s, err := m.store.Get(ctx, c.Value)
	if err != nil {
		return nil, ErrUnauthorized
	}

	cap := &Capability{IssuedAt: s.IssuedAt, ExpiresAt: s.ExpiresAt, Scope: s.Scope}
	if !cap.Allows(ScopeUpload, m.now()) {
		return nil, ErrUnauthorized
	}
	return cap, nil
}

// Revoke invalidates a session before its TTL runs out. No HTTP endpoint
// exposes this; it exists for operational cleanup.
func (m *SessionManager) Revoke(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}
