// Package capability issues and verifies time-boxed upload permissions.
//
// A capability comes in two interchangeable forms: a stateless HMAC-signed
// token carried in the Authorization header (default), or a server-side
// session row referenced by a cookie. Both grant the same thing: the right
// to upload for the configured TTL.
package capability

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ScopeUpload is the only scope this service grants.
const ScopeUpload = "upload"

// ErrUnauthorized is returned for every verification failure: missing
// credential, bad signature, unknown session, expiry, wrong scope. Callers
// must not learn which check failed.
var ErrUnauthorized = errors.New("unauthorized")

// Capability is a time-boxed, scope-limited permission.
type Capability struct {
	IssuedAt  time.Time
	ExpiresAt time.Time
	Scope     []string
}

// Allows reports whether the capability permits scope at the given instant.
func (c *Capability) Allows(scope string, now time.Time) bool {
	if !now.Before(c.ExpiresAt) {
		return false
	}
	for _, s := range c.Scope {
		if s == scope {
			return true
		}
	}
	return false
}

// Grant is the client-facing credential produced by Issue. Exactly one field
// is set: Token for the stateless form, Cookie for the session form.
type Grant struct {
	Token  string
	Cookie *http.Cookie
}

// Manager issues capabilities and verifies the credential presented on a request.
type Manager interface {
	Issue(ctx context.Context) (*Grant, error)
	Verify(ctx context.Context, r *http.Request) (*Capability, error)
}
