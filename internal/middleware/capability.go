package middleware

import (
	"net/http"

	"github.com/docgate/service/internal/capability"
	"github.com/docgate/service/internal/response"
)

// RequireCapability returns middleware that verifies the upload capability
// presented on the request (Bearer token or session cookie, depending on the
// manager). Every verification failure is answered with the same 403; the
// reason is deliberately not disclosed.
func RequireCapability(mgr capability.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := mgr.Verify(r.Context(), r); err != nil {
				response.Forbidden(w, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
