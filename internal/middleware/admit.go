package middleware

import (
	"net"
	"net/http"

	"github.com/docgate/service/internal/ratelimit"
	"github.com/docgate/service/internal/response"
)

// Admit returns middleware that rejects requests over the per-client rate
// limit with 429. It must run before the capability gate so that throttled
// requests never reach credential verification.
func Admit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				response.TooManyRequests(w, "rate limit exceeded, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey derives the limiter key from the request's remote address.
// chi's RealIP middleware rewrites RemoteAddr from X-Forwarded-For/X-Real-IP
// upstream of this gate, so the key follows the originating client.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
