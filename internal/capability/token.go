package capability

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the signed token claims: the registered set plus the granted scope.
type Claims struct {
	jwt.RegisteredClaims
	Scope []string `json:"scope"`
}

// TokenManager is the stateless capability form: claims are signed with an
// HMAC secret and verified without any server-side storage, so it needs no
// sticky sessions or shared state across instances.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager signing with secret and granting
// capabilities valid for ttl.
func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: secret, ttl: ttl, now: time.Now}
}

// Issue signs a fresh upload capability token.
func (m *TokenManager) Issue(_ context.Context) (*Grant, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Scope: []string{ScopeUpload},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, err
	}
	return &Grant{Token: signed}, nil
}

// Verify validates the Bearer token on r and returns the capability it
// encodes. Every failure collapses to ErrUnauthorized.
func (m *TokenManager) Verify(_ context.Context, r *http.Request) (*Capability, error) {
	raw, ok := bearerToken(r)
	if !ok {
		return nil, ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if claims.ExpiresAt == nil {
		return nil, ErrUnauthorized
	}

	cap := &Capability{
		ExpiresAt: claims.ExpiresAt.Time,
		Scope:     claims.Scope,
	}
	if claims.IssuedAt != nil {
		cap.IssuedAt = claims.IssuedAt.Time
	}
	if !cap.Allows(ScopeUpload, m.now()) {
		return nil, ErrUnauthorized
	}
	return cap, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}
