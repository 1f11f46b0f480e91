package capability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func requestWithBearer(token string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/upload", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager([]byte("super-secret"), 5*time.Minute)

	grant, err := m.Issue(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, grant.Token)
	require.Nil(t, grant.Cookie)

	cap, err := m.Verify(context.Background(), requestWithBearer(grant.Token))
	require.NoError(t, err)
	require.True(t, cap.Allows(ScopeUpload, time.Now()))
}

func TestTokenManager_ValidUntilTTLThenExpired(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	m := NewTokenManager([]byte("secret"), 5*time.Minute)
	m.now = func() time.Time { return issued }

	grant, err := m.Issue(context.Background())
	require.NoError(t, err)

	// Still valid one second short of the TTL.
	m.now = func() time.Time { return issued.Add(5*time.Minute - time.Second) }
	cap, err := m.Verify(context.Background(), requestWithBearer(grant.Token))
	require.NoError(t, err)
	require.Equal(t, issued.Add(5*time.Minute), cap.ExpiresAt)

	// Expired exactly at the TTL boundary and after it.
	for _, at := range []time.Time{issued.Add(5 * time.Minute), issued.Add(6 * time.Minute)} {
		m.now = func() time.Time { return at }
		_, err := m.Verify(context.Background(), requestWithBearer(grant.Token))
		require.ErrorIs(t, err, ErrUnauthorized)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := NewTokenManager([]byte("right-secret"), time.Hour)
	grant, err := issuer.Issue(context.Background())
	require.NoError(t, err)

	verifier := NewTokenManager([]byte("wrong-secret"), time.Hour)
	_, err = verifier.Verify(context.Background(), requestWithBearer(grant.Token))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenManager_MissingScope(t *testing.T) {
	secret := []byte("secret")
	m := NewTokenManager(secret, time.Hour)

	// A token signed with the right secret but without the upload scope must
	// not pass verification.
	now := time.Now()
	unsigned := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(secret)
	require.NoError(t, err)

	_, err = m.Verify(context.Background(), requestWithBearer(token))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenManager_BadCredentials(t *testing.T) {
	m := NewTokenManager([]byte("secret"), time.Hour)

	noHeader := httptest.NewRequest(http.MethodPost, "/upload", nil)

	wrongScheme := httptest.NewRequest(http.MethodPost, "/upload", nil)
	wrongScheme.Header.Set("Authorization", "Basic abc123")

	for name, r := range map[string]*http.Request{
		"missing header": noHeader,
		"wrong scheme":   wrongScheme,
		"malformed":      requestWithBearer("not.a.jwt"),
	} {
		_, err := m.Verify(context.Background(), r)
		require.ErrorIs(t, err, ErrUnauthorized, name)
	}
}
