package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret-key")

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", h)

	assert.NoError(t, CheckPassword(h, "hunter2"))
	assert.ErrorIs(t, CheckPassword(h, "hunter3"), ErrInvalidCredentials)
	assert.ErrorIs(t, CheckPassword("", "hunter2"), ErrInvalidCredentials)

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestToken_RoundTrip(t *testing.T) {
	tok, err := IssueToken(secret, "c1", "u1", time.Now(), time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "c1", claims.TenantID)
	assert.Equal(t, "u1", claims.Subject)
}

func TestToken_Rejections(t *testing.T) {
	expired, err := IssueToken(secret, "c1", "u1", time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	noTenant, err := IssueToken(secret, "", "u1", time.Now(), 0)
	require.NoError(t, err)
	otherKey, err := IssueToken([]byte("other"), "c1", "u1", time.Now(), 0)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{TenantID: "c1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":   expired,
		"no tenant": noTenant,
		"wrong key": otherKey,
		"unsigned":  none,
		"not a jwt": "abc.def",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(secret, tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
