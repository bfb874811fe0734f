package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewManager("", time.Hour)
	assert.Error(t, err)
}

func TestIssueAndVerifyToken(t *testing.T) {
	t.Parallel()

	m, err := NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := m.IssueToken(42, "ana@example.com")
	require.NoError(t, err)

	userID, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerifyExpiredToken(t *testing.T) {
	t.Parallel()

	m, err := NewManager("test-secret", -time.Hour)
	require.NoError(t, err)
	// negative ttl falls back to the default, so build an expired manager
	// explicitly
	m.ttl = -time.Hour

	token, err := m.IssueToken(42, "ana@example.com")
	require.NoError(t, err)

	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	issuer, err := NewManager("secret-a", time.Hour)
	require.NoError(t, err)
	verifier, err := NewManager("secret-b", time.Hour)
	require.NoError(t, err)

	token, err := issuer.IssueToken(42, "ana@example.com")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbageToken(t *testing.T) {
	t.Parallel()

	m, err := NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = m.VerifyToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}

func TestHashPasswordLongInput(t *testing.T) {
	t.Parallel()

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	hash, err := HashPassword(string(long))
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, string(long)))
}
