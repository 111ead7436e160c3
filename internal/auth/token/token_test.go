package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("signing-key", "cardtrack-test")

	signed, err := svc.Generate("alice", 48, "session-123", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, 48, claims.Level)
	assert.Equal(t, "session-123", claims.SessionID)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewService("signing-key", "cardtrack-test")

	signed, err := svc.Generate("alice", 1, "session-123", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	signed, err := NewService("key-a", "cardtrack-test").Generate("alice", 1, "s", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = NewService("key-b", "cardtrack-test").ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateRejectsUnsignedToken(t *testing.T) {
	svc := NewService("signing-key", "cardtrack-test")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Username: "mallory",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewService("signing-key", "cardtrack-test")

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
