package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, 10)

	assert.True(t, VerifyPassword("s3cret-pass", hash))
	assert.False(t, VerifyPassword("wrong", hash))
	assert.False(t, VerifyPassword("s3cret-pass", ""))
	assert.False(t, VerifyPassword("s3cret-pass", "not-a-hash"))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewResetToken(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tok, err := NewResetToken(now)
	require.NoError(t, err)

	assert.Len(t, tok.Plain, 40)
	assert.Len(t, tok.Hash, 64)
	assert.Equal(t, HashResetToken(tok.Plain), tok.Hash)
	assert.NotEqual(t, tok.Plain, tok.Hash)
	assert.Equal(t, now.Add(30*time.Minute), tok.ExpiresAt)

	other, err := NewResetToken(now)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Plain, other.Plain)
}
