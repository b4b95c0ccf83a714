package auth

import (
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	clk := testclock.NewClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	issuer := NewTokenIssuer("secret", 7*24*time.Hour, clk)

	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	userID, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestTokenIssuer_Expired(t *testing.T) {
	clk := testclock.NewClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	issuer := NewTokenIssuer("secret", time.Hour, clk)

	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	_, err = issuer.Parse(token)
	assert.True(t, errors.Is(err, errors.Unauthorized), "got %v", err)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("one", time.Hour, nil).Issue("user-1")
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour, nil).Parse(token)
	assert.True(t, errors.Is(err, errors.Unauthorized))
}

func TestTokenIssuer_Garbage(t *testing.T) {
	_, err := NewTokenIssuer("secret", time.Hour, nil).Parse("not-a-token")
	assert.True(t, errors.Is(err, errors.Unauthorized))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
