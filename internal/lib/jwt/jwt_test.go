package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken_RoundTrip(t *testing.T) {
	token, err := NewToken("admin-1", "editor", "secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	adminID, err := AdminID(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", adminID)
}

func TestAdminID_WrongSecret(t *testing.T) {
	token, err := NewToken("admin-1", "editor", "secret", time.Hour)
	require.NoError(t, err)

	_, err = AdminID(token, "other")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminID_Expired(t *testing.T) {
	token, err := NewToken("admin-1", "editor", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = AdminID(token, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
