package auth

import (
	"testing"
	"time"

	"shop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour)

	token, err := ts.Issue(&models.User{ID: 42, Role: models.RoleAdmin})
	require.NoError(t, err)

	identity, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), identity.UserID)
	assert.Equal(t, models.RoleAdmin, identity.Role)
	assert.True(t, identity.IsAdmin())
}

func TestVerifyFailuresAreOpaque(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour)
	other := NewTokenService("other-secret", time.Hour)

	signedByOther, err := other.Issue(&models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	expiredService := NewTokenService("test-secret", -time.Hour)
	expired, err := expiredService.Issue(&models.User{ID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"garbage":       "not.a.token",
		"empty":         "",
		"bad signature": signedByOther,
		"expired":       expired,
	} {
		_, err := ts.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour)

	token, err := ts.Issue(&models.User{ID: 7, Role: "superuser"})
	require.NoError(t, err)

	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyHeader(t *testing.T) {
	ts := NewTokenService("test-secret", time.Hour)

	token, err := ts.Issue(&models.User{ID: 5, Role: models.RoleUser})
	require.NoError(t, err)

	identity, err := ts.VerifyHeader("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), identity.UserID)

	for name, header := range map[string]string{
		"missing scheme": token,
		"wrong scheme":   "Basic " + token,
		"extra parts":    "Bearer " + token + " trailing",
		"empty":          "",
	} {
		_, err := ts.VerifyHeader(header)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, CheckPasswordHash("hunter22", hash))
	assert.Error(t, CheckPasswordHash("wrong", hash))
}
