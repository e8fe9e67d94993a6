package jwt

import (
	"testing"
	"time"

	"go-handicraft-ops/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateRoundTrip(t *testing.T) {
	m := NewManager(config.JWTConfig{Secret: "s3cret", Issuer: "test", ExpirationHours: 1})
	userID := uuid.New()

	token, err := m.GenerateToken(userID, "a@b.c", "Ana", "ADMIN", []string{"transfer:view"}, "v1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, []string{"transfer:view"}, claims.Privileges)
	assert.Equal(t, "v1", claims.TokenVersion)
}

func TestValidateRejectsForeignSecretAndExpiry(t *testing.T) {
	issuer := NewManager(config.JWTConfig{Secret: "one", Issuer: "test", ExpirationHours: 1})
	other := NewManager(config.JWTConfig{Secret: "two", Issuer: "test", ExpirationHours: 1})

	token, err := issuer.GenerateToken(uuid.New(), "a@b.c", "Ana", "ADMIN", nil, "v1")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := issuer.GenerateToken(uuid.New(), "a@b.c", "Ana", "ADMIN", nil, "v1")
	require.NoError(t, err)
	_, err = issuer.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
