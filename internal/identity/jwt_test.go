package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier("topsecret")

	tok := signToken(t, "topsecret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "player-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		DisplayName: "Maria",
		AvatarRef:   "avatars/7.png",
	})

	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "player-42", id.PlayerID)
	assert.Equal(t, "Maria", id.DisplayName)
	assert.Equal(t, "avatars/7.png", id.AvatarRef)
}

func TestJWTVerifier_Rejections(t *testing.T) {
	v := NewJWTVerifier("topsecret")

	t.Run("empty token", func(t *testing.T) {
		_, err := v.Verify("")
		assert.ErrorIs(t, err, ErrAuth)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok := signToken(t, "othersecret", Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "player-42"},
		})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrAuth)
	})

	t.Run("expired", func(t *testing.T) {
		tok := signToken(t, "topsecret", Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "player-42",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrAuth)
	})

	t.Run("missing subject", func(t *testing.T) {
		tok := signToken(t, "topsecret", Claims{DisplayName: "ghost"})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrAuth)
	})
}
