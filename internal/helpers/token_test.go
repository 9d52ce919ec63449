package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokens_IssueVerify(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	id := primitive.NewObjectID()

	signed, err := tokens.Issue(id.Hex(), "ada", "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), claims.UserID)
	assert.Equal(t, id.Hex(), claims.Subject)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, "ada@example.com", claims.Email)

	got, err := claims.ObjectID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.True(t, claims.IsOwner(id))
	assert.False(t, claims.IsOwner(primitive.NewObjectID()))
}

func TestTokens_VerifyRejects(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	t.Run("empty", func(t *testing.T) {
		_, err := tokens.Verify("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokens("other-secret", time.Hour)
		signed, err := other.Issue(primitive.NewObjectID().Hex(), "ada", "")
		require.NoError(t, err)
		_, err = tokens.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewTokens("test-secret", -time.Minute)
		signed, err := expired.Issue(primitive.NewObjectID().Hex(), "ada", "")
		require.NoError(t, err)
		_, err = tokens.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{UserID: "x"})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = tokens.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestSessionClaims_ObjectIDFallsBackToSubject(t *testing.T) {
	id := primitive.NewObjectID()
	claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: id.Hex()}}
	got, err := claims.ObjectID()
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = (&SessionClaims{UserID: "nope"}).ObjectID()
	assert.Error(t, err)
}
