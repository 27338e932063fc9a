package util

import (
	"finlit_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		Email: "teen@example.com",
		Role:  model.Student,
	}
	user.ID = 42

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Student, claims.Role)
	assert.Equal(t, "teen@example.com", claims.Email)
}

func TestParseJWTWrongSecret(t *testing.T) {
	user := &model.User{Email: "teen@example.com", Role: model.Student}
	token, err := GenerateJWT(user, "test-secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestParseJWTExpired(t *testing.T) {
	user := &model.User{Email: "teen@example.com", Role: model.Student}
	token, err := GenerateJWT(user, "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "test-secret")
	assert.Error(t, err)
}
