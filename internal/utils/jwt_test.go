package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT(7, "seller@example.com", []int64{3, 4})
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.SellerID)
	assert.Equal(t, "seller@example.com", claims.Email)
	assert.Equal(t, []int64{3, 4}, claims.StoreIDs)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	InitJWT("test-secret")

	_, err := ValidateJWT("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	InitJWT("secret-a")
	token, err := GenerateJWT(1, "a@example.com", nil)
	require.NoError(t, err)

	InitJWT("secret-b")
	_, err = ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
