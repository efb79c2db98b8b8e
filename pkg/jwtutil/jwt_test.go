package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	j := New(&Config{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := j.GenerateToken("user@acme.test", 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "user@acme.test", claims.Email)
}

func TestValidateTokenExpired(t *testing.T) {
	j := New(&Config{SigningKey: "test-signing-key", ExpirationHours: 1})

	// Sign a token that expired an hour ago; validation uses the server
	// clock, so it must be rejected regardless of claimed issue time.
	claims := UserClaims{
		Email:  "user@acme.test",
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = j.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenWrongKey(t *testing.T) {
	signer := New(&Config{SigningKey: "one-key", ExpirationHours: 1})
	verifier := New(&Config{SigningKey: "another-key", ExpirationHours: 1})

	token, err := signer.GenerateToken("user@acme.test", 42)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenMalformed(t *testing.T) {
	j := New(&Config{SigningKey: "test-signing-key", ExpirationHours: 1})

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := j.ValidateToken(token)
		assert.Error(t, err, "token %q should not validate", token)
	}
}

func TestValidateTokenRejectsUnexpectedSigningMethod(t *testing.T) {
	j := New(&Config{SigningKey: "test-signing-key", ExpirationHours: 1})

	// alg=none tokens must never validate.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, UserClaims{
		Email:  "user@acme.test",
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = j.ValidateToken(token)
	assert.Error(t, err)
}
