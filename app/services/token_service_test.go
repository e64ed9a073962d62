package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService(t *testing.T) *TokenServiceImpl {
	t.Helper()
	service, err := NewTokenService(
		time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		"test-secret-key-for-jwt-signing-32-chars", // secretKey
	)
	require.NoError(t, err)
	return service.(*TokenServiceImpl)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		ttl         time.Duration
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{name: "valid symmetric key configuration", ttl: time.Hour, secretKey: "secret", expectError: false},
		{name: "missing secret key", ttl: time.Hour, secretKey: "", expectError: true},
		{name: "non positive ttl", ttl: 0, secretKey: "secret", expectError: true},
		{name: "rsa without keys", ttl: time.Hour, useRSAKeys: true, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(tt.ttl, "iss", "aud", tt.useRSAKeys, "", "", tt.secretKey)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ttl, service.TTL())
		})
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	service := createTestTokenService(t)

	token, expiresAt, err := service.GenerateSessionToken("session-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, sessionTokenType, claims.TokenType)
	assert.Len(t, claims.TokenID, 32)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())

	other, _, err := service.GenerateSessionToken("session-1")
	require.NoError(t, err)
	assert.NotEqual(t, token, other, "token ids must differ")

	_, _, err = service.GenerateSessionToken("")
	assert.Error(t, err)
}

func TestSessionTokenRejections(t *testing.T) {
	service := createTestTokenService(t)
	token, _, err := service.GenerateSessionToken("session-1")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		expired := createTestTokenService(t)
		expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := expired.ValidateSessionToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenService(time.Hour, "test-issuer", "test-audience", false, "", "", "another-secret")
		require.NoError(t, err)
		_, err = other.ValidateSessionToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other, err := NewTokenService(time.Hour, "test-issuer", "someone-else", false, "", "", "test-secret-key-for-jwt-signing-32-chars")
		require.NoError(t, err)
		_, err = other.ValidateSessionToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.ValidateSessionToken("not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("foreign token type", func(t *testing.T) {
		forged, err := service.generateToken(jwt.MapClaims{
			"session_id": "session-1",
			"token_type": "access",
			"jti":        "x",
			"iat":        time.Now().Unix(),
			"exp":        time.Now().Add(time.Hour).Unix(),
			"iss":        "test-issuer",
			"aud":        "test-audience",
		})
		require.NoError(t, err)
		_, err = service.ValidateSessionToken(forged)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"session_id": "session-1",
			"token_type": sessionTokenType,
			"exp":        time.Now().Add(time.Hour).Unix(),
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = service.ValidateSessionToken(raw)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestSessionTokenRSA(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})

	service, err := NewTokenService(time.Hour, "iss", "aud", true, string(privPEM), string(pubPEM), "")
	require.NoError(t, err)

	token, _, err := service.GenerateSessionToken("rsa-session")
	require.NoError(t, err)

	claims, err := service.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "rsa-session", claims.SessionID)

	hmac := createTestTokenService(t)
	_, err = hmac.ValidateSessionToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
