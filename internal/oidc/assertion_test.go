package oidc

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestParsePrivateKey(t *testing.T) {
	t.Run("parses PKCS8 PEM", func(t *testing.T) {
		key := testRSAKey(t)
		der, err := x509.MarshalPKCS8PrivateKey(key)
		require.NoError(t, err)
		pemStr := string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))

		parsed, err := ParsePrivateKey(pemStr)
		require.NoError(t, err)
		assert.Equal(t, key.N, parsed.N)
	})

	t.Run("parses PKCS1 PEM", func(t *testing.T) {
		key := testRSAKey(t)
		pemStr := string(pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		}))

		parsed, err := ParsePrivateKey(pemStr)
		require.NoError(t, err)
		assert.Equal(t, key.N, parsed.N)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ParsePrivateKey("")
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParsePrivateKey("not a key at all")
		assert.Error(t, err)
	})
}

func TestSignerSign(t *testing.T) {
	key := testRSAKey(t)
	signer := NewSigner("client-123", key)
	audience := "http://localhost:8088/v1/esignet/oauth/v2/token"

	t.Run("produces verifiable RS256 assertion with 300s lifetime", func(t *testing.T) {
		signed, err := signer.Sign(audience)
		require.NoError(t, err)

		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
			return &key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"RS256"}))
		require.NoError(t, err)
		require.True(t, parsed.Valid)

		assert.Equal(t, "RS256", parsed.Header["alg"])
		assert.Equal(t, "JWT", parsed.Header["typ"])
		assert.Equal(t, "client-123", claims["iss"])
		assert.Equal(t, "client-123", claims["sub"])

		aud, err := claims.GetAudience()
		require.NoError(t, err)
		assert.Equal(t, jwt.ClaimStrings{audience}, aud)

		iat, err := claims.GetIssuedAt()
		require.NoError(t, err)
		exp, err := claims.GetExpirationTime()
		require.NoError(t, err)
		assert.Equal(t, float64(300), exp.Sub(iat.Time).Seconds())
	})

	t.Run("jti is unique per call", func(t *testing.T) {
		first, err := signer.Sign(audience)
		require.NoError(t, err)
		second, err := signer.Sign(audience)
		require.NoError(t, err)

		firstClaims, ok := DecodeJWSPayload(first)
		require.True(t, ok)
		secondClaims, ok := DecodeJWSPayload(second)
		require.True(t, ok)

		assert.NotEmpty(t, firstClaims["jti"])
		assert.NotEqual(t, firstClaims["jti"], secondClaims["jti"])
	})

	t.Run("rejects empty audience", func(t *testing.T) {
		_, err := signer.Sign("")
		assert.Error(t, err)
	})

	t.Run("rejects empty client id", func(t *testing.T) {
		empty := NewSigner("", key)
		_, err := empty.Sign(audience)
		assert.Error(t, err)
	})
}

func TestDecodeJWSPayload(t *testing.T) {
	t.Run("decodes a compact JWS payload", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   "ind-1",
			"email": "agent@example.org",
		}).SignedString([]byte("irrelevant"))
		require.NoError(t, err)

		claims, ok := DecodeJWSPayload(token)
		require.True(t, ok)
		assert.Equal(t, "ind-1", claims["sub"])
		assert.Equal(t, "agent@example.org", claims["email"])
	})

	t.Run("rejects non-JWS input", func(t *testing.T) {
		_, ok := DecodeJWSPayload("just-a-plain-string")
		assert.False(t, ok)

		_, ok = DecodeJWSPayload("a.b")
		assert.False(t, ok)
	})
}
