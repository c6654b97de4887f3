package oidc

import (
	"crypto/rsa"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/childbooklet/booklet-server-go/internal/config"
	"github.com/childbooklet/booklet-server-go/internal/util"
)

// ParsePrivateKey accepts the client signing key as either a PEM block or
// an RSA private JWK and returns a usable RSA key. eSignet client
// registration hands out JWKs; locally generated keys are usually PEM.
func ParsePrivateKey(raw string) (*rsa.PrivateKey, error) {
	if raw == "" {
		return nil, fmt.Errorf("no private key provided")
	}

	if strings.Contains(raw, "BEGIN") {
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("parse PEM private key: %w", err)
		}
		return key, nil
	}

	key, err := jwk.ParseKey([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("parse JWK private key: %w", err)
	}

	var rawKey interface{}
	if err := jwk.Export(key, &rawKey); err != nil {
		return nil, fmt.Errorf("export JWK private key: %w", err)
	}

	rsaKey, ok := rawKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("unsupported private key type %T, want RSA", rawKey)
	}
	return rsaKey, nil
}

// Signer builds the short-lived RS256 client assertion presented to the
// token endpoint instead of a client secret.
type Signer struct {
	clientID string
	key      *rsa.PrivateKey
}

func NewSigner(clientID string, key *rsa.PrivateKey) *Signer {
	return &Signer{clientID: clientID, key: key}
}

// Sign produces a compact JWS asserting the client's identity to the
// given token endpoint. The jti is random per call and not deduplicated;
// expiry is iat + 300s as the authorization server requires. A signing
// failure is fatal for the current exchange attempt: the key will not fix
// itself, so callers must not retry.
func (s *Signer) Sign(audience string) (string, error) {
	if s.clientID == "" || audience == "" {
		return "", fmt.Errorf("clientId and audience are required")
	}

	jti, err := util.GenerateJTI()
	if err != nil {
		return "", fmt.Errorf("generate jti: %w", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.clientID,
		Subject:   s.clientID,
		Audience:  jwt.ClaimStrings{audience},
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(config.ClientAssertionTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign client assertion: %w", err)
	}
	return signed, nil
}
