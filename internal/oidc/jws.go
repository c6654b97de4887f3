package oidc

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// DecodeJWSPayload extracts the claims of a compact JWS without verifying
// the signature. Used for id_token claims and for userinfo responses that
// arrive signed; verification is the authorization server's concern in
// this exchange, the payload is informational only.
func DecodeJWSPayload(token string) (map[string]any, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, false
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, false
	}

	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, false
	}
	return claims, true
}
