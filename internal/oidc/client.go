package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const clientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// Stage names the step of the exchange an error belongs to. Each failure
// is terminal for the attempt; authorization codes are single-use and are
// never re-submitted.
type Stage string

const (
	StageDiscovery Stage = "discovery"
	StageAssertion Stage = "assertion"
	StageToken     Stage = "token"
	StageUserInfo  Stage = "userinfo"
)

// ExchangeError reports which stage failed and, for upstream rejections,
// the status and body the identity provider returned.
type ExchangeError struct {
	Stage  Stage
	Status int
	Body   string
	Err    error
}

func (e *ExchangeError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("token exchange failed at %s stage: upstream returned %d", e.Stage, e.Status)
	}
	return fmt.Sprintf("token exchange failed at %s stage: %v", e.Stage, e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a successful exchange. UserInfo is best-effort
// and may be nil when the userinfo call failed; the tokens are the
// essential artifact.
type Result struct {
	AccessToken   string         `json:"access_token"`
	IDToken       string         `json:"id_token,omitempty"`
	IDTokenClaims map[string]any `json:"id_token_claims,omitempty"`
	UserInfo      map[string]any `json:"userInfo,omitempty"`
}

type discoveryDocument struct {
	TokenEndpoint    string `json:"token_endpoint"`
	UserInfoEndpoint string `json:"userinfo_endpoint"`
}

// Client exchanges authorization codes for tokens using a signed client
// assertion. The provider's discovery document is fetched once and cached
// for the process lifetime.
type Client struct {
	issuer      string
	clientID    string
	redirectURI string
	signer      *Signer
	httpClient  *http.Client

	mu        sync.Mutex
	discovery *discoveryDocument
}

func NewClient(issuer, clientID, redirectURI string, signer *Signer, timeout time.Duration) *Client {
	return &Client{
		issuer:      strings.TrimRight(issuer, "/"),
		clientID:    clientID,
		redirectURI: redirectURI,
		signer:      signer,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) discover(ctx context.Context) (*discoveryDocument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.discovery != nil {
		return c.discovery, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.issuer+"/.well-known/openid-configuration", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery returned status %d", resp.StatusCode)
	}

	var doc discoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode discovery document: %w", err)
	}
	if doc.TokenEndpoint == "" {
		return nil, fmt.Errorf("discovery document has no token_endpoint")
	}

	c.discovery = &doc
	return c.discovery, nil
}

// Exchange swaps one authorization code for tokens. A missing code fails
// immediately with no network call; an assertion failure likewise. A
// non-2xx token response is terminal and carries the upstream status and
// body. Userinfo failure is non-fatal: the result degrades to tokens
// without profile data.
func (c *Client) Exchange(ctx context.Context, code string) (*Result, error) {
	if code == "" {
		return nil, &ExchangeError{Stage: StageToken, Err: fmt.Errorf("missing authorization code")}
	}

	disc, err := c.discover(ctx)
	if err != nil {
		return nil, &ExchangeError{Stage: StageDiscovery, Err: err}
	}

	assertion, err := c.signer.Sign(disc.TokenEndpoint)
	if err != nil {
		return nil, &ExchangeError{Stage: StageAssertion, Err: err}
	}

	form := url.Values{
		"grant_type":            {"authorization_code"},
		"code":                  {code},
		"redirect_uri":          {c.redirectURI},
		"client_id":             {c.clientID},
		"client_assertion_type": {clientAssertionType},
		"client_assertion":      {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, disc.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &ExchangeError{Stage: StageToken, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{Stage: StageToken, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExchangeError{Stage: StageToken, Err: fmt.Errorf("read token response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Int("status", resp.StatusCode).Msg("token exchange rejected by identity provider")
		return nil, &ExchangeError{Stage: StageToken, Status: resp.StatusCode, Body: string(body)}
	}

	var tokens struct {
		AccessToken string `json:"access_token"`
		IDToken     string `json:"id_token"`
	}
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, &ExchangeError{Stage: StageToken, Err: fmt.Errorf("decode token response: %w", err)}
	}

	result := &Result{
		AccessToken: tokens.AccessToken,
		IDToken:     tokens.IDToken,
	}
	if claims, ok := DecodeJWSPayload(tokens.IDToken); ok {
		result.IDTokenClaims = claims
	}

	if tokens.AccessToken != "" && disc.UserInfoEndpoint != "" {
		result.UserInfo = c.fetchUserInfo(ctx, disc.UserInfoEndpoint, tokens.AccessToken)
	}

	return result, nil
}

// fetchUserInfo is best-effort profile enrichment. The response may be
// plain JSON or a signed JWS depending on the client's registered
// userinfo_response_type; either is accepted. Any failure returns nil.
func (c *Client) fetchUserInfo(ctx context.Context, endpoint, accessToken string) map[string]any {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Warn().Err(err).Msg("userinfo request build failed")
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("userinfo request failed")
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn().Err(err).Msg("userinfo response read failed")
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("userinfo request rejected")
		return nil
	}

	var info map[string]any
	if err := json.Unmarshal(body, &info); err == nil {
		return info
	}
	if claims, ok := DecodeJWSPayload(strings.TrimSpace(string(body))); ok {
		return claims
	}

	log.Warn().Msg("userinfo response neither JSON nor decodable JWS")
	return map[string]any{"raw": string(body)}
}
