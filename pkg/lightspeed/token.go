package lightspeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/taployalty/lightspeed-sync/internal/metrics"
)

// CredentialUpdater persists a refreshed token pair for a merchant.
type CredentialUpdater interface {
	UpdateTokens(ctx context.Context, merchantID, accessToken, refreshToken string, expiresIn int) error
}

// TokenRefresher exchanges a refresh token for a new access token using the
// OAuth refresh_token grant and persists the result.
type TokenRefresher struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	store        CredentialUpdater
}

// NewTokenRefresher creates a token refresher against the given token endpoint.
func NewTokenRefresher(tokenURL, clientID, clientSecret string, httpClient *http.Client, store CredentialUpdater) *TokenRefresher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &TokenRefresher{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		store:        store,
	}
}

// Refresh performs the refresh grant for merchantID and returns the new
// access token. The stored refresh token is rotated only when the provider
// returns a replacement. No retry happens inside this method.
func (r *TokenRefresher) Refresh(ctx context.Context, merchantID, refreshToken string) (string, error) {
	form := url.Values{}
	form.Set("client_id", r.clientID)
	form.Set("client_secret", r.clientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return "", readTokenError(resp)
	}

	tr, err := decodeTokenResponse(resp.Body)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return "", err
	}

	// Keep the old refresh token unless the provider rotated it.
	newRefreshToken := tr.RefreshToken
	if newRefreshToken == "" {
		newRefreshToken = refreshToken
	}

	if err := r.store.UpdateTokens(ctx, merchantID, tr.AccessToken, newRefreshToken, tr.ExpiresIn); err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("persist refreshed tokens: %w", err)
	}

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	return tr.AccessToken, nil
}

func readTokenError(resp *http.Response) error {
	limited := io.LimitReader(resp.Body, maxErrBodyBytes)

	b, err := io.ReadAll(limited)
	if err != nil {
		return fmt.Errorf("token endpoint returned %d and body read failed: %w", resp.StatusCode, err)
	}

	return fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(b))
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func decodeTokenResponse(r io.Reader) (tokenResponse, error) {
	var tr tokenResponse

	dec := json.NewDecoder(r)
	if err := dec.Decode(&tr); err != nil {
		return tokenResponse{}, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return tokenResponse{}, fmt.Errorf("token response missing access_token")
	}

	return tr, nil
}
