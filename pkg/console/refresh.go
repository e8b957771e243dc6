package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RefreshStrategy performs one silent credential renewal. It either returns a
// new TokenSet or fails; the pipeline never calls it more than once per
// logical request.
type RefreshStrategy interface {
	Refresh(ctx context.Context, refreshToken string) (TokenSet, error)
}

// TokenEndpointRefresh exchanges a refresh token against an OAuth-style token
// endpoint using a form-encoded grant_type=refresh_token request.
type TokenEndpointRefresh struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

func (t *TokenEndpointRefresh) Refresh(ctx context.Context, refreshToken string) (TokenSet, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	if t.ClientID != "" {
		form.Set("client_id", t.ClientID)
	}
	if t.ClientSecret != "" {
		form.Set("client_secret", t.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return TokenSet{}, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client().Do(req)
	if err != nil {
		return TokenSet{}, fmt.Errorf("token refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return TokenSet{}, fmt.Errorf("token refresh failed: %d - %s", resp.StatusCode, string(body))
	}

	var tokens TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return TokenSet{}, fmt.Errorf("decode refresh response: %w", err)
	}
	return tokens, nil
}

func (t *TokenEndpointRefresh) client() *http.Client {
	if t.HTTPClient != nil {
		return t.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// AuthServiceRefresh renews credentials against the console's own auth API
// (POST /api/v1/auth/refresh with a JSON body).
type AuthServiceRefresh struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (a *AuthServiceRefresh) Refresh(ctx context.Context, refreshToken string) (TokenSet, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return TokenSet{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.BaseURL+"/api/v1/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return TokenSet{}, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client().Do(req)
	if err != nil {
		return TokenSet{}, fmt.Errorf("token refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return TokenSet{}, fmt.Errorf("token refresh failed: %d", resp.StatusCode)
	}

	var tokens TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return TokenSet{}, fmt.Errorf("decode refresh response: %w", err)
	}
	return tokens, nil
}

func (a *AuthServiceRefresh) client() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
