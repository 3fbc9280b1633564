package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"api-graph/internal/config"
)

// Authenticate obtains a bearer token from the host's client-credentials
// endpoint. The spec declares the response as form-encoded, but some servers
// return JSON; both are handled.
func Authenticate(ctx context.Context, client *http.Client, baseURL string, auth config.AuthConfig) (string, error) {
	form := url.Values{}
	form.Set("client_id", auth.ClientID)
	form.Set("client_secret", auth.ClientSecret)
	form.Set("grant_type", "client_credentials")

	endpoint := strings.TrimRight(baseURL, "/") + "/authenticate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create auth request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Token", auth.ERPToken)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read auth response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth failed: status %d", resp.StatusCode)
	}

	var token string
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var payload struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return "", fmt.Errorf("failed to parse auth response: %v", err)
		}
		token = payload.AccessToken
	} else {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return "", fmt.Errorf("failed to parse auth response: %v", err)
		}
		token = values.Get("access_token")
	}

	if token == "" {
		return "", fmt.Errorf("auth succeeded but access_token was not found in response")
	}
	return token, nil
}
