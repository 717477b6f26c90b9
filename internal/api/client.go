// Package api is a thin typed client for the Emberveil account API:
// login, world/zone/character listing and creation, and usage lookup.
// It does no retries, caching or resource mapping.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// World is a named game universe containing zones and characters.
type World struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Zone is a location within a world; the unit of chat scoping.
type Zone struct {
	ID          string `json:"id"`
	WorldID     string `json:"world_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Character is a persona acting within a world.
type Character struct {
	ID      string `json:"id"`
	WorldID string `json:"world_id"`
	Name    string `json:"name"`
	IsAI    bool   `json:"is_ai,omitempty"`
}

// Usage is the account's AI interaction quota.
type Usage struct {
	InteractionsUsed  int  `json:"interactions_used"`
	InteractionsLimit int  `json:"interactions_limit"`
	Premium           bool `json:"premium,omitempty"`
}

// Client makes REST calls to the Emberveil backend.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// New creates a client targeting the given base URL (e.g.
// "https://api.emberveil.net"). The token may be empty for calls that do
// not require auth, such as Login.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.post(ctx, "/api/auth/login", body, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("login succeeded but no token returned")
	}
	return out.AccessToken, nil
}

// Worlds fetches the available worlds.
func (c *Client) Worlds(ctx context.Context) ([]World, error) {
	var out []World
	if err := c.get(ctx, "/api/worlds", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Zones fetches the zones of one world.
func (c *Client) Zones(ctx context.Context, worldID string) ([]Zone, error) {
	var out []Zone
	if err := c.get(ctx, "/api/worlds/"+url.PathEscape(worldID)+"/zones", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Characters fetches the account's characters in one world.
func (c *Client) Characters(ctx context.Context, worldID string) ([]Character, error) {
	var out []Character
	if err := c.get(ctx, "/api/characters?world_id="+url.QueryEscape(worldID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCharacter creates a new character in a world.
func (c *Client) CreateCharacter(ctx context.Context, worldID, name string) (*Character, error) {
	body := map[string]string{"world_id": worldID, "name": name}
	var out Character
	if err := c.post(ctx, "/api/characters", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Usage fetches the account's AI interaction quota.
func (c *Client) Usage(ctx context.Context) (*Usage, error) {
	var out Usage
	if err := c.get(ctx, "/api/usage", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setAuth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return apiError("GET", path, resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return apiError("POST", path, resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// apiError surfaces a non-2xx response, preferring the backend's
// {"detail": ...} error body when present.
func apiError(method, path string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var detail struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &detail) == nil && detail.Detail != "" {
		return fmt.Errorf("%s %s: %s (%d)", method, path, detail.Detail, resp.StatusCode)
	}
	return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, bytes.TrimSpace(body))
}
