package arena

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"nexalisServer/config"
	"nexalisServer/coordinator"
	"nexalisServer/game"
)

// User is the Arena account attached to the session.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
}

// TokenCache persists the bearer token across restarts (Redis under
// the arena_auth_token key). Optional; a nil cache keeps tokens
// in memory only.
type TokenCache interface {
	StoreAuthToken(ctx context.Context, token string) error
	GetAuthToken(ctx context.Context) (string, error)
}

// Client talks to the external Arena auth/session API. One attempt per
// call; a 401 triggers a single token refresh and retry, any other
// failure is surfaced once to the caller.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenCache

	mu           sync.RWMutex
	authToken    string
	refreshToken string
}

// NewClient builds a client against the configured Arena base URL.
func NewClient(tokens TokenCache) *Client {
	return &Client{
		baseURL: config.ArenaBaseURL(),
		http:    &http.Client{Timeout: config.ArenaRequestTimeout},
		tokens:  tokens,
	}
}

// LoadToken restores a cached bearer token, if any.
func (c *Client) LoadToken(ctx context.Context) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.GetAuthToken(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load cached Arena token: %v", err)
		return
	}
	if token != "" {
		c.mu.Lock()
		c.authToken = token
		c.mu.Unlock()
		log.Println("✅ Restored cached Arena auth token")
	}
}

type authResponse struct {
	Success      bool   `json:"success"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
	Error        string `json:"error"`
}

// Login authenticates and stores the returned tokens.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	body := map[string]string{"username": username, "password": password}

	var resp authResponse
	if err := c.post(ctx, "/auth/login", body, &resp); err != nil {
		return nil, fmt.Errorf("arena login failed: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("arena login failed: %s", resp.Error)
	}

	c.storeTokens(ctx, resp.Token, resp.RefreshToken)
	return resp.User, nil
}

// Register creates an account and stores the returned tokens.
func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}

	var resp authResponse
	if err := c.post(ctx, "/auth/register", body, &resp); err != nil {
		return nil, fmt.Errorf("arena register failed: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("arena register failed: %s", resp.Error)
	}

	c.storeTokens(ctx, resp.Token, resp.RefreshToken)
	return resp.User, nil
}

// VerifyToken validates the current bearer token and returns its user.
func (c *Client) VerifyToken(ctx context.Context) (*User, error) {
	var resp authResponse
	if err := c.post(ctx, "/auth/verify", nil, &resp); err != nil {
		return nil, fmt.Errorf("arena token verification failed: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("arena token verification failed: %s", resp.Error)
	}
	return resp.User, nil
}

// Logout invalidates the session server-side and clears local tokens.
func (c *Client) Logout(ctx context.Context) error {
	var resp authResponse
	err := c.post(ctx, "/auth/logout", nil, &resp)

	c.storeTokens(ctx, "", "")
	if err != nil {
		return fmt.Errorf("arena logout failed: %w", err)
	}
	return nil
}

// RefreshAuthToken exchanges the refresh token for a new bearer token.
func (c *Client) RefreshAuthToken(ctx context.Context) error {
	c.mu.RLock()
	refresh := c.refreshToken
	c.mu.RUnlock()
	if refresh == "" {
		return fmt.Errorf("no refresh token")
	}

	var resp authResponse
	if err := c.post(ctx, "/auth/refresh", map[string]string{"refreshToken": refresh}, &resp); err != nil {
		return fmt.Errorf("arena token refresh failed: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("arena token refresh failed: %s", resp.Error)
	}

	c.storeTokens(ctx, resp.Token, resp.RefreshToken)
	return nil
}

type sessionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// StartGameSession opens a remote game session for the type.
func (c *Client) StartGameSession(ctx context.Context, gameType game.GameType) error {
	body := map[string]string{"gameType": string(gameType)}

	var resp sessionResponse
	if err := c.post(ctx, "/games/session/start", body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("arena rejected session start: %s", resp.Error)
	}
	return nil
}

// EndGameSession reports a finished session and its balance change.
func (c *Client) EndGameSession(ctx context.Context, result coordinator.SessionResult) error {
	var resp sessionResponse
	if err := c.post(ctx, "/games/session/end", result, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("arena rejected session end: %s", resp.Error)
	}
	return nil
}

func (c *Client) storeTokens(ctx context.Context, token, refresh string) {
	c.mu.Lock()
	c.authToken = token
	c.refreshToken = refresh
	c.mu.Unlock()

	if c.tokens != nil {
		if err := c.tokens.StoreAuthToken(ctx, token); err != nil {
			log.Printf("⚠️  Failed to cache Arena token: %v", err)
		}
	}
}

// post sends a JSON request with the bearer token. A 401 response
// triggers one token refresh and one retry.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	status, err := c.doPost(ctx, path, body, out)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		if refreshErr := c.RefreshAuthToken(ctx); refreshErr != nil {
			return fmt.Errorf("unauthorized and refresh failed: %w", refreshErr)
		}
		status, err = c.doPost(ctx, path, body, out)
		if err != nil {
			return err
		}
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("arena API returned status %d", status)
	}
	return nil
}

func (c *Client) doPost(ctx context.Context, path string, body, out interface{}) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.mu.RLock()
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("arena request failed: %w", err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusUnauthorized {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode arena response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
