package arena

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"nexalisServer/coordinator"
	"nexalisServer/game"
)

type memTokenCache struct {
	mu    sync.Mutex
	token string
}

func (c *memTokenCache) StoreAuthToken(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	return nil
}

func (c *memTokenCache) GetAuthToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

func testClient(baseURL string, tokens TokenCache) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		tokens:  tokens,
	}
}

func TestLoginStoresTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "alice" || body["password"] != "hunter2" {
			t.Errorf("Login body = %v", body)
		}
		json.NewEncoder(w).Encode(authResponse{
			Success:      true,
			Token:        "tok-1",
			RefreshToken: "ref-1",
			User:         &User{ID: "u1", Username: "alice"},
		})
	}))
	defer server.Close()

	cache := &memTokenCache{}
	client := testClient(server.URL, cache)

	user, err := client.Login(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("User = %+v", user)
	}
	if cache.token != "tok-1" {
		t.Errorf("Cached token = %q, want tok-1", cache.token)
	}
}

func TestLoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(authResponse{Success: false, Error: "bad credentials"})
	}))
	defer server.Close()

	client := testClient(server.URL, nil)
	if _, err := client.Login(context.Background(), "alice", "wrong"); err == nil {
		t.Fatal("Rejected login returned no error")
	}
}

func TestSessionCallsCarryBearer(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(sessionResponse{Success: true})
	}))
	defer server.Close()

	client := testClient(server.URL, nil)
	client.storeTokens(context.Background(), "tok-xyz", "ref-xyz")

	if err := client.StartGameSession(context.Background(), game.GameTypeCrash); err != nil {
		t.Fatalf("StartGameSession failed: %v", err)
	}
	if gotAuth != "Bearer tok-xyz" {
		t.Errorf("Authorization = %q, want Bearer tok-xyz", gotAuth)
	}
	if gotBody["gameType"] != "crash" {
		t.Errorf("Body = %v", gotBody)
	}

	if err := client.EndGameSession(context.Background(), coordinator.SessionResult{
		PlayerID:      "alice",
		GameType:      game.GameTypeCrash,
		BalanceChange: -12.5,
	}); err != nil {
		t.Fatalf("EndGameSession failed: %v", err)
	}
	if gotBody["playerId"] != "alice" || gotBody["balanceChange"] != -12.5 {
		t.Errorf("End body = %v", gotBody)
	}
}

func TestUnauthorizedTriggersRefresh(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		mu.Lock()
		calls = append(calls, r.URL.Path+" "+auth)
		mu.Unlock()

		switch r.URL.Path {
		case "/games/session/start":
			if auth != "Bearer tok-new" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(sessionResponse{Success: true})
		case "/auth/refresh":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["refreshToken"] != "ref-old" {
				json.NewEncoder(w).Encode(authResponse{Success: false, Error: "bad refresh token"})
				return
			}
			json.NewEncoder(w).Encode(authResponse{Success: true, Token: "tok-new", RefreshToken: "ref-new"})
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := testClient(server.URL, nil)
	client.storeTokens(context.Background(), "tok-old", "ref-old")

	if err := client.StartGameSession(context.Background(), game.GameTypeRoulette); err != nil {
		t.Fatalf("StartGameSession failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{
		"/games/session/start Bearer tok-old",
		"/auth/refresh Bearer tok-old",
		"/games/session/start Bearer tok-new",
	}
	if len(calls) != len(want) {
		t.Fatalf("Calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("Call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestUnauthorizedWithoutRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := testClient(server.URL, nil)
	if err := client.StartGameSession(context.Background(), game.GameTypeCrash); err == nil {
		t.Fatal("Unauthorized call without a refresh token returned no error")
	}
}

func TestSessionRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sessionResponse{Success: false, Error: "session limit reached"})
	}))
	defer server.Close()

	client := testClient(server.URL, nil)
	if err := client.EndGameSession(context.Background(), coordinator.SessionResult{PlayerID: "alice"}); err == nil {
		t.Fatal("Rejected session end returned no error")
	}
}

func TestLoadToken(t *testing.T) {
	cache := &memTokenCache{token: "cached-tok"}
	client := testClient("http://unused", cache)

	client.LoadToken(context.Background())

	client.mu.RLock()
	defer client.mu.RUnlock()
	if client.authToken != "cached-tok" {
		t.Errorf("Loaded token = %q, want cached-tok", client.authToken)
	}
}

func TestLogoutClearsTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(authResponse{Success: true})
	}))
	defer server.Close()

	cache := &memTokenCache{}
	client := testClient(server.URL, cache)
	client.storeTokens(context.Background(), "tok-1", "ref-1")

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	client.mu.RLock()
	token, refresh := client.authToken, client.refreshToken
	client.mu.RUnlock()
	if token != "" || refresh != "" {
		t.Errorf("Tokens survived logout: %q / %q", token, refresh)
	}
	if cache.token != "" {
		t.Errorf("Cached token survived logout: %q", cache.token)
	}
}
