package httpserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameforum/internal/blob"
	"gameforum/internal/config"
	"gameforum/internal/httpserver"
	"gameforum/internal/security"
	"gameforum/internal/ws"
)

type apiClient struct {
	t      *testing.T
	srv    *httptest.Server
	tokens map[string]string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:   "test-secret",
		CORSOrigins: []string{"http://localhost:8081"},
	}
	router := httpserver.NewRouter(cfg, blob.NewMemory(), ws.NewHub(),
		security.NewTokenService(cfg.JWTSecret, time.Hour),
		security.NewPasswordHasher(4))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &apiClient{t: t, srv: srv, tokens: map[string]string{}}
}

func (c *apiClient) do(as, method, path string, body any) (*http.Response, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.srv.URL+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+c.tokens[as])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

// signup registers and logs in a user, caching the bearer token under name.
// Returns the user ID.
func (c *apiClient) signup(name string) string {
	c.t.Helper()
	email := name + "@example.com"
	resp, user := c.do("", http.MethodPost, "/api/auth/register", map[string]any{
		"username": name,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)

	resp, login := c.do("", http.MethodPost, "/api/auth/login", map[string]any{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	c.tokens[name] = login["access_token"].(string)
	return user["id"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	c := newAPI(t)
	resp, body := c.do("", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestAuthRequired(t *testing.T) {
	c := newAPI(t)
	resp, _ := c.do("", http.MethodGet, "/api/users/", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterLoginMe(t *testing.T) {
	c := newAPI(t)
	id := c.signup("alice")

	resp, me := c.do("alice", http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, me["id"])
	assert.Equal(t, "alice", me["username"])
	// The hash never leaves the API.
	assert.Empty(t, me["passwordHash"])
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	c := newAPI(t)
	c.signup("alice")

	resp, _ := c.do("", http.MethodPost, "/api/auth/register", map[string]any{
		"username": "alice",
		"email":    "other@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFriendRequestFlow(t *testing.T) {
	c := newAPI(t)
	aliceID := c.signup("alice")
	bobID := c.signup("bob")

	resp, _ := c.do("alice", http.MethodPost, "/api/friends/requests", map[string]any{
		"targetId": bobID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = c.do("bob", http.MethodPost, "/api/friends/requests/"+aliceID+"/accept", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, c.srv.URL+"/api/friends/", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+c.tokens["alice"])
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()

	var friends []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&friends))
	require.Len(t, friends, 1)
	assert.Equal(t, bobID, friends[0]["id"])
}

func TestBlockedUserCannotOpenConversation(t *testing.T) {
	c := newAPI(t)
	aliceID := c.signup("alice")
	bobID := c.signup("bob")

	resp, _ := c.do("bob", http.MethodPost, "/api/users/"+aliceID+"/block", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.do("alice", http.MethodPost, "/api/conversations/", map[string]any{
		"userId": bobID,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestConversationFlow(t *testing.T) {
	c := newAPI(t)
	c.signup("alice")
	bobID := c.signup("bob")

	resp, conv := c.do("alice", http.MethodPost, "/api/conversations/", map[string]any{
		"userId": bobID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	convID := conv["id"].(string)

	resp, msg := c.do("alice", http.MethodPost, "/api/conversations/"+convID+"/messages", map[string]any{
		"content": "hello bob",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	msgID := msg["id"].(string)

	resp, count := c.do("bob", http.MethodGet, "/api/conversations/unread-count", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), count["count"])

	// Only the sender may edit.
	resp, _ = c.do("bob", http.MethodPatch, "/api/conversations/"+convID+"/messages/"+msgID, map[string]any{
		"content": "edited",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = c.do("bob", http.MethodPost, "/api/conversations/"+convID+"/read", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, count = c.do("bob", http.MethodGet, "/api/conversations/unread-count", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), count["count"])
}

func TestForumFlow(t *testing.T) {
	c := newAPI(t)
	c.signup("alice")
	c.signup("bob")

	resp, topic := c.do("alice", http.MethodPost, "/api/forums/chess/pc/topics/", map[string]any{
		"title":   "openings",
		"content": "e4 or d4?",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	topicID := topic["id"].(string)
	base := fmt.Sprintf("/api/forums/chess/pc/topics/%s", topicID)

	resp, _ = c.do("bob", http.MethodPost, base+"/replies", map[string]any{
		"content": "e4, always",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, count := c.do("alice", http.MethodGet, base+"/unread-count", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), count["count"])

	resp, _ = c.do("alice", http.MethodPost, base+"/read", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, count = c.do("alice", http.MethodGet, base+"/unread-count", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), count["count"])

	// Plain users cannot moderate visibility.
	resp, _ = c.do("bob", http.MethodPost, base+"/status", map[string]any{
		"status": "offline",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Deleting someone else's topic is refused.
	resp, _ = c.do("bob", http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = c.do("alice", http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
