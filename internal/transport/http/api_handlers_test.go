package http

import (
	"encoding/json"
	stdhttp "net/http"
	"testing"
)

func TestRegisterLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	token, userID := env.register(t, "alice@example.com")
	if token == "" || userID == "" {
		t.Fatal("registration must return a token and user id")
	}

	// Duplicate registration conflicts.
	status, _ := env.request(t, stdhttp.MethodPost, "/api/register", "", map[string]any{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if status != stdhttp.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", status)
	}

	status, body := env.request(t, stdhttp.MethodPost, "/api/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if status != stdhttp.StatusOK {
		t.Fatalf("login: status %d, body %s", status, body)
	}
	var resp AuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.User.ID != userID || resp.User.Emoji == "" {
		t.Fatalf("unexpected login response: %+v", resp.User)
	}

	status, _ = env.request(t, stdhttp.MethodPost, "/api/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if status != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", status)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"missing password", map[string]any{"email": "bob@example.com"}},
		{"short password", map[string]any{"email": "bob@example.com", "password": "oops"}},
		{"malformed email", map[string]any{"email": "not-an-email", "password": "secret123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := env.request(t, stdhttp.MethodPost, "/api/register", "", tt.payload)
			if status != stdhttp.StatusBadRequest {
				t.Fatalf("expected 400, got %d", status)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.register(t, "carol@example.com")

	status, _ := env.request(t, stdhttp.MethodGet, "/api/me", "", nil)
	if status != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	status, _ = env.request(t, stdhttp.MethodGet, "/api/me", "not-a-token", nil)
	if status != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 with a bad token, got %d", status)
	}

	status, body := env.request(t, stdhttp.MethodGet, "/api/me", token, nil)
	if status != stdhttp.StatusOK {
		t.Fatalf("me: status %d, body %s", status, body)
	}
	var me UserResponse
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if me.ID != userID || me.Email != "carol@example.com" {
		t.Fatalf("unexpected me response: %+v", me)
	}
}

func TestPublicProfile(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "dave@example.com")
	_, otherID := env.register(t, "erin@example.com")

	status, body := env.request(t, stdhttp.MethodGet, "/api/people/"+otherID, token, nil)
	if status != stdhttp.StatusOK {
		t.Fatalf("profile: status %d, body %s", status, body)
	}
	var profile ProfileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.ID != otherID || profile.Emoji == "" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	status, _ = env.request(t, stdhttp.MethodGet, "/api/people/no-such-user", token, nil)
	if status != stdhttp.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", status)
	}
}
