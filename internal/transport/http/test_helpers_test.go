package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nearchat/nearchat-server/internal/auth"
	"github.com/nearchat/nearchat-server/internal/config"
	"github.com/nearchat/nearchat-server/internal/core"
	"github.com/nearchat/nearchat-server/internal/geoip"
	"github.com/nearchat/nearchat-server/internal/log"
	"github.com/nearchat/nearchat-server/internal/store"
	"github.com/nearchat/nearchat-server/internal/store/sqlite"
)

// stubResolver returns fixed coordinates for every lookup.
type stubResolver struct {
	coords geoip.Coords
}

func (s stubResolver) Lookup(context.Context, string) geoip.Coords {
	return s.coords
}

type testEnv struct {
	srv    *httptest.Server
	store  store.Store
	router *core.Router
	auth   *auth.Service
}

// newTestEnv spins up the full HTTP server over an in-memory store, with
// no propagation bridge attached: events fan out to this process only.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := log.Nop()
	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "nearchat-test",
		Audience: "nearchat-clients",
		TTL:      time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	registry := core.NewRegistry(logger)
	rooms := core.NewDirectory(registry, logger)
	router := core.NewRouter(registry, rooms, nil, 5, logger)

	cfg := config.Config{
		Addr:         "127.0.0.1:0",
		RoomRadiusKm: 5,
	}
	server := NewServer(router, authService, st, stubResolver{coords: geoip.Coords{Lat: 48.85, Lon: 2.35}}, cfg, logger)

	srv := httptest.NewServer(server.Handler)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, store: st, router: router, auth: authService}
}

// register creates a user through the API and returns its token and id.
func (e *testEnv) register(t *testing.T, email string) (token, userID string) {
	t.Helper()

	status, body := e.request(t, stdhttp.MethodPost, "/api/register", "", map[string]any{
		"email":    email,
		"password": "secret123",
	})
	if status != stdhttp.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, status, body)
	}

	var resp AuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode auth response: %v", err)
	}
	return resp.Token, resp.User.ID
}

// request performs one JSON request against the test server.
func (e *testEnv) request(t *testing.T, method, path, token string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := stdhttp.NewRequest(method, e.srv.URL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp.StatusCode, raw
}
