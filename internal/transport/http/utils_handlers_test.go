package http

import (
	"encoding/json"
	stdhttp "net/http"
	"testing"
)

func TestGeoIP(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "walker@example.com")

	status, body := env.request(t, stdhttp.MethodGet, "/api/geoip?ip=203.0.113.9", token, nil)
	if status != stdhttp.StatusOK {
		t.Fatalf("geoip: status %d, body %s", status, body)
	}

	var resp GeoIPResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode geoip response: %v", err)
	}
	if resp.IP != "203.0.113.9" {
		t.Fatalf("unexpected ip: %q", resp.IP)
	}
	if resp.Geo.Lat != 48.85 || resp.Geo.Lon != 2.35 {
		t.Fatalf("unexpected coords: %+v", resp.Geo)
	}
}

func TestGeoIPRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.request(t, stdhttp.MethodGet, "/api/geoip?ip=203.0.113.9", "", nil)
	if status != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
}
