// Package geoip resolves client IP addresses to approximate coordinates.
// A miss resolves to (0,0), which callers must treat as "unknown", never
// as a real position.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Coords is a resolved position.
type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Resolver maps an IP address to coordinates.
type Resolver interface {
	Lookup(ctx context.Context, ip string) Coords
}

// HTTPResolver queries an ip-api.com style endpoint:
// GET {endpoint}/{ip} -> {"status":"success","lat":..,"lon":..}.
type HTTPResolver struct {
	endpoint string
	client   *http.Client
	log      *zerolog.Logger
}

// NewHTTPResolver builds a resolver against the given endpoint.
func NewHTTPResolver(endpoint string, logger *zerolog.Logger) *HTTPResolver {
	return &HTTPResolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 3 * time.Second},
		log:      logger,
	}
}

// Lookup resolves the IP. Any failure, HTTP or decode, is logged and
// reported as (0,0).
func (r *HTTPResolver) Lookup(ctx context.Context, ip string) Coords {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", r.endpoint, ip), nil)
	if err != nil {
		r.log.Warn().Err(err).Str("ip", ip).Msg("geoip request build failed")
		return Coords{}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warn().Err(err).Str("ip", ip).Msg("geoip lookup failed")
		return Coords{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Warn().Int("status", resp.StatusCode).Str("ip", ip).Msg("geoip lookup rejected")
		return Coords{}
	}

	var body struct {
		Status string  `json:"status"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		r.log.Warn().Err(err).Str("ip", ip).Msg("geoip decode failed")
		return Coords{}
	}
	if body.Status != "success" {
		return Coords{}
	}

	return Coords{Lat: body.Lat, Lon: body.Lon}
}
