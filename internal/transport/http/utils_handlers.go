package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nearchat/nearchat-server/internal/geoip"
	"github.com/nearchat/nearchat-server/internal/store"
)

// UtilsHandlers provides miscellaneous endpoints.
type UtilsHandlers struct {
	store    store.Store
	resolver geoip.Resolver
	log      *zerolog.Logger
}

// NewUtilsHandlers creates a new utils handlers instance.
func NewUtilsHandlers(st store.Store, resolver geoip.Resolver, logger *zerolog.Logger) *UtilsHandlers {
	return &UtilsHandlers{
		store:    st,
		resolver: resolver,
		log:      logger,
	}
}

// GeoIPResponse represents the geoip lookup response body.
type GeoIPResponse struct {
	IP  string       `json:"ip"`
	Geo geoip.Coords `json:"geo"`
}

// GeoIP resolves the caller's IP to coordinates. (0,0) means unknown. A
// successful resolution is recorded as a location log for the user.
// GET /api/geoip?ip=..
func (h *UtilsHandlers) GeoIP(c *gin.Context) {
	ip := c.GetHeader("X-Forwarded-For")
	if ip == "" {
		ip = c.Query("ip")
	}
	if ip == "" {
		ip = c.ClientIP()
	}
	if ip == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no ip provided"})
		return
	}

	coords := h.resolver.Lookup(c.Request.Context(), ip)

	if coords != (geoip.Coords{}) {
		if userID, ok := currentUserID(c); ok {
			if _, err := h.store.SaveLocationLog(c.Request.Context(), userID, coords.Lat, coords.Lon, ip); err != nil {
				h.log.Warn().Err(err).Str("user_id", userID).Msg("failed to save location log")
			}
		}
	}

	c.JSON(http.StatusOK, GeoIPResponse{IP: ip, Geo: coords})
}
