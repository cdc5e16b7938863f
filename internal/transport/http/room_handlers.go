package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nearchat/nearchat-server/internal/core"
	"github.com/nearchat/nearchat-server/internal/store"
)

// degreesPerKm approximates one kilometer in degrees of latitude, used
// for the coarse bounding-box prefilter before exact distances.
const degreesPerKm = 1.0 / 111.12

// RoomHandlers provides HTTP handlers for room endpoints.
type RoomHandlers struct {
	store    store.Store
	router   *core.Router
	radiusKm float64
	log      *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance. radiusKm is the
// default discovery radius, shared with the room.created fan-out.
func NewRoomHandlers(st store.Store, router *core.Router, radiusKm float64, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		store:    st,
		router:   router,
		radiusKm: radiusKm,
		log:      logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Name      string   `json:"name" binding:"required,min=1,max=64"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Distance  *float64 `json:"distance,omitempty"`
	CreatedAt string   `json:"createdAt"`
}

// CreateRoom persists a room and announces it to nearby connections on
// every process via the propagation bridge.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name, latitude and longitude are required"})
		return
	}

	room, err := h.store.CreateRoom(c.Request.Context(), req.Name, *req.Latitude, *req.Longitude, userID)
	if err != nil {
		h.log.Error().Err(err).Str("room_name", req.Name).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.router.Dispatch(c.Request.Context(), core.Event{
		Kind: core.EventRoomCreated,
		Room: &core.RoomPayload{
			ID:        room.ID,
			Name:      room.Name,
			Latitude:  room.Latitude,
			Longitude: room.Longitude,
			CreatedAt: room.CreatedAt,
			UpdatedAt: room.UpdatedAt,
		},
	})

	h.log.Info().Str("room_id", room.ID).Str("owner_id", userID).Msg("room created")
	c.JSON(http.StatusCreated, roomResponse(room, nil))
}

// ListRooms returns rooms within a radius of the given coordinates, each
// with its exact distance in meters.
// GET /api/rooms?latitude=..&longitude=..&radius=..
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("latitude"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("longitude"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "latitude and longitude are required"})
		return
	}

	radiusKm := h.radiusKm
	if raw := c.Query("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "radius must be a positive number"})
			return
		}
		radiusKm = parsed
	}

	// Coarse degree box first, exact haversine below.
	delta := radiusKm * degreesPerKm
	rooms, err := h.store.ListRoomsInBounds(c.Request.Context(), lat-delta, lat+delta, lng-delta, lng+delta)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	radiusMeters := radiusKm * 1000
	response := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		distance := core.Distance(lat, lng, room.Latitude, room.Longitude)
		if distance >= radiusMeters {
			continue
		}
		response = append(response, roomResponse(room, &distance))
	}

	c.JSON(http.StatusOK, response)
}

func roomResponse(room *store.Room, distance *float64) RoomResponse {
	return RoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		Latitude:  room.Latitude,
		Longitude: room.Longitude,
		Distance:  distance,
		CreatedAt: room.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
