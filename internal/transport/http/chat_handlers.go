package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nearchat/nearchat-server/internal/core"
	"github.com/nearchat/nearchat-server/internal/store"
)

const defaultMessageLimit = 20

// ChatHandlers provides HTTP handlers for message endpoints. Every
// mutation flows through the store first, then onto the shared channel;
// live delivery happens when the subscription replays the event.
type ChatHandlers struct {
	store  store.Store
	router *core.Router
	log    *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance.
func NewChatHandlers(st store.Store, router *core.Router, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{
		store:  st,
		router: router,
		log:    logger,
	}
}

// SendMessageRequest represents the send message request body.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=4096"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID        string `json:"id"`
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ListMessages returns the newest messages for a room.
// GET /api/rooms/:id/messages?limit=..
func (h *ChatHandlers) ListMessages(c *gin.Context) {
	limit := defaultMessageLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	messages, err := h.store.ListRecentMessages(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", c.Param("id")).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, messageResponse(msg))
	}
	c.JSON(http.StatusOK, response)
}

// SendMessage persists a message and publishes a chat event.
// POST /api/rooms/:id/messages
func (h *ChatHandlers) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid send message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "content is required"})
		return
	}

	roomID := c.Param("id")
	if _, err := h.store.GetRoomByID(c.Request.Context(), roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to load room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	msg, err := h.store.CreateMessage(c.Request.Context(), roomID, userID, req.Content)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to create message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.router.Dispatch(c.Request.Context(), core.Event{
		Kind:    core.EventMessageCreated,
		Message: messagePayload(msg),
	})

	c.JSON(http.StatusCreated, messageResponse(msg))
}

// EditMessage updates a message's text and publishes a chat:edit event.
// PUT /api/messages/:id
func (h *ChatHandlers) EditMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid edit message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "content is required"})
		return
	}

	existing, err := h.store.GetMessageByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found"})
			return
		}
		h.log.Error().Err(err).Str("message_id", c.Param("id")).Msg("failed to load message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if existing.UserID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not the author"})
		return
	}

	msg, err := h.store.UpdateMessageText(c.Request.Context(), existing.ID, req.Content)
	if err != nil {
		h.log.Error().Err(err).Str("message_id", existing.ID).Msg("failed to update message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.router.Dispatch(c.Request.Context(), core.Event{
		Kind:    core.EventMessageEdited,
		Message: messagePayload(msg),
	})

	c.JSON(http.StatusOK, messageResponse(msg))
}

// DeleteMessage removes a message and publishes a chat:delete event
// carrying only the ids.
// DELETE /api/messages/:id
func (h *ChatHandlers) DeleteMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	existing, err := h.store.GetMessageByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found"})
			return
		}
		h.log.Error().Err(err).Str("message_id", c.Param("id")).Msg("failed to load message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if existing.UserID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not the author"})
		return
	}

	if err := h.store.DeleteMessage(c.Request.Context(), existing.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Str("message_id", existing.ID).Msg("failed to delete message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.router.Dispatch(c.Request.Context(), core.Event{
		Kind:    core.EventMessageDeleted,
		Deleted: &core.MessageRef{ID: existing.ID, RoomID: existing.RoomID},
	})

	c.Status(http.StatusNoContent)
}

func messagePayload(msg *store.Message) *core.MessagePayload {
	return &core.MessagePayload{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		UserID:    msg.UserID,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.UpdatedAt,
	}
}

func messageResponse(msg *store.Message) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		UserID:    msg.UserID,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: msg.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
