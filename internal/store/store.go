package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered account. Emoji and background color form
// the generated avatar.
type User struct {
	ID              string
	Email           string
	PasswordHash    string
	Emoji           string
	BackgroundColor string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Room represents a persisted geolocated chat room.
type Room struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message represents a persisted chat message.
type Message struct {
	ID        string
	RoomID    string
	UserID    string
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocationLog records a resolved position for a user.
type LocationLog struct {
	ID        string
	UserID    string
	Latitude  float64
	Longitude float64
	IP        string
	CreatedAt time.Time
}

// OneTimeCode is a short-lived single-use verification code.
type OneTimeCode struct {
	ID        string
	UserID    string
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a user with a hashed password and generated avatar.
	CreateUser(ctx context.Context, email, passwordHash, emoji, backgroundColor string) (*User, error)

	// GetUserByID retrieves a user by id.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// RoomStore handles room persistence.
type RoomStore interface {
	// CreateRoom creates a room at the given coordinates.
	CreateRoom(ctx context.Context, name string, latitude, longitude float64, ownerID string) (*Room, error)

	// GetRoomByID retrieves a room by id.
	GetRoomByID(ctx context.Context, id string) (*Room, error)

	// ListRoomsInBounds lists rooms inside a latitude/longitude bounding box.
	ListRoomsInBounds(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]*Room, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a new message.
	CreateMessage(ctx context.Context, roomID, userID, text string) (*Message, error)

	// GetMessageByID retrieves a message by id.
	GetMessageByID(ctx context.Context, id string) (*Message, error)

	// UpdateMessageText replaces the text of an existing message.
	UpdateMessageText(ctx context.Context, id, text string) (*Message, error)

	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, id string) error

	// ListRecentMessages returns up to limit newest messages for a room,
	// newest first.
	ListRecentMessages(ctx context.Context, roomID string, limit int) ([]*Message, error)
}

// LocationStore handles location log persistence.
type LocationStore interface {
	// SaveLocationLog records a resolved position for a user.
	SaveLocationLog(ctx context.Context, userID string, latitude, longitude float64, ip string) (*LocationLog, error)
}

// CodeStore handles one-time code persistence.
type CodeStore interface {
	// CreateCode stores a fresh one-time code for a user.
	CreateCode(ctx context.Context, userID, code string, expiresAt time.Time) (*OneTimeCode, error)

	// GetCode retrieves an unused, unexpired code for a user.
	GetCode(ctx context.Context, userID, code string) (*OneTimeCode, error)

	// MarkCodeUsed consumes a code.
	MarkCodeUsed(ctx context.Context, id string) error
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore
	LocationStore
	CodeStore

	// Close closes the underlying database connection.
	Close() error
}
