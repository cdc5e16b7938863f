package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nearchat/nearchat-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id               TEXT PRIMARY KEY,
	email            TEXT NOT NULL UNIQUE,
	password_hash    TEXT NOT NULL,
	emoji            TEXT NOT NULL,
	background_color TEXT NOT NULL,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS rooms (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	latitude   REAL NOT NULL,
	longitude  REAL NOT NULL,
	owner_id   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (owner_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	room_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	text       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (room_id) REFERENCES rooms(id),
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS location_logs (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	latitude   REAL NOT NULL,
	longitude  REAL NOT NULL,
	ip         TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS one_time_codes (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	code       TEXT NOT NULL,
	expires_at DATETIME NOT NULL,
	used       BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_rooms_coords ON rooms(latitude, longitude);
CREATE INDEX IF NOT EXISTS idx_location_logs_user ON location_logs(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_codes_user ON one_time_codes(user_id, code);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a user with a hashed password and generated avatar.
func (s *SQLiteStore) CreateUser(ctx context.Context, email, passwordHash, emoji, backgroundColor string) (*store.User, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO users (id, email, password_hash, emoji, background_color)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, email, passwordHash, emoji, backgroundColor); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by id.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*store.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, password_hash, emoji, background_color, created_at, updated_at
		FROM users
		WHERE %s = ?
	`, column)

	var user store.User
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Emoji,
		&user.BackgroundColor,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// ==== RoomStore implementation ====

// CreateRoom creates a room at the given coordinates.
func (s *SQLiteStore) CreateRoom(ctx context.Context, name string, latitude, longitude float64, ownerID string) (*store.Room, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO rooms (id, name, latitude, longitude, owner_id)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, name, latitude, longitude, ownerID); err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}

	return s.GetRoomByID(ctx, id)
}

// GetRoomByID retrieves a room by id.
func (s *SQLiteStore) GetRoomByID(ctx context.Context, id string) (*store.Room, error) {
	query := `
		SELECT id, name, latitude, longitude, owner_id, created_at, updated_at
		FROM rooms
		WHERE id = ?
	`
	var room store.Room
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&room.ID,
		&room.Name,
		&room.Latitude,
		&room.Longitude,
		&room.OwnerID,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query room: %w", err)
	}

	return &room, nil
}

// ListRoomsInBounds lists rooms inside a latitude/longitude bounding box.
func (s *SQLiteStore) ListRoomsInBounds(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]*store.Room, error) {
	query := `
		SELECT id, name, latitude, longitude, owner_id, created_at, updated_at
		FROM rooms
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*store.Room
	for rows.Next() {
		var room store.Room
		if err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.Latitude,
			&room.Longitude,
			&room.OwnerID,
			&room.CreatedAt,
			&room.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, &room)
	}

	return rooms, rows.Err()
}

// ==== MessageStore implementation ====

// CreateMessage persists a new message.
func (s *SQLiteStore) CreateMessage(ctx context.Context, roomID, userID, text string) (*store.Message, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO messages (id, room_id, user_id, text)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, roomID, userID, text); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	return s.GetMessageByID(ctx, id)
}

// GetMessageByID retrieves a message by id.
func (s *SQLiteStore) GetMessageByID(ctx context.Context, id string) (*store.Message, error) {
	query := `
		SELECT id, room_id, user_id, text, created_at, updated_at
		FROM messages
		WHERE id = ?
	`
	var msg store.Message
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.RoomID,
		&msg.UserID,
		&msg.Text,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query message: %w", err)
	}

	return &msg, nil
}

// UpdateMessageText replaces the text of an existing message.
func (s *SQLiteStore) UpdateMessageText(ctx context.Context, id, text string) (*store.Message, error) {
	query := `
		UPDATE messages
		SET text = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, text, id)
	if err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetMessageByID(ctx, id)
}

// DeleteMessage removes a message.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return nil
}

// ListRecentMessages returns up to limit newest messages for a room, newest first.
func (s *SQLiteStore) ListRecentMessages(ctx context.Context, roomID string, limit int) ([]*store.Message, error) {
	query := `
		SELECT id, room_id, user_id, text, created_at, updated_at
		FROM messages
		WHERE room_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.RoomID,
			&msg.UserID,
			&msg.Text,
			&msg.CreatedAt,
			&msg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// ==== LocationStore implementation ====

// SaveLocationLog records a resolved position for a user.
func (s *SQLiteStore) SaveLocationLog(ctx context.Context, userID string, latitude, longitude float64, ip string) (*store.LocationLog, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO location_logs (id, user_id, latitude, longitude, ip)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, userID, latitude, longitude, ip); err != nil {
		return nil, fmt.Errorf("insert location log: %w", err)
	}

	log := &store.LocationLog{
		ID:        id,
		UserID:    userID,
		Latitude:  latitude,
		Longitude: longitude,
		IP:        ip,
		CreatedAt: time.Now().UTC(),
	}
	return log, nil
}

// ==== CodeStore implementation ====

// CreateCode stores a fresh one-time code for a user.
func (s *SQLiteStore) CreateCode(ctx context.Context, userID, code string, expiresAt time.Time) (*store.OneTimeCode, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO one_time_codes (id, user_id, code, expires_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, id, userID, code, expiresAt.UTC()); err != nil {
		return nil, fmt.Errorf("insert code: %w", err)
	}

	return &store.OneTimeCode{
		ID:        id,
		UserID:    userID,
		Code:      code,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// GetCode retrieves an unused, unexpired code for a user.
func (s *SQLiteStore) GetCode(ctx context.Context, userID, code string) (*store.OneTimeCode, error) {
	query := `
		SELECT id, user_id, code, expires_at, used, created_at
		FROM one_time_codes
		WHERE user_id = ? AND code = ? AND used = 0 AND expires_at > ?
	`
	var otc store.OneTimeCode
	err := s.db.QueryRowContext(ctx, query, userID, code, time.Now().UTC()).Scan(
		&otc.ID,
		&otc.UserID,
		&otc.Code,
		&otc.ExpiresAt,
		&otc.Used,
		&otc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query code: %w", err)
	}

	return &otc, nil
}

// MarkCodeUsed consumes a code.
func (s *SQLiteStore) MarkCodeUsed(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE one_time_codes SET used = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark code used: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	return nil
}
