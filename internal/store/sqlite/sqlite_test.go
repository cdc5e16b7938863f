package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nearchat/nearchat-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice@example.com", "hash", "🦊", "#F94144")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == "" {
		t.Fatal("user id must be assigned")
	}

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.Emoji != "🦊" {
		t.Fatalf("unexpected user: %+v", byEmail)
	}

	if _, err := s.GetUserByID(ctx, "no-such-user"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Duplicate email violates the unique constraint.
	if _, err := s.CreateUser(ctx, "alice@example.com", "hash2", "🐸", "#43AA8B"); err == nil {
		t.Fatal("expected duplicate email to fail")
	}
}

func TestRoomBounds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner, err := s.CreateUser(ctx, "owner@example.com", "hash", "🐙", "#277DA1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	inside, err := s.CreateRoom(ctx, "plaza", 10.001, 10.001, owner.ID)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := s.CreateRoom(ctx, "faraway", 50, 50, owner.ID); err != nil {
		t.Fatalf("create room: %v", err)
	}

	rooms, err := s.ListRoomsInBounds(ctx, 9.95, 10.05, 9.95, 10.05)
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != inside.ID {
		t.Fatalf("expected only the inside room, got %+v", rooms)
	}

	got, err := s.GetRoomByID(ctx, inside.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if got.Name != "plaza" || got.Latitude != 10.001 {
		t.Fatalf("unexpected room: %+v", got)
	}
}

func TestMessageLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "author@example.com", "hash", "🦉", "#577590")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	room, err := s.CreateRoom(ctx, "plaza", 1, 1, user.ID)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	msg, err := s.CreateMessage(ctx, room.ID, user.ID, "hello")
	if err != nil {
		t.Fatalf("create message: %v", err)
	}

	edited, err := s.UpdateMessageText(ctx, msg.ID, "hello, edited")
	if err != nil {
		t.Fatalf("update message: %v", err)
	}
	if edited.Text != "hello, edited" || edited.ID != msg.ID {
		t.Fatalf("unexpected message after edit: %+v", edited)
	}

	recent, err := s.ListRecentMessages(ctx, room.ID, 10)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(recent) != 1 || recent[0].Text != "hello, edited" {
		t.Fatalf("unexpected recent messages: %+v", recent)
	}

	if err := s.DeleteMessage(ctx, msg.ID); err != nil {
		t.Fatalf("delete message: %v", err)
	}
	if err := s.DeleteMessage(ctx, msg.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
	if _, err := s.UpdateMessageText(ctx, msg.ID, "x"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating deleted message, got %v", err)
	}
}

func TestListRecentMessagesLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "author@example.com", "hash", "🐥", "#F9C74F")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	room, err := s.CreateRoom(ctx, "plaza", 1, 1, user.ID)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := s.CreateMessage(ctx, room.ID, user.ID, "msg"); err != nil {
			t.Fatalf("create message %d: %v", i, err)
		}
	}

	recent, err := s.ListRecentMessages(ctx, room.ID, 3)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(recent))
	}
}

func TestLocationLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "walker@example.com", "hash", "🐢", "#90BE6D")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	logEntry, err := s.SaveLocationLog(ctx, user.ID, 48.85, 2.35, "203.0.113.9")
	if err != nil {
		t.Fatalf("save location log: %v", err)
	}
	if logEntry.ID == "" || logEntry.Latitude != 48.85 {
		t.Fatalf("unexpected log entry: %+v", logEntry)
	}
}

func TestOneTimeCodes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "codes@example.com", "hash", "🦄", "#9B5DE5")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	created, err := s.CreateCode(ctx, user.ID, "123456", time.Now().Add(10*time.Minute))
	if err != nil {
		t.Fatalf("create code: %v", err)
	}

	got, err := s.GetCode(ctx, user.ID, "123456")
	if err != nil {
		t.Fatalf("get code: %v", err)
	}
	if got.ID != created.ID || got.Used {
		t.Fatalf("unexpected code: %+v", got)
	}

	if err := s.MarkCodeUsed(ctx, got.ID); err != nil {
		t.Fatalf("mark used: %v", err)
	}
	if _, err := s.GetCode(ctx, user.ID, "123456"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("used code must not resolve, got %v", err)
	}

	// Expired codes never resolve.
	if _, err := s.CreateCode(ctx, user.ID, "999999", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("create expired code: %v", err)
	}
	if _, err := s.GetCode(ctx, user.ID, "999999"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expired code must not resolve, got %v", err)
	}
}
