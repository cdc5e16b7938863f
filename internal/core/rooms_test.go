package core

import (
	"testing"

	"github.com/nearchat/nearchat-server/internal/log"
)

func newTestDirectory() (*Registry, *Directory) {
	logger := log.Nop()
	reg := NewRegistry(logger)
	return reg, NewDirectory(reg, logger)
}

func TestDirectoryJoinLeaveRoundTrip(t *testing.T) {
	reg, dir := newTestDirectory()
	conn := reg.Register("user-a")

	if already := dir.Join("r1", conn.ID); already {
		t.Fatal("first join reported as already member")
	}
	if !dir.Contains("r1", conn.ID) {
		t.Fatal("member missing after join")
	}

	dir.Leave("r1", conn.ID)
	if dir.Contains("r1", conn.ID) {
		t.Fatal("member present after leave")
	}
}

func TestDirectoryEmptyRoomIsRemoved(t *testing.T) {
	reg, dir := newTestDirectory()
	conn := reg.Register("user-a")

	dir.Join("r1", conn.ID)
	if dir.RoomCount() != 1 {
		t.Fatalf("expected 1 room, got %d", dir.RoomCount())
	}

	dir.Leave("r1", conn.ID)
	if dir.RoomCount() != 0 {
		t.Fatalf("empty room must be removed, got %d rooms", dir.RoomCount())
	}
}

func TestDirectoryJoinIdempotent(t *testing.T) {
	reg, dir := newTestDirectory()
	conn := reg.Register("user-a")

	dir.Join("r1", conn.ID)
	if already := dir.Join("r1", conn.ID); !already {
		t.Fatal("second join must report existing membership")
	}

	// Duplicate joins never produce duplicate deliveries.
	dir.Broadcast("r1", []byte("ping"))
	if got := len(conn.Out); got != 1 {
		t.Fatalf("expected exactly one delivery, got %d", got)
	}
}

func TestDirectoryLeaveUnknownIsNoop(t *testing.T) {
	reg, dir := newTestDirectory()
	conn := reg.Register("user-a")

	dir.Leave("ghost", conn.ID)
	dir.Join("r1", conn.ID)
	dir.Leave("r1", "not-a-member")
	if !dir.Contains("r1", conn.ID) {
		t.Fatal("unrelated leave must not evict other members")
	}
}

func TestDirectoryLeaveAll(t *testing.T) {
	reg, dir := newTestDirectory()
	a := reg.Register("user-a")
	b := reg.Register("user-b")

	dir.Join("roomA", a.ID)
	dir.Join("roomB", a.ID)
	dir.Join("roomB", b.ID)

	dir.LeaveAll(a.ID)

	if dir.Contains("roomA", a.ID) || dir.Contains("roomB", a.ID) {
		t.Fatal("connection still member after leaveAll")
	}
	// roomA emptied and was removed; roomB retains b.
	if dir.RoomCount() != 1 {
		t.Fatalf("expected 1 surviving room, got %d", dir.RoomCount())
	}
	if !dir.Contains("roomB", b.ID) {
		t.Fatal("unrelated member evicted by leaveAll")
	}
}

func TestDirectoryBroadcast(t *testing.T) {
	reg, dir := newTestDirectory()
	a := reg.Register("user-a")
	b := reg.Register("user-b")
	outsider := reg.Register("user-c")

	dir.Join("r1", a.ID)
	dir.Join("r1", b.ID)

	dir.Broadcast("r1", []byte("hello"))

	for _, conn := range []*Conn{a, b} {
		select {
		case got := <-conn.Out:
			if string(got) != "hello" {
				t.Fatalf("unexpected payload %q", got)
			}
		default:
			t.Fatalf("member %s received nothing", conn.ID)
		}
	}
	if len(outsider.Out) != 0 {
		t.Fatal("non-member received broadcast")
	}

	// Unknown room: silent no-op.
	dir.Broadcast("ghost", []byte("hello"))
}

func TestDirectoryBroadcastToDepartedConnIsNoop(t *testing.T) {
	reg, dir := newTestDirectory()
	a := reg.Register("user-a")
	b := reg.Register("user-b")

	dir.Join("r1", a.ID)
	dir.Join("r1", b.ID)

	// b disconnects without leaving; membership id is now dangling.
	reg.Deregister(b.ID)

	dir.Broadcast("r1", []byte("hello"))
	if len(a.Out) != 1 {
		t.Fatalf("live member should still receive, got %d frames", len(a.Out))
	}
}
