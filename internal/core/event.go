package core

import "time"

// EventKind discriminates fan-out events. The string values double as the
// shared pub/sub channel names and the push frame type.
type EventKind string

const (
	// EventMessageCreated announces a new chat message to room members.
	EventMessageCreated EventKind = "chat"
	// EventMessageEdited announces an edit to an existing message.
	EventMessageEdited EventKind = "chat:edit"
	// EventMessageDeleted announces a message deletion (ids only).
	EventMessageDeleted EventKind = "chat:delete"
	// EventRoomCreated announces a new room to nearby connections.
	EventRoomCreated EventKind = "room"
)

// MessagePayload is the wire shape for chat and chat:edit events. It is
// identical on the shared channel and in the server-to-client push.
type MessagePayload struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MessageRef is the wire shape for chat:delete events: just enough for
// clients to drop the rendered message.
type MessageRef struct {
	ID     string `json:"id"`
	RoomID string `json:"roomId"`
}

// RoomPayload is the wire shape for room events. Distance is computed per
// recipient at delivery time and is never stored.
type RoomPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Distance  float64   `json:"distance,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Event is one immutable unit of state change to fan out. Exactly one of
// the payload fields is set, matching Kind. Edits and deletes are new
// events referencing the original entity id.
type Event struct {
	Kind    EventKind
	Message *MessagePayload
	Deleted *MessageRef
	Room    *RoomPayload
}

// RoomID returns the room the event concerns, or "" for room.created
// whose delivery set is geography-derived.
func (ev Event) RoomID() string {
	switch ev.Kind {
	case EventMessageCreated, EventMessageEdited:
		if ev.Message != nil {
			return ev.Message.RoomID
		}
	case EventMessageDeleted:
		if ev.Deleted != nil {
			return ev.Deleted.RoomID
		}
	}
	return ""
}
