package proto

import "encoding/json"

// Inbound is the envelope for frames coming from the client. Fields beyond
// the discriminant live inline, matching the client protocol.
type Inbound struct {
	Type      string   `json:"type"`
	RoomID    string   `json:"roomId,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

const (
	InboundTypeJoin     = "join"
	InboundTypeLeave    = "leave"
	InboundTypeLeaveAll = "leaveAll"
	InboundTypeLocation = "location"
)

// Outbound is the envelope for frames pushed to the client. Data holds the
// kind-specific payload and is identical to what travels on the shared
// inter-process channel.
type Outbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	OutboundTypeChat       = "chat"
	OutboundTypeChatEdit   = "chat:edit"
	OutboundTypeChatDelete = "chat:delete"
	OutboundTypeRoom       = "room"
	OutboundTypeJoined     = "joined"
)
