package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom subscribes the connection to a room.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom unsubscribes the connection from a room.
	CommandLeaveRoom
	// CommandLeaveAll unsubscribes the connection from every room.
	CommandLeaveAll
	// CommandUpdateLocation records the connection's reported position.
	CommandUpdateLocation
)

// Command represents an action requested by a connected client.
type Command struct {
	Kind      CommandKind
	RoomID    string
	Latitude  float64
	Longitude float64
}
