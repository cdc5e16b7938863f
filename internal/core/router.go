package core

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// Publisher puts locally-originated events onto the shared broadcast
// channel so every process, this one included, replays them.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// push is the server-to-client frame envelope.
type push struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// JoinAck acknowledges a join command. AlreadyMember is true when the
// connection was in the room before the command.
type JoinAck struct {
	RoomID        string `json:"roomId"`
	AlreadyMember bool   `json:"alreadyMember"`
}

// Router is the single entry point for inbound client commands and for
// fan-out events, whether they originated here or on a peer process. It
// holds the registry and directory it mutates; nothing else touches them.
type Router struct {
	registry     *Registry
	rooms        *Directory
	pub          Publisher
	radiusMeters float64
	log          *zerolog.Logger
}

// NewRouter wires a router over its registry and directory. radiusKm
// bounds room.created fan-out.
func NewRouter(reg *Registry, rooms *Directory, pub Publisher, radiusKm float64, logger *zerolog.Logger) *Router {
	return &Router{
		registry:     reg,
		rooms:        rooms,
		pub:          pub,
		radiusMeters: radiusKm * 1000,
		log:          logger,
	}
}

// SetPublisher attaches the shared-channel publisher. Called once during
// wiring, before any traffic; the bridge and router reference each other.
func (r *Router) SetPublisher(pub Publisher) {
	r.pub = pub
}

// Connect registers a fresh connection and returns its session handle.
func (r *Router) Connect(userID string) *Session {
	conn := r.registry.Register(userID)
	return newSession(conn, r)
}

// Registry exposes the connection registry for transport-layer reads.
func (r *Router) Registry() *Registry {
	return r.registry
}

// HandleCommand applies one inbound client command. Commands for rooms or
// connections that no longer exist fall through as no-ops.
func (r *Router) HandleCommand(connID string, cmd Command) {
	switch cmd.Kind {
	case CommandJoinRoom:
		already := r.rooms.Join(cmd.RoomID, connID)
		if already {
			r.log.Debug().Str("conn_id", connID).Str("room_id", cmd.RoomID).Msg("join for existing member")
		}
		r.sendFrame(connID, push{Type: "joined", Data: JoinAck{RoomID: cmd.RoomID, AlreadyMember: already}})
	case CommandLeaveRoom:
		r.rooms.Leave(cmd.RoomID, connID)
	case CommandLeaveAll:
		r.rooms.LeaveAll(connID)
	case CommandUpdateLocation:
		r.registry.UpdateLocation(connID, cmd.Latitude, cmd.Longitude)
	default:
		r.log.Warn().Str("conn_id", connID).Int("kind", int(cmd.Kind)).Msg("dropping unknown command")
	}
}

// HandleEvent fans one event out to this process's connections. Message
// events go to the event's room; room.created goes to every located
// connection within the configured radius, with a per-recipient distance.
func (r *Router) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventMessageCreated, EventMessageEdited:
		if ev.Message == nil {
			r.log.Warn().Str("kind", string(ev.Kind)).Msg("dropping event without message payload")
			return
		}
		r.broadcastFrame(ev.Message.RoomID, push{Type: string(ev.Kind), Data: ev.Message})
	case EventMessageDeleted:
		if ev.Deleted == nil {
			r.log.Warn().Str("kind", string(ev.Kind)).Msg("dropping event without deletion payload")
			return
		}
		r.broadcastFrame(ev.Deleted.RoomID, push{Type: string(ev.Kind), Data: ev.Deleted})
	case EventRoomCreated:
		if ev.Room == nil {
			r.log.Warn().Str("kind", string(ev.Kind)).Msg("dropping event without room payload")
			return
		}
		r.fanOutRoom(*ev.Room)
	default:
		r.log.Warn().Str("kind", string(ev.Kind)).Msg("dropping event of unknown kind")
	}
}

// Dispatch publishes a locally-originated event to the shared channel.
// The local fan-out happens when the subscription replays it; if the
// publish fails, delivery degrades to this process's members only.
func (r *Router) Dispatch(ctx context.Context, ev Event) {
	if r.pub == nil {
		r.HandleEvent(ev)
		return
	}
	if err := r.pub.Publish(ctx, ev); err != nil {
		r.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("publish failed, delivering to local members only")
		r.HandleEvent(ev)
	}
}

func (r *Router) fanOutRoom(room RoomPayload) {
	for connID, distance := range r.registry.Nearby(room.Latitude, room.Longitude, r.radiusMeters) {
		payload := room
		payload.Distance = distance
		r.sendFrame(connID, push{Type: string(EventRoomCreated), Data: payload})
	}
}

func (r *Router) sendFrame(connID string, frame push) {
	raw, err := json.Marshal(frame)
	if err != nil {
		r.log.Error().Err(err).Str("type", frame.Type).Msg("encode push frame")
		return
	}
	r.registry.Send(connID, raw)
}

func (r *Router) broadcastFrame(roomID string, frame push) {
	raw, err := json.Marshal(frame)
	if err != nil {
		r.log.Error().Err(err).Str("type", frame.Type).Msg("encode push frame")
		return
	}
	r.rooms.Broadcast(roomID, raw)
}
