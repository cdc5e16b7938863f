package core

import (
	"iter"
	"sync"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// Registry owns every live connection in this process. All access to the
// connection map and to per-connection location state goes through its
// methods; rooms and the router only ever hold connection ids.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
	log   *zerolog.Logger
}

// NewRegistry builds an empty connection registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{
		conns: make(map[string]*Conn),
		log:   logger,
	}
}

// Register allocates a fresh connection id, stores the connection and
// returns it with location absent.
func (reg *Registry) Register(userID string) *Conn {
	conn := newConn(xid.New().String(), userID)

	reg.mu.Lock()
	reg.conns[conn.ID] = conn
	reg.mu.Unlock()

	reg.log.Debug().Str("conn_id", conn.ID).Str("user_id", userID).Msg("connection registered")
	return conn
}

// Deregister removes the connection. Unknown ids are a silent no-op so
// double-close races stay harmless.
func (reg *Registry) Deregister(connID string) {
	reg.mu.Lock()
	_, existed := reg.conns[connID]
	delete(reg.conns, connID)
	reg.mu.Unlock()

	if existed {
		reg.log.Debug().Str("conn_id", connID).Msg("connection deregistered")
	}
}

// UpdateLocation overwrites the connection's position and marks it as
// reported. Unknown connections are logged and otherwise ignored.
func (reg *Registry) UpdateLocation(connID string, lat, lng float64) {
	reg.mu.Lock()
	conn, ok := reg.conns[connID]
	if ok {
		conn.lat = lat
		conn.lng = lng
		conn.located = true
	}
	reg.mu.Unlock()

	if !ok {
		reg.log.Warn().Str("conn_id", connID).Msg("location update for unknown connection")
	}
}

// Send delivers an encoded frame to one connection, best-effort. Unknown
// connections and full outbound buffers are swallowed: live fan-out is
// at-most-once, durable history lives in the store.
func (reg *Registry) Send(connID string, payload []byte) {
	reg.mu.RLock()
	conn, ok := reg.conns[connID]
	reg.mu.RUnlock()

	if !ok {
		return
	}

	select {
	case conn.Out <- payload:
	default:
		reg.log.Warn().Str("conn_id", connID).Msg("dropping frame for slow consumer")
	}
}

// LocationOf returns the connection's last reported coordinates. The
// reported flag distinguishes "never reported" from a genuine (0,0).
func (reg *Registry) LocationOf(connID string) (lat, lng float64, reported bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	conn, ok := reg.conns[connID]
	if !ok || !conn.located {
		return 0, 0, false
	}
	return conn.lat, conn.lng, true
}

// Lookup reports whether the connection id is currently registered.
func (reg *Registry) Lookup(connID string) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	_, ok := reg.conns[connID]
	return ok
}

// Len returns the number of live connections.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.conns)
}

// Nearby yields (connection id, distance in meters) for every connection
// that has reported a location strictly closer than radiusMeters to the
// center. The sequence is restartable; each restart observes the registry
// as of that moment. Ordering is unspecified.
func (reg *Registry) Nearby(lat, lng, radiusMeters float64) iter.Seq2[string, float64] {
	type position struct {
		id       string
		lat, lng float64
	}

	return func(yield func(string, float64) bool) {
		reg.mu.RLock()
		snapshot := make([]position, 0, len(reg.conns))
		for _, conn := range reg.conns {
			if conn.located {
				snapshot = append(snapshot, position{id: conn.ID, lat: conn.lat, lng: conn.lng})
			}
		}
		reg.mu.RUnlock()

		for _, pos := range snapshot {
			d := Distance(lat, lng, pos.lat, pos.lng)
			if d >= radiusMeters {
				continue
			}
			if !yield(pos.id, d) {
				return
			}
		}
	}
}
