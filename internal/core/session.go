package core

import "sync"

// Session is the handle a transport holds for one registered connection.
// Close releases it: leave every room, then deregister. The sync.Once
// makes release safe against concurrent close and error paths.
type Session struct {
	conn   *Conn
	router *Router
	once   sync.Once
}

func newSession(conn *Conn, router *Router) *Session {
	return &Session{conn: conn, router: router}
}

// ID returns the connection identifier.
func (s *Session) ID() string {
	return s.conn.ID
}

// UserID returns the authenticated user id bound at connect time.
func (s *Session) UserID() string {
	return s.conn.UserID
}

// Out is the stream of encoded push frames for the transport write loop.
func (s *Session) Out() <-chan []byte {
	return s.conn.Out
}

// Handle routes one inbound command for this connection.
func (s *Session) Handle(cmd Command) {
	s.router.HandleCommand(s.conn.ID, cmd)
}

// Close removes the connection from every room and deregisters it.
// Exactly once, no matter how many close paths race.
func (s *Session) Close() {
	s.once.Do(func() {
		s.router.rooms.LeaveAll(s.conn.ID)
		s.router.registry.Deregister(s.conn.ID)
	})
}
