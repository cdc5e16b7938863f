package core

// Conn is one live client session as seen by the core layer. The registry
// owns the only reference to the outbound channel; rooms hold connection
// ids, never the Conn itself.
type Conn struct {
	ID     string
	UserID string

	// Out carries encoded push frames toward the transport write loop.
	Out chan []byte

	lat     float64
	lng     float64
	located bool
}

const outBufferSize = 16

func newConn(id, userID string) *Conn {
	return &Conn{
		ID:     id,
		UserID: userID,
		Out:    make(chan []byte, outBufferSize),
	}
}
