package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nearchat/nearchat-server/internal/log"
)

// testFrame mirrors the push envelope for assertions.
type testFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T, pub Publisher) *Router {
	t.Helper()

	logger := log.Nop()
	reg := NewRegistry(logger)
	rooms := NewDirectory(reg, logger)
	return NewRouter(reg, rooms, pub, 5, logger)
}

// mustFrame waits for one push frame on the session's outbound channel.
func mustFrame(t *testing.T, ch <-chan []byte) testFrame {
	t.Helper()

	select {
	case raw := <-ch:
		var frame testFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			t.Fatalf("undecodable frame %q: %v", raw, err)
		}
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("expected frame not received")
		return testFrame{}
	}
}

// mustSilence asserts no frame arrives within a short window.
func mustSilence(t *testing.T, ch <-chan []byte) {
	t.Helper()

	select {
	case raw := <-ch:
		t.Fatalf("unexpected frame: %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}
