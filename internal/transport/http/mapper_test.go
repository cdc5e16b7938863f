package http

import (
	"testing"

	"github.com/nearchat/nearchat-server/internal/core"
	"github.com/nearchat/nearchat-server/internal/log"
)

func TestFrameToCommand(t *testing.T) {
	logger := *log.Nop()

	tests := []struct {
		name   string
		frame  string
		want   core.Command
		wantOK bool
	}{
		{
			"join",
			`{"type":"join","roomId":"room-1"}`,
			core.Command{Kind: core.CommandJoinRoom, RoomID: "room-1"},
			true,
		},
		{
			"leave",
			`{"type":"leave","roomId":"room-1"}`,
			core.Command{Kind: core.CommandLeaveRoom, RoomID: "room-1"},
			true,
		},
		{
			"leave all",
			`{"type":"leaveAll"}`,
			core.Command{Kind: core.CommandLeaveAll},
			true,
		},
		{
			"location",
			`{"type":"location","latitude":48.85,"longitude":2.35}`,
			core.Command{Kind: core.CommandUpdateLocation, Latitude: 48.85, Longitude: 2.35},
			true,
		},
		{
			"location at origin",
			`{"type":"location","latitude":0,"longitude":0}`,
			core.Command{Kind: core.CommandUpdateLocation},
			true,
		},
		{"join without room", `{"type":"join"}`, core.Command{}, false},
		{"leave without room", `{"type":"leave"}`, core.Command{}, false},
		{"location without coordinates", `{"type":"location"}`, core.Command{}, false},
		{"location with one coordinate", `{"type":"location","latitude":48.85}`, core.Command{}, false},
		{"unknown type", `{"type":"dance"}`, core.Command{}, false},
		{"not json", `not json at all`, core.Command{}, false},
		{"empty object", `{}`, core.Command{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := frameToCommand([]byte(tt.frame), logger)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Fatalf("command = %+v, want %+v", got, tt.want)
			}
		})
	}
}
