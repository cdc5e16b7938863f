package http

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/nearchat/nearchat-server/internal/core"
	"github.com/nearchat/nearchat-server/internal/proto"
)

// frameToCommand decodes one inbound frame into a router command. Any
// malformed frame is logged and reported as not-ok; the connection is
// never terminated over bad input.
func frameToCommand(data []byte, logger zerolog.Logger) (core.Command, bool) {
	var inbound proto.Inbound
	if err := json.Unmarshal(data, &inbound); err != nil {
		logger.Warn().Err(err).Msg("dropping undecodable frame")
		return core.Command{}, false
	}

	switch inbound.Type {
	case proto.InboundTypeJoin:
		if inbound.RoomID == "" {
			logger.Warn().Msg("dropping join without roomId")
			return core.Command{}, false
		}
		return core.Command{Kind: core.CommandJoinRoom, RoomID: inbound.RoomID}, true
	case proto.InboundTypeLeave:
		if inbound.RoomID == "" {
			logger.Warn().Msg("dropping leave without roomId")
			return core.Command{}, false
		}
		return core.Command{Kind: core.CommandLeaveRoom, RoomID: inbound.RoomID}, true
	case proto.InboundTypeLeaveAll:
		return core.Command{Kind: core.CommandLeaveAll}, true
	case proto.InboundTypeLocation:
		if inbound.Latitude == nil || inbound.Longitude == nil {
			logger.Warn().Msg("dropping location without coordinates")
			return core.Command{}, false
		}
		return core.Command{
			Kind:      core.CommandUpdateLocation,
			Latitude:  *inbound.Latitude,
			Longitude: *inbound.Longitude,
		}, true
	default:
		logger.Warn().Str("type", inbound.Type).Msg("dropping frame of unknown type")
		return core.Command{}, false
	}
}
