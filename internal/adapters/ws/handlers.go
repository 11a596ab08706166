package ws

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hububba/hubcalls/internal/core"
	"github.com/hububba/hubcalls/internal/domain"
)

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (ctl *Controller) dispatch(id domain.ConnID, raw []byte) {
	var env inbound
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("bad envelope")
		return
	}

	switch env.Type {
	case core.EvtJoin:
		ctl.handleJoin(id, env.Data)
	case core.EvtHeartbeat:
		ctl.coord.Heartbeat(id)
	case core.EvtLeave:
		ctl.coord.Leave(id)
	case core.EvtKickUser:
		ctl.handleKick(id, env.Data)
	case core.EvtOffer, core.EvtAnswer, core.EvtCandidate:
		ctl.handleRelay(env.Type, env.Data)
	case core.EvtScreenShare:
		ctl.handleScreenShare(id, env.Data)
	case core.EvtChatSend:
		ctl.handleChat(id, env.Data)
	case core.EvtRequestRooms:
		ctl.coord.SendRooms(id)
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) handleJoin(id domain.ConnID, data json.RawMessage) {
	var p struct {
		Room  string `json:"room"`
		User  string `json:"user"`
		Force bool   `json:"force"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad join payload")
		return
	}

	err := ctl.coord.Join(id, p.Room, p.User, p.Force)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNameConflict):
		ctl.hub.Emit(id, core.EvtJoinConflict, core.JoinConflict{
			Room: domain.RoomName(strings.TrimSpace(p.Room)),
			User: strings.TrimSpace(p.User),
			Msg:  "that name is already in this room",
		})
	case errors.Is(err, domain.ErrInvalidInput):
		field, msg := "user", "display name required"
		if strings.TrimSpace(p.Room) == "" {
			field, msg = "room", "room name required"
		}
		ctl.hub.Emit(id, core.EvtJoinError, core.JoinError{Field: field, Msg: msg})
	default:
		log.Error().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("join failed")
	}
}

func (ctl *Controller) handleKick(id domain.ConnID, data json.RawMessage) {
	var p struct {
		Room   string `json:"room"`
		Target string `json:"target"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	err := ctl.coord.Kick(id, p.Room, p.Target)
	res := core.KickResult{OK: err == nil, Target: strings.TrimSpace(p.Target)}
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUnauthorized):
		res.Error = "only the room owner can do that"
	case errors.Is(err, domain.ErrNotFound):
		res.Error = "no such user in the room"
	case errors.Is(err, domain.ErrInvalidInput):
		res.Error = "invalid kick request"
	default:
		res.Error = "kick failed"
	}
	ctl.hub.Emit(id, core.EvtKickResult, res)
}

func (ctl *Controller) handleRelay(kind string, data json.RawMessage) {
	// Only the addressing fields are decoded; the payload stays opaque
	// and is forwarded verbatim.
	var p struct {
		Room string `json:"room"`
		To   string `json:"to"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	if p.Room == "" || p.To == "" {
		return
	}
	ctl.coord.Relay(kind, domain.RoomName(p.Room), p.To, data)
}

func (ctl *Controller) handleScreenShare(id domain.ConnID, data json.RawMessage) {
	var p struct {
		Room   string `json:"room"`
		User   string `json:"user"`
		Active bool   `json:"active"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	ctl.coord.ScreenShare(id, domain.RoomName(p.Room), p.User, p.Active)
}

func (ctl *Controller) handleChat(id domain.ConnID, data json.RawMessage) {
	var p struct {
		Room string `json:"room"`
		User string `json:"user"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	ctl.coord.ChatSend(id, domain.RoomName(p.Room), p.User, p.Text)
}
