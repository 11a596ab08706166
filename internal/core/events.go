package core

import (
	"github.com/pion/webrtc/v4"

	"github.com/hububba/hubcalls/internal/domain"
)

// Inbound event names. The transport dispatches on the envelope type field.
const (
	EvtJoin         = "join"
	EvtHeartbeat    = "heartbeat"
	EvtLeave        = "leave"
	EvtKickUser     = "kick_user"
	EvtChatSend     = "chat_send"
	EvtRequestRooms = "request_rooms"
	EvtScreenShare  = "screenshare_state"

	EvtOffer     = "webrtc-offer"
	EvtAnswer    = "webrtc-answer"
	EvtCandidate = "webrtc-ice-candidate"
)

// Outbound event names.
const (
	EvtHello        = "hello"
	EvtJoined       = "joined"
	EvtRoomsUpdate  = "rooms_update"
	EvtReady        = "ready"
	EvtPeerLeft     = "peer_left"
	EvtOwnerChanged = "owner_changed"
	EvtKicked       = "kicked"
	EvtChatMessage  = "chat_message"
	EvtJoinConflict = "join_conflict"
	EvtJoinError    = "join_error"
	EvtKickResult   = "kick_result"
)

type Hello struct {
	OK bool `json:"ok"`
}

// Joined is the room meta returned to a member on a successful join.
// ICEServers lets the endpoint build its peer-connection config from the
// server's answer instead of hard-coding STUN/TURN addresses.
type Joined struct {
	Room       domain.RoomName      `json:"room"`
	Created    int64                `json:"created"`
	Users      []string             `json:"users"`
	Owner      string               `json:"owner,omitempty"`
	Chat       []domain.ChatMessage `json:"chat,omitempty"`
	ICEServers []webrtc.ICEServer   `json:"ice_servers,omitempty"`
}

// RoomSummary is one entry of a rooms_update snapshot.
type RoomSummary struct {
	Name    domain.RoomName `json:"name"`
	Users   []string        `json:"users"`
	Elapsed int64           `json:"elapsed"`
	Owner   string          `json:"owner,omitempty"`
}

type Ready struct {
	User string `json:"user"`
}

type PeerLeft struct {
	User string `json:"user"`
}

type OwnerChanged struct {
	Room  domain.RoomName `json:"room"`
	Owner string          `json:"owner"`
}

type Kicked struct {
	Room   domain.RoomName `json:"room"`
	By     string          `json:"by,omitempty"`
	Reason string          `json:"reason"`
}

type JoinConflict struct {
	Room domain.RoomName `json:"room"`
	User string          `json:"user"`
	Msg  string          `json:"msg"`
}

type JoinError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type KickResult struct {
	OK     bool   `json:"ok"`
	Target string `json:"target"`
	Error  string `json:"error,omitempty"`
}

type ScreenShare struct {
	User   string `json:"user"`
	Active bool   `json:"active"`
}
