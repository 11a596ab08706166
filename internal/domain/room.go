// Package domain contains the room/member entities and their invariants.
// No transport or scheduling logic here.
package domain

import "time"

type (
	// ConnID is the opaque per-connection identity supplied by the transport.
	ConnID string
	// RoomName is case-sensitive and unique across the server.
	RoomName string
)

// Member is a display name currently bound to one connection within a room.
// Names are unique within a room, not globally.
type Member struct {
	Name     string
	Conn     ConnID
	JoinedAt time.Time
	LastSeen time.Time
	// Connected is false between a transport disconnect and either a
	// reconnect or the grace-window finalization.
	Connected bool
}

// Room is a named, ephemeral group of present members sharing chat and
// signaling. An empty room does not persist; the coordinator deletes it
// eagerly on the last removal.
type Room struct {
	Name    RoomName
	Created time.Time
	// Owner holds the display name of the member with kick authority,
	// or "" while the room is empty. It must always reference a key
	// of Members.
	Owner   string
	Members map[string]*Member
	Chat    ChatLog
}

func NewRoom(name RoomName, created time.Time, chatHigh, chatLow int) *Room {
	return &Room{
		Name:    name,
		Created: created,
		Members: make(map[string]*Member),
		Chat:    ChatLog{High: chatHigh, Low: chatLow},
	}
}

// Elapsed reports whole seconds since the room was created.
func (r *Room) Elapsed(now time.Time) int64 {
	return int64(now.Sub(r.Created) / time.Second)
}
